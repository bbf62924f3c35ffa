// ABOUTME: Lead status enumeration, status filter values and badge lookup table
// ABOUTME: Single source of truth shared by forms, tables, the API client and the dev backend
package models

import (
	"fmt"
	"sort"
	"strings"
)

// Status is a lead's campaign stage.
type Status string

const (
	StatusNew     Status = "NEW"
	StatusSent    Status = "SENT"
	StatusReplied Status = "REPLIED"
	StatusBooked  Status = "BOOKED"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{StatusNew, StatusSent, StatusReplied, StatusBooked}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusSent, StatusReplied, StatusBooked:
		return true
	}
	return false
}

// Label is the title-cased display name ("Replied").
func (s Status) Label() string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(string(s))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// ParseStatus accepts any casing of an enumerated status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q (must be one of NEW, SENT, REPLIED, BOOKED)", s)
	}
	return st, nil
}

// Next cycles forward through the enumeration, wrapping at the end.
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusNew
}

// Prev cycles backward through the enumeration.
func (s Status) Prev() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+len(Statuses)-1)%len(Statuses)]
		}
	}
	return StatusNew
}

// Badge variants, named after the bootstrap contextual classes.
const (
	BadgePrimary   = "primary"
	BadgeInfo      = "info"
	BadgeWarning   = "warning"
	BadgeSuccess   = "success"
	BadgeSecondary = "secondary"
)

var badgeVariants = map[Status]string{
	StatusNew:     BadgePrimary,
	StatusSent:    BadgeInfo,
	StatusReplied: BadgeWarning,
	StatusBooked:  BadgeSuccess,
}

// BadgeVariant maps a status to its badge color; unknown values are secondary.
func BadgeVariant(s Status) string {
	if v, ok := badgeVariants[s]; ok {
		return v
	}
	return BadgeSecondary
}

// Filter is the status filter selection: a Status value or FilterAll.
type Filter string

const FilterAll Filter = "ALL"

type FilterOption struct {
	Label string
	Value Filter
}

// FilterOptions returns ALL followed by one option per status.
func FilterOptions() []FilterOption {
	opts := []FilterOption{{Label: "All", Value: FilterAll}}
	for _, s := range Statuses {
		opts = append(opts, FilterOption{Label: s.Label(), Value: Filter(s)})
	}
	return opts
}

// ParseFilter accepts "", "all" or any status; "" means ALL.
func ParseFilter(s string) (Filter, error) {
	if strings.TrimSpace(s) == "" || strings.EqualFold(strings.TrimSpace(s), string(FilterAll)) {
		return FilterAll, nil
	}
	st, err := ParseStatus(s)
	if err != nil {
		return "", err
	}
	return Filter(st), nil
}

// Matches reports whether the lead passes the filter.
func (f Filter) Matches(l Lead) bool {
	return f == FilterAll || f == "" || Status(f) == l.Status
}

// FilterLeads returns the leads passing the filter, preserving order.
// ALL returns the input unchanged.
func FilterLeads(leads []Lead, f Filter) []Lead {
	if f == FilterAll || f == "" {
		return leads
	}
	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		if f.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}

// SortKey is a lead table column that rows can be ordered by.
type SortKey string

const (
	SortNone    SortKey = ""
	SortName    SortKey = "name"
	SortStatus  SortKey = "status"
	SortCreated SortKey = "created"
)

// SortKeys in the order the table cycles through them.
var SortKeys = []SortKey{SortNone, SortName, SortStatus, SortCreated}

// SortLeads returns a stably sorted copy of leads. SortNone keeps load order.
func SortLeads(leads []Lead, key SortKey, desc bool) []Lead {
	out := make([]Lead, len(leads))
	copy(out, leads)
	if key == SortNone {
		return out
	}

	less := func(a, b Lead) bool {
		switch key {
		case SortName:
			return strings.ToLower(a.FullName()) < strings.ToLower(b.FullName())
		case SortStatus:
			return statusRank(a.Status) < statusRank(b.Status)
		case SortCreated:
			return createdUnix(a) < createdUnix(b)
		}
		return false
	}

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func statusRank(s Status) int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return len(Statuses)
}

func createdUnix(l Lead) int64 {
	if l.CreatedAt == nil {
		return 0
	}
	return l.CreatedAt.UnixNano()
}
