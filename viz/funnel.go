// ABOUTME: Campaign funnel statistics
// ABOUTME: Counts leads per status and the conversion between adjacent stages
package viz

import (
	"github.com/harperreed/smscrm/models"
)

// FunnelStats summarises a lead list by status.
type FunnelStats struct {
	Counts    map[models.Status]int
	Total     int
	Other     int // leads whose status is outside the enumeration
	WithNotes int
	Mortgaged int
}

// Stage is one row of the funnel.
type Stage struct {
	Status  models.Status
	Count   int // leads currently in this status
	Reached int // leads in this status or any later one
}

func ComputeFunnel(leads []models.Lead) FunnelStats {
	stats := FunnelStats{Counts: make(map[models.Status]int, len(models.Statuses))}
	for _, l := range leads {
		stats.Total++
		if l.Status.Valid() {
			stats.Counts[l.Status]++
		} else {
			stats.Other++
		}
		if len(l.Notes) > 0 {
			stats.WithNotes++
		}
		if l.Mortgaged {
			stats.Mortgaged++
		}
	}
	return stats
}

// Stages returns the funnel in NEW → BOOKED order. A lead that replied has
// also been sent, so Reached accumulates from the bottom up.
func (s FunnelStats) Stages() []Stage {
	stages := make([]Stage, len(models.Statuses))
	reached := 0
	for i := len(models.Statuses) - 1; i >= 0; i-- {
		st := models.Statuses[i]
		reached += s.Counts[st]
		stages[i] = Stage{Status: st, Count: s.Counts[st], Reached: reached}
	}
	return stages
}

// Conversion is the share of leads reaching stage i+1 out of those reaching
// stage i, in percent. It is 0 when nothing reached stage i.
func Conversion(stages []Stage, i int) float64 {
	if i < 0 || i+1 >= len(stages) || stages[i].Reached == 0 {
		return 0
	}
	return float64(stages[i+1].Reached) * 100 / float64(stages[i].Reached)
}
