// ABOUTME: Lead CLI commands
// ABOUTME: Human-friendly commands for listing, adding, updating and annotating leads
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/models"
)

// stdout is swapped out by tests.
var stdout io.Writer = os.Stdout

// leadFlags binds the editable lead fields to a flag set.
type leadFlags struct {
	firstName, lastName, email     *string
	phone1, phone2, phone3, phone4 *string
	address, zip, resort, status   *string
	mortgaged                      *bool
}

func bindLeadFlags(fs *flag.FlagSet) *leadFlags {
	return &leadFlags{
		firstName: fs.String("first-name", "", "First name"),
		lastName:  fs.String("last-name", "", "Last name"),
		email:     fs.String("email", "", "Email address"),
		phone1:    fs.String("phone", "", "Primary phone"),
		phone2:    fs.String("phone2", "", "Second phone"),
		phone3:    fs.String("phone3", "", "Third phone"),
		phone4:    fs.String("phone4", "", "Fourth phone"),
		address:   fs.String("address", "", "Street address"),
		zip:       fs.String("zip", "", "ZIP code"),
		resort:    fs.String("resort", "", "Resort"),
		status:    fs.String("status", "", "Status (NEW, SENT, REPLIED, BOOKED)"),
		mortgaged: fs.Bool("mortgaged", false, "Property is mortgaged"),
	}
}

// ListLeadsCommand prints leads as a table.
func ListLeadsCommand(ctx context.Context, svc api.LeadService, args []string) error {
	fs := flag.NewFlagSet("leads list", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status (NEW, SENT, REPLIED, BOOKED)")
	sortKey := fs.String("sort", "", "Sort by name, status or created")
	desc := fs.Bool("desc", false, "Sort descending")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter, err := models.ParseFilter(*status)
	if err != nil {
		return err
	}
	key := models.SortKey(strings.ToLower(*sortKey))
	if !validSortKey(key) {
		return fmt.Errorf("invalid sort %q (must be name, status or created)", *sortKey)
	}

	leads, err := svc.ListLeads(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}

	if len(leads) == 0 {
		_, _ = fmt.Fprintln(stdout, "No leads found")
		return nil
	}
	leads = models.SortLeads(leads, key, *desc)

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tPHONE\tSTATUS\tCREATED\tNOTES")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t------\t-------\t-----")

	for _, lead := range leads {
		phone := lead.PrimaryPhone()
		if phone == "" {
			phone = "-"
		}
		created := "-"
		if lead.CreatedAt != nil && !lead.CreatedAt.IsZero() {
			created = lead.CreatedAt.Format("2006-01-02")
		}
		status := string(lead.Status)
		if status == "" {
			status = "UNKNOWN"
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n",
			lead.ID, lead.FullName(), phone, status, created, len(lead.Notes))
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(stdout, "\nTotal: %d lead(s)\n", len(leads))
	return nil
}

// AddLeadCommand creates a lead from flags.
func AddLeadCommand(ctx context.Context, svc api.LeadService, args []string) error {
	fs := flag.NewFlagSet("leads add", flag.ContinueOnError)
	lf := bindLeadFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fields := models.LeadFields{
		FirstName: strings.TrimSpace(*lf.firstName),
		LastName:  strings.TrimSpace(*lf.lastName),
		Email:     strings.TrimSpace(*lf.email),
		Phone1:    strings.TrimSpace(*lf.phone1),
		Phone2:    strings.TrimSpace(*lf.phone2),
		Phone3:    strings.TrimSpace(*lf.phone3),
		Phone4:    strings.TrimSpace(*lf.phone4),
		Address:   strings.TrimSpace(*lf.address),
		Zip:       strings.TrimSpace(*lf.zip),
		Resort:    strings.TrimSpace(*lf.resort),
		Mortgaged: *lf.mortgaged,
		Status:    models.StatusNew,
	}
	if *lf.status != "" {
		st, err := models.ParseStatus(*lf.status)
		if err != nil {
			return err
		}
		fields.Status = st
	}
	if errs := models.ValidateLead(fields); len(errs) > 0 {
		return fmt.Errorf("invalid lead: %w", errs)
	}

	lead, err := svc.CreateLead(ctx, fields)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Lead created: %s (ID: %d)\n", lead.FullName(), lead.ID)
	if phone := lead.PrimaryPhone(); phone != "" {
		_, _ = fmt.Fprintf(stdout, "  Phone: %s\n", phone)
	}
	_, _ = fmt.Fprintf(stdout, "  Status: %s\n", lead.Status)
	return nil
}

// UpdateLeadCommand sends only the flags that were given.
func UpdateLeadCommand(ctx context.Context, svc api.LeadService, args []string) error {
	fs := flag.NewFlagSet("leads update", flag.ContinueOnError)
	lf := bindLeadFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("lead ID is required")
	}
	id, err := parseLeadID(fs.Arg(0))
	if err != nil {
		return err
	}

	var patch models.LeadPatch
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		trimmed := func(s *string) *string {
			v := strings.TrimSpace(*s)
			return &v
		}
		switch f.Name {
		case "first-name":
			patch.FirstName = trimmed(lf.firstName)
		case "last-name":
			patch.LastName = trimmed(lf.lastName)
		case "email":
			patch.Email = trimmed(lf.email)
		case "phone":
			patch.Phone1 = trimmed(lf.phone1)
		case "phone2":
			patch.Phone2 = trimmed(lf.phone2)
		case "phone3":
			patch.Phone3 = trimmed(lf.phone3)
		case "phone4":
			patch.Phone4 = trimmed(lf.phone4)
		case "address":
			patch.Address = trimmed(lf.address)
		case "zip":
			patch.Zip = trimmed(lf.zip)
		case "resort":
			patch.Resort = trimmed(lf.resort)
		case "mortgaged":
			patch.Mortgaged = lf.mortgaged
		case "status":
			st, err := models.ParseStatus(*lf.status)
			if err != nil {
				parseErr = err
				return
			}
			patch.Status = &st
		}
	})
	if parseErr != nil {
		return parseErr
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update")
	}
	if errs := models.ValidatePatch(patch); len(errs) > 0 {
		return fmt.Errorf("invalid update: %w", errs)
	}

	lead, err := svc.UpdateLead(ctx, id, patch)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("lead not found: %d", id)
		}
		return fmt.Errorf("failed to update lead: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Lead updated: %s (ID: %d, status %s)\n", lead.FullName(), lead.ID, lead.Status)
	return nil
}

// NoteCommand appends a note; the remaining arguments form the content.
func NoteCommand(ctx context.Context, svc api.LeadService, args []string) error {
	fs := flag.NewFlagSet("leads note", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: leads note <id> <content...>")
	}
	id, err := parseLeadID(fs.Arg(0))
	if err != nil {
		return err
	}
	content := strings.TrimSpace(strings.Join(fs.Args()[1:], " "))
	if errs := models.ValidateNote(content); len(errs) > 0 {
		return errs
	}

	note, err := svc.AddNote(ctx, id, content)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("lead not found: %d", id)
		}
		return fmt.Errorf("failed to add note: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Note added to lead %d (note ID: %d)\n", id, note.ID)
	return nil
}

// HealthCommand checks that the backend answers.
func HealthCommand(ctx context.Context, client *api.Client) error {
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("backend unavailable at %s: %w", client.BaseURL(), err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ API healthy at %s\n", client.BaseURL())
	return nil
}

func parseLeadID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid lead ID: %q", s)
	}
	return id, nil
}

func validSortKey(k models.SortKey) bool {
	for _, known := range models.SortKeys {
		if k == known {
			return true
		}
	}
	return false
}
