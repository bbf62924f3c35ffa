// ABOUTME: Visualization CLI commands
// ABOUTME: Handles the funnel dashboard and DOT funnel graph
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/models"
	"github.com/harperreed/smscrm/viz"
)

// VizFunnelCommand writes the status funnel as DOT source.
func VizFunnelCommand(ctx context.Context, svc api.LeadService, args []string) error {
	fs := flag.NewFlagSet("viz funnel", flag.ContinueOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	leads, err := svc.ListLeads(ctx, models.FilterAll)
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}

	dot, err := viz.GenerateFunnelGraph(ctx, viz.ComputeFunnel(leads))
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	_, _ = fmt.Fprintln(stdout, dot)
	return nil
}

func VizDashboardCommand(ctx context.Context, svc api.LeadService, args []string) error {
	leads, err := svc.ListLeads(ctx, models.FilterAll)
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}

	_, _ = fmt.Fprint(stdout, viz.RenderDashboard(viz.ComputeFunnel(leads)))
	return nil
}
