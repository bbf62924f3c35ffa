// ABOUTME: Terminal funnel dashboard rendering
// ABOUTME: ASCII bars per status with stage-to-stage conversion
package viz

import (
	"fmt"
	"strings"
)

func RenderDashboard(stats FunnelStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  SMS CAMPAIGN FUNNEL\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("BY STATUS\n")
	stages := stats.Stages()
	renderStages(&out, stages)
	out.WriteString("\n")

	out.WriteString("CONVERSION\n")
	for i := 0; i+1 < len(stages); i++ {
		out.WriteString(fmt.Sprintf("  %-8s → %-8s %5.1f%%\n",
			stages[i].Status, stages[i+1].Status, Conversion(stages, i)))
	}
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  %d leads  %d with notes  %d mortgaged\n", stats.Total, stats.WithNotes, stats.Mortgaged))
	if stats.Other > 0 {
		out.WriteString(fmt.Sprintf("  ⚠️  %d leads with an unknown status\n", stats.Other))
	}

	return out.String()
}

func renderStages(out *strings.Builder, stages []Stage) {
	maxCount := 0
	for _, s := range stages {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, s := range stages {
		barLength := (s.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-8s %s  %3d\n", s.Status, bar, s.Count))
	}
}
