package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// GenerateFunnelGraph renders the status funnel as DOT source: one box per
// status, edges labelled with the conversion between stages.
func GenerateFunnelGraph(ctx context.Context, stats FunnelStats) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetRankDir(cgraph.LRRank)

	stages := stats.Stages()
	nodes := make([]*cgraph.Node, len(stages))
	for i, s := range stages {
		node, err := graph.CreateNodeByName(string(s.Status))
		if err != nil {
			return "", fmt.Errorf("failed to create node %s: %w", s.Status, err)
		}
		node.SetShape(cgraph.BoxShape)
		node.SetLabel(fmt.Sprintf("%s\n%d leads", s.Status.Label(), s.Count))
		nodes[i] = node
	}

	for i := 0; i+1 < len(nodes); i++ {
		edge, err := graph.CreateEdgeByName(fmt.Sprintf("%s-%s", stages[i].Status, stages[i+1].Status), nodes[i], nodes[i+1])
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetLabel(fmt.Sprintf("%.0f%%", Conversion(stages, i)))
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
