package depgraph

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Options configures DOT export.
type Options struct {
	// Title is drawn as the graph label when non-empty.
	Title string
	// Detailed adds node metadata to the labels.
	Detailed bool
	// ColorKey names the node metadata entry used to pick a fill color.
	// Values found in Palette are used as colors; unknown values stay white.
	ColorKey string
	Palette  map[string]string
}

// ToDOT converts the graph to Graphviz DOT. Edges carrying a Kind are labeled
// with it and nodes on a cycle are outlined in red.
func ToDOT(g *Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=9, color=\"#666666\"];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	cyclic := g.CyclicNodes()
	for _, n := range g.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if opts.ColorKey != "" {
			if v, ok := n.Meta[opts.ColorKey]; ok {
				if c, ok := opts.Palette[fmt.Sprint(v)]; ok {
					attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
				}
			}
		}
		if cyclic[n.ID] {
			attrs = append(attrs, "color=red", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.Kind != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Kind)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *Node, detailed bool) string {
	if !detailed || len(n.Meta) == 0 {
		return n.Label
	}
	parts := []string{n.Label}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
