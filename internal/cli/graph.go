package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/depgraph"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
)

const (
	graphFormatDOT = "dot"
	graphFormatSVG = "svg"
)

// strategyPalette colors dependency nodes by how they were resolved.
var strategyPalette = map[string]string{
	"direct": "#bbf7d0",
	"solved": "#fde68a",
}

// graphCommand creates the graph command exporting a scene's resolution
// dependency graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "graph [scene.toml]",
		Short: "Export the dependency graph of a solved scene",
		Long: `Export the dependency graph of a solved scene.

Every widget axis is a node; an edge points from the node that must be placed
first to the node depending on it. Nodes placed without the solver are green,
solved nodes amber, and nodes on a cycle are outlined in red.

The graph is written as Graphviz DOT, or as SVG with -f svg.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(format, graphFormatDOT, graphFormatSVG); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), args[0], opts, output, format, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", graphFormatDOT, "output format: dot, svg")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with their resolution metadata")
	addSolveFlags(cmd, &opts)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats(graphFormatDOT, graphFormatSVG))

	return cmd
}

// runGraph solves the scene and writes its dependency graph.
func (c *CLI) runGraph(ctx context.Context, input string, opts pipeline.Options, output, format string, detailed bool) error {
	opts.ScenePath = input
	opts.Logger = c.Logger

	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	doc, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", input, err)
	}
	g, err := pipeline.DependencyGraph(doc, opts)
	if err != nil {
		return fmt.Errorf("solve %s: %w", input, err)
	}

	data := []byte(depgraph.ToDOT(g, depgraph.Options{
		Title:    doc.Name,
		Detailed: detailed,
		ColorKey: "strategy",
		Palette:  strategyPalette,
	}))
	if format == graphFormatSVG {
		if data, err = depgraph.RenderSVG(ctx, string(data)); err != nil {
			return err
		}
	}

	if output == "" {
		_, err := c.out.Write(data)
		return err
	}
	if err := errors.ValidateOutputPath(output); err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	c.printSuccess("Dependency graph written")
	c.printFile(output)
	c.printDetail("%d nodes · %d edges", g.NodeCount(), g.EdgeCount())
	if g.HasCycle() {
		c.printWarning("The graph has cycles; their nodes were solved together")
	}
	return nil
}
