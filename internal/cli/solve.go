package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/pipeline"
	"github.com/matzehuels/anchorlayout/pkg/render"
	"github.com/matzehuels/anchorlayout/pkg/scene"
)

// solveCommand creates the solve command computing a scene's geometry.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		ascii   bool
		frames  bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "solve [scene.toml]",
		Short: "Solve a scene and write its geometry as JSON",
		Long: `Solve a scene and write its geometry as JSON.

The solve command builds the constraint container described by a TOML scene,
lays it out and writes the resulting frames to <scene>.layout.json (or the
file given with -o; "-" writes to stdout). The JSON can be drawn later with
'render'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd.Context(), args[0], opts, output, noCache, ascii, frames)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <scene>.layout.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "print the solved layout as text")
	cmd.Flags().BoolVar(&frames, "frames", false, "print a table of solved frames")
	addSolveFlags(cmd, &opts)

	return cmd
}

// runSolve loads and solves the scene, then writes its geometry.
func (c *CLI) runSolve(ctx context.Context, input string, opts pipeline.Options, output string, noCache, ascii, frames bool) error {
	opts.ScenePath = input
	opts.Logger = c.Logger

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	doc, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", input, err)
	}

	spinner := c.newSpinner(ctx, "Solving layout...")
	spinner.Start()
	g, cacheHit, err := runner.SolveWithCacheInfo(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Solve failed")
		return fmt.Errorf("solve %s: %w", input, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "-" {
		return scene.WriteJSON(g, c.out)
	}
	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}
	if err := scene.ExportJSON(g, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	c.printSuccess("Layout solved")
	c.printFile(outputPath)
	c.printStats(g, cacheHit)
	if g.Stats.Capped {
		c.printWarning("Solver hit the iteration cap; the layout may be approximate")
	}
	if ascii {
		c.printNewline()
		fmt.Fprint(c.out, render.ASCII(g, render.WithGuides(true)))
	}
	if frames {
		c.printNewline()
		c.println(frameTable(g))
	}
	c.printNewline()
	c.printNextStep("Render", "anchorlayout render "+input)

	return nil
}
