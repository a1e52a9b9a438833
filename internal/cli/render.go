package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
	"github.com/matzehuels/anchorlayout/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output base path, single scene only
	formats  string // comma-separated formats
	noCache  bool   // disable caching
	parallel int    // scenes solved concurrently
}

// renderCommand creates the render command for drawing solved scenes.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderOpts
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [scene.toml...]",
		Short: "Solve scenes and draw them as PNG, SVG, text or JSON",
		Long: `Solve scenes and draw them as PNG, SVG, text or JSON.

Every scene is loaded, solved and drawn in each requested format. Outputs are
written next to the scene (login.toml → login.png) unless -o names a base path
for a single scene. Several scenes are processed in parallel.

Formats: ` + strings.Join(render.Formats, ", ") + `

Solved geometry and drawings are cached locally by content.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(flags.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if flags.output != "" && len(args) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--output needs exactly one scene, got %d", len(args))
			}
			return c.runRender(cmd.Context(), args, opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output base path (single scene)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): png (default), svg, txt, json (comma-separated)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVarP(&flags.parallel, "parallel", "p", pipeline.DefaultParallelism, "scenes processed concurrently")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG pixel scale")
	cmd.Flags().BoolVar(&opts.Guides, "guides", false, "draw guidelines and barriers")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", false, "omit widget labels")
	addSolveFlags(cmd, &opts)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats(render.Formats...))

	return cmd
}

// runRender executes the pipeline for every scene and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, inputs []string, opts pipeline.Options, flags renderOpts) error {
	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	spinner := c.newSpinner(ctx, fmt.Sprintf("Rendering %d scene(s)...", len(inputs)))
	spinner.Start()
	results, err := runner.ExecuteAll(ctx, inputs, opts, flags.parallel)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered scenes", "count", len(results))

	for i, res := range results {
		paths, err := pipeline.WriteArtifacts(res, basePath(flags.output, inputs[i]))
		if err != nil {
			return err
		}
		c.printSuccess("Rendered %s", res.Scene.Name)
		for _, p := range paths {
			c.printFile(p)
		}
		c.printStats(res.Geometry, res.CacheInfo.SolveHit)
		if res.Geometry.Stats.Dropped > 0 {
			c.printWarning("%d conflicting constraint(s) were dropped", res.Geometry.Stats.Dropped)
		}
	}
	return nil
}
