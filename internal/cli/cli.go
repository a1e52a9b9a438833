// Package cli implements the anchorlayout command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/buildinfo"
	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
	"github.com/matzehuels/anchorlayout/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out io.Writer // command results and status lines
	err io.Writer // spinner frames
}

// New creates a new CLI instance logging to w. Results go to stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
		err:    w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command results and status lines.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "anchorlayout",
		Short: "Anchorlayout solves anchor-constraint layouts",
		Long: `Anchorlayout positions widgets inside a container from relative anchor
constraints: edges tied to other edges, guidelines, barriers, chains and
aspect ratios. Scenes are described in TOML and solved into geometry that
can be exported as JSON or drawn as PNG, SVG or plain text.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Cache keys are scoped
// to the running build.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.CacheScope())
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Options Helpers
// =============================================================================

// addSolveFlags registers the flags overriding a scene's layout settings.
func addSolveFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVar(&opts.Level, "level", "", "optimization level, e.g. none, standard, all or direct|chain")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "override the container width")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "override the container height")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "cap solver pivots per phase")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "solve again even when cached geometry exists")
	cmd.ValidArgsFunction = completeScenes
	_ = cmd.RegisterFlagCompletionFunc("level", completeLevels)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatPNG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, strings.ToLower(f))
		}
	}
	return formats
}

// basePath derives the base output path from the output and input paths.
// Without an output the scene's extension is stripped; a known format
// extension on the output is stripped too.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	for _, f := range render.Formats {
		if ext == "."+f {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}
