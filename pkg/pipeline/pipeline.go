// Package pipeline runs scenes through the load → solve → render stages.
//
// The CLI and any embedding program share this package so that defaults,
// caching and logging behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and validate a TOML scene document
//  2. Solve: Build the constraint container and lay it out
//  3. Render: Draw the solved geometry in the requested formats
//
// Solved geometry and rendered artifacts are cached by content hash, so a
// scene that did not change is neither solved nor drawn twice.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ScenePath: "login.toml",
//	    Formats:   []string{"png"},
//	})
//	png := result.Artifacts["png"]
//
// Run individual stages:
//
//	doc, err := runner.Load(ctx, opts)
//	geom, err := runner.Solve(ctx, doc, opts)
//	artifacts, err := runner.Render(ctx, geom, opts)
package pipeline

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/depgraph"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/render"
	"github.com/matzehuels/anchorlayout/pkg/scene"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFormat is rendered when no format is requested.
	DefaultFormat = render.FormatJSON

	// DefaultScale is the raster scale of PNG output.
	DefaultScale = 1.0

	// DefaultParallelism bounds concurrent scenes in [Runner.ExecuteAll].
	DefaultParallelism = 4
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options
	ScenePath string `json:"scene_path,omitempty"`
	Source    []byte `json:"-"` // inline scene, used instead of ScenePath

	// Solve options, each overriding the scene's own settings when set
	Level         string `json:"level,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	MaxIterations int    `json:"max_iterations,omitempty"`
	Refresh       bool   `json:"refresh,omitempty"` // bypass cached geometry

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Guides   bool     `json:"guides,omitempty"`
	NoLabels bool     `json:"no_labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the loaded document.
	Scene *scene.Document

	// SceneHash is the content hash of the scene after overrides.
	SceneHash string

	// Geometry is the solved layout.
	Geometry scene.Geometry

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

func (r *Result) sortedFormats() []string {
	return slices.Sorted(maps.Keys(r.Artifacts))
}

// Stats contains pipeline execution statistics.
type Stats struct {
	WidgetCount int
	LoadTime    time.Duration
	SolveTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolveHit  bool // geometry came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormats checks that all formats are renderable.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, render.Formats...); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLevel checks an optimization level override.
func ValidateLevel(level string) error {
	if level == "" {
		return nil
	}
	_, err := layout.ParseOptimizationLevel(level)
	return err
}

// ValidateForLoad checks that a scene source is given.
func (o *Options) ValidateForLoad() error {
	if o.ScenePath == "" && len(o.Source) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scene path or source is required")
	}
	o.setLogger()
	return nil
}

// ValidateForSolve checks the solve overrides and applies defaults.
func (o *Options) ValidateForSolve() error {
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "size overrides must not be negative")
	}
	if o.MaxIterations < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max iterations must not be negative")
	}
	o.setLogger()
	return ValidateLevel(o.Level)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive")
	}
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults checks every stage's options.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForSolve(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// renderOptions translates the render settings.
func (o *Options) renderOptions() []render.Option {
	return []render.Option{
		render.WithScale(o.Scale),
		render.WithGuides(o.Guides),
		render.WithLabels(!o.NoLabels),
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Scale:  o.Scale,
		Labels: !o.NoLabels,
		Guides: o.Guides,
	}
}

// =============================================================================
// Stages without caching
// =============================================================================

// Apply returns a copy of doc with the solve overrides of o applied.
func (o *Options) Apply(doc *scene.Document) *scene.Document {
	out := *doc
	if o.Level != "" {
		out.Layout.Level = o.Level
	}
	if o.MaxIterations > 0 {
		out.Layout.MaxIterations = o.MaxIterations
	}
	if o.Width > 0 {
		out.Root.Width = o.Width
	}
	if o.Height > 0 {
		out.Root.Height = o.Height
	}
	return &out
}

// Solve builds and lays out doc after applying the overrides of opts.
func Solve(doc *scene.Document, opts Options) (*scene.Scene, error) {
	if err := opts.ValidateForSolve(); err != nil {
		return nil, err
	}
	s, err := opts.Apply(doc).Build(layout.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	if err := s.Solve(); err != nil {
		return nil, err
	}
	return s, nil
}

// Render draws g in every requested format.
func Render(g scene.Geometry, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := render.Render(g, format, opts.renderOptions()...)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// DependencyGraph solves doc and returns the resolution dependency graph
// of its container. Graphs describe one live solve and are never cached.
func DependencyGraph(doc *scene.Document, opts Options) (*depgraph.Graph, error) {
	s, err := Solve(doc, opts)
	if err != nil {
		return nil, err
	}
	return s.Container.DependencyGraph(), nil
}
