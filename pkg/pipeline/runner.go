package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/observability"
	"github.com/matzehuels/anchorlayout/pkg/render"
	"github.com/matzehuels/anchorlayout/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// Cache traffic is reported to the registered cache hooks.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.WithHooks(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → solve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	doc, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Scene = doc
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.WidgetCount = len(doc.Widgets)

	r.Logger.Debug("loaded scene",
		"scene", doc.Name,
		"widgets", len(doc.Widgets),
		"duration", result.Stats.LoadTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Solve
	solveStart := time.Now()
	geom, hash, solveHit, err := r.solve(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	result.Geometry = geom
	result.SceneHash = hash
	result.Stats.SolveTime = time.Since(solveStart)
	result.CacheInfo.SolveHit = solveHit

	r.Logger.Info("solved layout",
		"scene", doc.Name,
		"size", fmt.Sprintf("%dx%d", geom.Width, geom.Height),
		"direct", geom.Stats.Direct,
		"solved", geom.Stats.Solved,
		"cached", solveHit,
		"duration", result.Stats.SolveTime)
	if geom.Stats.Dropped > 0 {
		r.Logger.Warn("dropped conflicting constraints", "scene", doc.Name, "count", geom.Stats.Dropped)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, geom, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"scene", doc.Name,
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the scene named by opts. Inline sources win over paths.
func (r *Runner) Load(ctx context.Context, opts Options) (doc *scene.Document, err error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	source := opts.ScenePath
	if len(opts.Source) > 0 {
		source = "inline"
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()
	defer func() {
		widgets := 0
		if doc != nil {
			widgets = len(doc.Widgets)
		}
		hooks.OnLoadComplete(ctx, source, widgets, time.Since(start), err)
	}()

	if len(opts.Source) > 0 {
		doc, err = scene.Parse(opts.Source)
		if err == nil && doc.Name == "" {
			doc.Name = "scene"
		}
		return doc, err
	}
	return scene.Load(opts.ScenePath)
}

// SolveWithCacheInfo lays out doc with caching and returns cache hit info.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, doc *scene.Document, opts Options) (scene.Geometry, bool, error) {
	g, _, hit, err := r.solve(ctx, doc, opts)
	return g, hit, err
}

// Solve is a convenience wrapper that calls SolveWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Solve(ctx context.Context, doc *scene.Document, opts Options) (scene.Geometry, error) {
	g, _, err := r.SolveWithCacheInfo(ctx, doc, opts)
	return g, err
}

func (r *Runner) solve(ctx context.Context, doc *scene.Document, opts Options) (scene.Geometry, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForSolve(); err != nil {
		return scene.Geometry{}, "", false, err
	}

	effective := opts.Apply(doc)
	data, err := scene.Canonical(effective)
	if err != nil {
		return scene.Geometry{}, "", false, errors.Wrap(errors.ErrCodeInternal, err, "hash scene")
	}
	hash := cache.Hash(data)
	cacheKey := r.Keyer.LayoutKey(hash, layoutKeyOpts(effective))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			g, err := scene.ReadJSON(bytes.NewReader(data))
			if err == nil {
				return g, hash, true, nil
			}
			r.Logger.Debug("discarding unreadable cached geometry", "key", cacheKey, "err", err)
		}
	}

	s, err := Solve(doc, opts)
	if err != nil {
		return scene.Geometry{}, "", false, err
	}
	g := s.Geometry()

	if data, err := scene.MarshalGeometry(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Debug("cache write failed", "key", cacheKey, "err", err)
		}
	}
	return g, hash, false, nil
}

func layoutKeyOpts(doc *scene.Document) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Level:         doc.Layout.Level,
		Width:         doc.Root.Width,
		Height:        doc.Root.Height,
		WidthMode:     doc.Layout.WidthMode,
		HeightMode:    doc.Layout.HeightMode,
		MaxIterations: doc.Layout.MaxIterations,
	}
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g scene.Geometry, opts Options) (artifacts map[string][]byte, allCached bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	layoutData, err := scene.MarshalGeometry(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize geometry for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts = make(map[string][]byte, len(opts.Formats))
	allCached = true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
			continue
		}
		allCached = false

		data, err := render.Render(g, format, opts.renderOptions()...)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}
	return artifacts, allCached, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g scene.Geometry, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// WriteArtifacts writes every artifact of res next to base, one file per
// format: base.png, base.svg and so on.
func WriteArtifacts(res *Result, base string) ([]string, error) {
	var paths []string
	for _, format := range res.sortedFormats() {
		path := base + "." + format
		if err := errors.ValidateOutputPath(path); err != nil {
			return paths, err
		}
		if err := os.WriteFile(path, res.Artifacts[format], 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
