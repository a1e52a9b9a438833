package layout

import (
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/anchorlayout/pkg/depgraph"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/observability"
	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// rootHandle is the handle of every container's root widget.
const rootHandle Handle = 0

var containerIDs atomic.Uint64

// Stats counts the work done by the last Layout or Measure call.
type Stats struct {
	Passes       int  // 2 when a wrap-content extent was computed first
	Direct       int  // widget axes resolved without the solver
	Solved       int  // widget axes resolved by the solver
	Systems      int  // linear systems built
	Iterations   int  // simplex pivots across all systems
	MeasureCalls int  // measurer invocations
	CacheHits    int  // measurements served from the cache
	Dropped      int  // hard constraints dropped as infeasible
	Capped       bool // a system stopped at its iteration cap
}

func (s Stats) summary() observability.LayoutSummary {
	return observability.LayoutSummary(s)
}

// Option configures a [Container].
type Option func(*Container)

// WithName names the container in logs and hooks.
func WithName(name string) Option {
	return func(c *Container) { c.name = name }
}

// WithMeasurer sets the intrinsic size callback. Without one, widgets
// measure to their design size.
func WithMeasurer(m Measurer) Option {
	return func(c *Container) { c.measurer = m }
}

// WithLogger sets the logger used for debug output. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOptimizationLevel sets the level used by [Container.Layout].
func WithOptimizationLevel(l OptimizationLevel) Option {
	return func(c *Container) { c.level = l }
}

// WithMaxIterations caps the pivots of every linear system.
func WithMaxIterations(n int) Option {
	return func(c *Container) { c.maxIterations = n }
}

// WithHooks overrides the hooks registered with
// [observability.SetLayoutHooks].
func WithHooks(h observability.LayoutHooks) Option {
	return func(c *Container) { c.layoutHooks = h }
}

// Container owns a flat set of widgets and lays them out inside its root.
//
// The root is a [KindContainer] widget at handle 0. Children connect to
// it, and its size is the span the children are resolved in. A Container
// is not safe for concurrent use; distinct containers are independent and
// may be laid out in parallel.
type Container struct {
	id            uint64
	name          string
	widgets       []*Widget
	byName        map[string]Handle
	measurer      Measurer
	logger        *log.Logger
	level         OptimizationLevel
	maxIterations int
	layoutHooks   observability.LayoutHooks

	cache map[measureKey]Measurement
	busy  bool
	stats Stats
	graph *depgraph.Graph
}

// NewContainer creates a container with a root of size 0x0.
func NewContainer(opts ...Option) *Container {
	c := &Container{
		id:            containerIDs.Add(1),
		byName:        make(map[string]Handle),
		logger:        log.New(io.Discard),
		level:         OptimizeStandard,
		maxIterations: solver.DefaultMaxIterations,
		cache:         make(map[measureKey]Measurement),
	}
	for _, opt := range opts {
		opt(c)
	}
	root := newWidget(rootHandle, NoHandle, c.id, "", KindContainer)
	c.widgets = append(c.widgets, root)
	return c
}

func (c *Container) hooks() observability.LayoutHooks {
	if c.layoutHooks != nil {
		return c.layoutHooks
	}
	return observability.Layout()
}

// Name returns the container name.
func (c *Container) Name() string {
	if c.name == "" {
		return "container"
	}
	return c.name
}

// Root returns the root widget. Set its size to lay out in a fixed span,
// or set a [WrapContent] behaviour to size it to its children.
func (c *Container) Root() *Widget { return c.widgets[rootHandle] }

func (c *Container) add(name string, kind Kind) *Widget {
	w := newWidget(Handle(len(c.widgets)), rootHandle, c.id, name, kind)
	c.widgets = append(c.widgets, w)
	if name != "" {
		if _, taken := c.byName[name]; !taken {
			c.byName[name] = w.handle
		}
	}
	return w
}

// NewWidget adds a plain widget. Names are optional; [Container.Lookup]
// finds the first widget with a given name.
func (c *Container) NewWidget(name string) *Widget {
	return c.add(name, KindPlain)
}

// NewGuideline adds a guideline at offset 0 from the start edge.
func (c *Container) NewGuideline(name string, o Orientation) Guideline {
	w := c.add(name, KindGuideline)
	w.guide = &guideSpec{orientation: o}
	return Guideline{w}
}

// NewBarrier adds a barrier on the given side without references.
func (c *Container) NewBarrier(name string, side AnchorType) (Barrier, error) {
	switch side {
	case Left, Top, Right, Bottom:
	default:
		return Barrier{}, errors.New(errors.ErrCodeInvalidWidget, "barrier %s: side must be an edge, got %s", name, side)
	}
	w := c.add(name, KindBarrier)
	w.barrier = &barrierSpec{side: side}
	return Barrier{w}, nil
}

// Widget returns the widget at h, or nil.
func (c *Container) Widget(h Handle) *Widget {
	if h < 0 || int(h) >= len(c.widgets) {
		return nil
	}
	return c.widgets[h]
}

// Lookup finds a widget by name. "parent" names the root.
func (c *Container) Lookup(name string) (*Widget, bool) {
	if name == "parent" {
		return c.Root(), true
	}
	h, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.widgets[h], true
}

// Guideline returns the guideline view of w, or false if w is not one.
func (c *Container) Guideline(w *Widget) (Guideline, bool) {
	if w == nil || w.kind != KindGuideline {
		return Guideline{}, false
	}
	return Guideline{w}, true
}

// Barrier returns the barrier view of w, or false if w is not one.
func (c *Container) Barrier(w *Widget) (Barrier, bool) {
	if w == nil || w.kind != KindBarrier {
		return Barrier{}, false
	}
	return Barrier{w}, true
}

// Children returns every widget except the root in creation order.
func (c *Container) Children() []*Widget {
	out := make([]*Widget, len(c.widgets)-1)
	copy(out, c.widgets[1:])
	return out
}

// Len returns the number of children.
func (c *Container) Len() int { return len(c.widgets) - 1 }

// OptimizationLevel returns the level used by Layout.
func (c *Container) OptimizationLevel() OptimizationLevel { return c.level }

// SetOptimizationLevel changes the level used by Layout.
func (c *Container) SetOptimizationLevel(l OptimizationLevel) { c.level = l }

// Stats returns the counters of the last Layout or Measure call.
func (c *Container) Stats() Stats { return c.stats }

// DependencyGraph returns the dependency graph of the last layout, or nil
// before the first one. Node metadata records the axis, kind and
// resolution strategy.
func (c *Container) DependencyGraph() *depgraph.Graph { return c.graph }

// Layout resolves every widget. Root axes with a [WrapContent] behaviour
// are sized to their content and clamped to the root's min/max; other root
// axes use the root's design size.
func (c *Container) Layout() error {
	var modes [2]MeasureMode
	var sizes [2]int
	root := c.Root()
	for _, a := range axes {
		sizes[a] = root.size[a]
		if root.behaviour[a] == WrapContent {
			modes[a] = Unspecified
		}
	}
	return c.run(modes, sizes)
}

// Measure resolves every widget at the given optimization level with the
// container constrained by the two measure modes. It also updates the
// level used by later Layout calls.
func (c *Container) Measure(level OptimizationLevel, widthMode MeasureMode, width int, heightMode MeasureMode, height int) error {
	if c.busy {
		return errReentrant(c)
	}
	c.level = level
	return c.run([2]MeasureMode{widthMode, heightMode}, [2]int{width, height})
}

var axes = [2]Axis{Horizontal, Vertical}

func errReentrant(c *Container) error {
	return errors.New(errors.ErrCodeReentrantLayout, "%s: layout called from inside a measurement", c.Name())
}

func (c *Container) run(modes [2]MeasureMode, sizes [2]int) (err error) {
	if c.busy {
		return errReentrant(c)
	}
	c.busy = true
	defer func() { c.busy = false }()

	start := time.Now()
	c.hooks().OnLayoutStart(c.Name(), c.Len(), c.level.String())
	c.stats = Stats{Passes: 1}
	defer func() {
		c.hooks().OnLayoutComplete(c.Name(), c.stats.summary(), time.Since(start), err)
	}()

	if c.updateHierarchy() {
		clear(c.cache)
	}

	p := newPass(c)
	root := c.Root()
	var span [2]float64
	for _, a := range axes {
		if modes[a] == Exactly {
			span[a] = float64(max(sizes[a], 0))
			continue
		}
		extent := p.extent(a)
		lo, hi := root.minSize[a], root.maxSize[a]
		if modes[a] == AtMost {
			hi = min(hi, max(sizes[a], 0))
		}
		span[a] = min(max(ceilPixel(extent), float64(lo)), float64(max(hi, lo)))
		c.stats.Passes = 2
		c.logger.Debug("wrap content", "container", c.Name(), "axis", a, "extent", extent, "span", span[a])
	}

	p.span = span
	p.resolve()
	p.apply()
	root.frame = Frame{Width: int(span[Horizontal]), Height: int(span[Vertical]), Baseline: -1}
	c.graph = p.graph

	c.logger.Debug("layout complete",
		"container", c.Name(),
		"level", c.level,
		"width", root.frame.Width,
		"height", root.frame.Height,
		"direct", c.stats.Direct,
		"solved", c.stats.Solved,
		"systems", c.stats.Systems,
		"iterations", c.stats.Iterations,
		"duration", time.Since(start),
	)
	if c.stats.Dropped > 0 {
		c.logger.Debug("dropped infeasible constraints", "container", c.Name(), "count", c.stats.Dropped)
	}
	if c.stats.Capped {
		c.logger.Debug("solver hit iteration cap", "container", c.Name(), "max", c.maxIterations)
	}
	return nil
}

// updateHierarchy clears the dirty flags and reports whether any widget
// changed since the last layout.
func (c *Container) updateHierarchy() bool {
	changed := false
	for _, w := range c.widgets {
		if w.dirty {
			changed = true
			w.dirty = false
		}
	}
	return changed
}

// ceilPixel rounds an extent up to whole pixels, ignoring float noise.
func ceilPixel(v float64) float64 {
	return math.Ceil(v - pixelEpsilon)
}
