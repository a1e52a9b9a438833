package layout

import (
	"fmt"
	"math"
)

// Widget is one box of a [Container].
//
// Widgets are created by their container and addressed by [Handle]. The
// author inputs (position, size, behaviours, constraints) are only read
// during layout; the solved geometry is written to the widget's [Frame].
// Every setter marks the widget dirty, which makes the next layout rebuild
// the dependency graph and drop cached measurements.
type Widget struct {
	handle Handle
	parent Handle // root handle for children, NoHandle for the root
	scope  uint64 // id of the owning container
	name   string
	kind   Kind

	anchors [anchorCount]Anchor

	pos        [2]int
	size       [2]int
	behaviour  [2]DimensionBehaviour
	minSize    [2]int
	maxSize    [2]int
	bias       [2]float64
	chainStyle [2]ChainStyle
	weight     [2]float64
	match      [2]matchSpec

	ratio            ratioSpec
	visibility       Visibility
	baselineDistance int

	guide   *guideSpec
	barrier *barrierSpec

	frame Frame
	dirty bool
}

type matchSpec struct {
	style   MatchStyle
	min     int
	max     int
	percent float64
}

func newWidget(h, parent Handle, scope uint64, name string, kind Kind) *Widget {
	w := &Widget{
		handle:     h,
		parent:     parent,
		scope:      scope,
		name:       name,
		kind:       kind,
		bias:       [2]float64{0.5, 0.5},
		weight:     [2]float64{WeightUnset, WeightUnset},
		maxSize:    [2]int{unbounded, unbounded},
		match:      [2]matchSpec{{max: unbounded, percent: 1}, {max: unbounded, percent: 1}},
		frame:      Frame{Baseline: -1},
		dirty:      true,
		visibility: Visible,
	}
	for t := range anchorCount {
		w.anchors[t] = newAnchor(h, t)
	}
	return w
}

func (w *Widget) touch() { w.dirty = true }

// Handle returns the widget's address in its container.
func (w *Widget) Handle() Handle { return w.handle }

// Parent returns the container root's handle, or [NoHandle] for the root.
func (w *Widget) Parent() Handle { return w.parent }

// Kind returns what the widget is.
func (w *Widget) Kind() Kind { return w.kind }

// Name returns the widget's name, or a generated one when it has none.
func (w *Widget) Name() string {
	if w.name != "" {
		return w.name
	}
	if w.kind == KindContainer {
		return "parent"
	}
	return fmt.Sprintf("%s#%d", w.kind, w.handle)
}

// Frame returns the geometry written by the last layout.
func (w *Widget) Frame() Frame { return w.frame }

// X, Y, Width, Height and Baseline read the solved frame.
func (w *Widget) X() int        { return w.frame.X }
func (w *Widget) Y() int        { return w.frame.Y }
func (w *Widget) Width() int    { return w.frame.Width }
func (w *Widget) Height() int   { return w.frame.Height }
func (w *Widget) Baseline() int { return w.frame.Baseline }

// SetPosition sets the design position used on axes without connections.
func (w *Widget) SetPosition(x, y int) {
	w.pos = [2]int{x, y}
	w.touch()
}

// SetSize sets the design size used by [Fixed] axes.
func (w *Widget) SetSize(width, height int) {
	w.size = [2]int{max(width, 0), max(height, 0)}
	w.touch()
}

// SetWidth sets the design width.
func (w *Widget) SetWidth(width int) {
	w.size[Horizontal] = max(width, 0)
	w.touch()
}

// SetHeight sets the design height.
func (w *Widget) SetHeight(height int) {
	w.size[Vertical] = max(height, 0)
	w.touch()
}

// DesignSize returns the size set with SetSize.
func (w *Widget) DesignSize() (width, height int) {
	return w.size[Horizontal], w.size[Vertical]
}

// DesignPosition returns the position set with SetPosition.
func (w *Widget) DesignPosition() (x, y int) {
	return w.pos[Horizontal], w.pos[Vertical]
}

// SetHorizontalDimensionBehaviour sets the width mode.
func (w *Widget) SetHorizontalDimensionBehaviour(b DimensionBehaviour) {
	w.behaviour[Horizontal] = b
	w.touch()
}

// SetVerticalDimensionBehaviour sets the height mode.
func (w *Widget) SetVerticalDimensionBehaviour(b DimensionBehaviour) {
	w.behaviour[Vertical] = b
	w.touch()
}

// SetDimensionBehaviours sets both modes.
func (w *Widget) SetDimensionBehaviours(horizontal, vertical DimensionBehaviour) {
	w.behaviour = [2]DimensionBehaviour{horizontal, vertical}
	w.touch()
}

// DimensionBehaviour returns the size mode of an axis.
func (w *Widget) DimensionBehaviour(a Axis) DimensionBehaviour { return w.behaviour[a] }

// SetMinWidth, SetMaxWidth, SetMinHeight and SetMaxHeight bound the
// resolved size. A maximum <= 0 removes the bound.
func (w *Widget) SetMinWidth(v int)  { w.setMin(Horizontal, v) }
func (w *Widget) SetMaxWidth(v int)  { w.setMax(Horizontal, v) }
func (w *Widget) SetMinHeight(v int) { w.setMin(Vertical, v) }
func (w *Widget) SetMaxHeight(v int) { w.setMax(Vertical, v) }

func (w *Widget) setMin(a Axis, v int) {
	w.minSize[a] = max(v, 0)
	w.touch()
}

func (w *Widget) setMax(a Axis, v int) {
	if v <= 0 {
		v = unbounded
	}
	w.maxSize[a] = v
	w.touch()
}

// SetHorizontalBias and SetVerticalBias split leftover space between two
// opposing connections. Values are clamped to [0, 1].
func (w *Widget) SetHorizontalBias(b float64) { w.setBias(Horizontal, b) }
func (w *Widget) SetVerticalBias(b float64)   { w.setBias(Vertical, b) }

func (w *Widget) setBias(a Axis, b float64) {
	if math.IsNaN(b) {
		b = 0.5
	}
	w.bias[a] = min(max(b, 0), 1)
	w.touch()
}

// Bias returns the bias of an axis.
func (w *Widget) Bias(a Axis) float64 { return w.bias[a] }

// placementBias is the bias used to place w. A gone widget sits at the
// midpoint of its anchors whatever its bias.
func (w *Widget) placementBias(a Axis) float64 {
	if w.gone() {
		return 0.5
	}
	return w.bias[a]
}

// SetHorizontalChainStyle and SetVerticalChainStyle take effect when the
// widget is the head of a chain.
func (w *Widget) SetHorizontalChainStyle(s ChainStyle) { w.setChainStyle(Horizontal, s) }
func (w *Widget) SetVerticalChainStyle(s ChainStyle)   { w.setChainStyle(Vertical, s) }

func (w *Widget) setChainStyle(a Axis, s ChainStyle) {
	w.chainStyle[a] = s
	w.touch()
}

// ChainStyle returns the chain style of an axis.
func (w *Widget) ChainStyle(a Axis) ChainStyle { return w.chainStyle[a] }

// SetHorizontalWeight and SetVerticalWeight set the share of a
// [MatchConstraint] chain member. Negative values unset the weight.
func (w *Widget) SetHorizontalWeight(v float64) { w.setWeight(Horizontal, v) }
func (w *Widget) SetVerticalWeight(v float64)   { w.setWeight(Vertical, v) }

func (w *Widget) setWeight(a Axis, v float64) {
	if v < 0 || math.IsNaN(v) {
		v = WeightUnset
	}
	w.weight[a] = v
	w.touch()
}

// Weight returns the chain weight of an axis, [WeightUnset] when unset.
func (w *Widget) Weight(a Axis) float64 { return w.weight[a] }

// SetHorizontalMatchStyle and SetVerticalMatchStyle configure how a
// [MatchConstraint] axis is sized. min and max bound the result (max <= 0
// is unbounded) and percent is the container fraction for [MatchPercent].
func (w *Widget) SetHorizontalMatchStyle(s MatchStyle, min, max int, percent float64) {
	w.setMatch(Horizontal, s, min, max, percent)
}

func (w *Widget) SetVerticalMatchStyle(s MatchStyle, min, max int, percent float64) {
	w.setMatch(Vertical, s, min, max, percent)
}

func (w *Widget) setMatch(a Axis, s MatchStyle, lo, hi int, percent float64) {
	if hi <= 0 {
		hi = unbounded
	}
	if math.IsNaN(percent) {
		percent = 1
	}
	w.match[a] = matchSpec{style: s, min: max(lo, 0), max: hi, percent: min(max(percent, 0), 1)}
	w.touch()
}

// MatchStyle returns the match style of an axis.
func (w *Widget) MatchStyle(a Axis) MatchStyle { return w.match[a].style }

// SetVisibility changes the visibility.
func (w *Widget) SetVisibility(v Visibility) {
	w.visibility = v
	w.touch()
}

// Visibility returns the visibility.
func (w *Widget) Visibility() Visibility { return w.visibility }

// SetBaselineDistance sets the distance from the top edge to the baseline
// used when the measurer does not report one. Zero means no baseline.
func (w *Widget) SetBaselineDistance(d int) {
	w.baselineDistance = max(d, 0)
	w.touch()
}

// BaselineDistance returns the author's baseline distance.
func (w *Widget) BaselineDistance() int { return w.baselineDistance }

// gone reports whether the widget collapses.
func (w *Widget) gone() bool { return w.visibility == Gone }

// bounds returns the combined min/max of an axis. Match style bounds
// apply to [MatchConstraint] axes only.
func (w *Widget) bounds(a Axis) (lo, hi float64) {
	l, h := w.minSize[a], w.maxSize[a]
	if w.behaviour[a] == MatchConstraint {
		l = max(l, w.match[a].min)
		h = min(h, w.match[a].max)
	}
	return float64(l), float64(max(h, l))
}

// lineAxis returns the axis of a guideline or barrier.
func (w *Widget) lineAxis() (Axis, bool) {
	switch w.kind {
	case KindGuideline:
		return w.guide.orientation.axis(), true
	case KindBarrier:
		return w.barrier.side.Axis(), true
	}
	return Horizontal, false
}

func (w *Widget) String() string {
	return fmt.Sprintf("%s%s", w.Name(), w.frame)
}
