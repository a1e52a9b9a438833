package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

// AnchorType names an attachment point on a widget.
type AnchorType int

const (
	Left AnchorType = iota
	Top
	Right
	Bottom
	Baseline
	CenterX
	CenterY

	anchorCount
)

var anchorNames = [...]string{"left", "top", "right", "bottom", "baseline", "center_x", "center_y"}

func (t AnchorType) String() string {
	if t < 0 || t >= anchorCount {
		return fmt.Sprintf("anchor(%d)", int(t))
	}
	return anchorNames[t]
}

// ParseAnchorType parses the names printed by String. "start" and "end"
// are accepted for left and right.
func ParseAnchorType(s string) (AnchorType, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "start":
		return Left, nil
	case "end":
		return Right, nil
	case "centerx", "center_horizontal":
		return CenterX, nil
	case "centery", "center_vertical":
		return CenterY, nil
	default:
		for i, n := range anchorNames {
			if v == n {
				return AnchorType(i), nil
			}
		}
	}
	return Left, errors.New(errors.ErrCodeInvalidConnection, "unknown anchor %q", s)
}

// Axis returns the axis the anchor lies on. Baseline is vertical.
func (t AnchorType) Axis() Axis {
	switch t {
	case Left, Right, CenterX:
		return Horizontal
	}
	return Vertical
}

// beginAnchor and endAnchor return the edge anchors of an axis.
func beginAnchor(a Axis) AnchorType {
	if a == Vertical {
		return Top
	}
	return Left
}

func endAnchor(a Axis) AnchorType {
	if a == Vertical {
		return Bottom
	}
	return Right
}

func centerAnchor(a Axis) AnchorType {
	if a == Vertical {
		return CenterY
	}
	return CenterX
}

// UnsetGoneMargin marks an anchor without a gone margin.
const UnsetGoneMargin = -1 << 31

// AnchorRef points at one anchor of another widget.
type AnchorRef struct {
	Widget Handle
	Type   AnchorType
}

// Anchor is one attachment point of a widget and its optional connection.
type Anchor struct {
	Type       AnchorType
	owner      Handle
	target     AnchorRef
	margin     int
	goneMargin int
	connected  bool
}

func newAnchor(owner Handle, t AnchorType) Anchor {
	return Anchor{Type: t, owner: owner, target: AnchorRef{Widget: NoHandle}, goneMargin: UnsetGoneMargin}
}

// IsConnected reports whether the anchor has a target.
func (a Anchor) IsConnected() bool { return a.connected }

// Target returns the connected anchor and true, or false when unconnected.
func (a Anchor) Target() (AnchorRef, bool) { return a.target, a.connected }

// Margin returns the connection margin.
func (a Anchor) Margin() int { return a.margin }

// GoneMargin returns the gone margin and whether one was set.
func (a Anchor) GoneMargin() (int, bool) {
	return a.goneMargin, a.goneMargin != UnsetGoneMargin
}

// Owner returns the handle of the widget that owns the anchor.
func (a Anchor) Owner() Handle { return a.owner }

func (a *Anchor) reset() {
	a.target = AnchorRef{Widget: NoHandle}
	a.margin = 0
	a.goneMargin = UnsetGoneMargin
	a.connected = false
}

// Connect attaches the from anchor to the to anchor of target.
//
// A CenterX or CenterY source connects both edges of its axis to the same
// target anchor. The connection is rejected, leaving the widget untouched,
// when the target is nil, belongs to another container, is the widget
// itself, lies on the other axis, or pairs a baseline with a non-baseline
// anchor. The root, guidelines and barriers cannot be connected from.
func (w *Widget) Connect(from AnchorType, target *Widget, to AnchorType, margin int) error {
	if err := w.validateConnection(from, target, to); err != nil {
		return err
	}
	ref := AnchorRef{Widget: target.handle, Type: to}
	if from == CenterX || from == CenterY {
		ax := from.Axis()
		w.connect(beginAnchor(ax), ref, margin)
		w.connect(endAnchor(ax), ref, margin)
		return nil
	}
	w.connect(from, ref, margin)
	return nil
}

func (w *Widget) connect(t AnchorType, ref AnchorRef, margin int) {
	a := &w.anchors[t]
	a.target = ref
	a.margin = margin
	a.connected = true
	w.touch()
}

func (w *Widget) validateConnection(from AnchorType, target *Widget, to AnchorType) error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConnection, "%s.%s: "+format,
			append([]any{w.Name(), from}, args...)...)
	}
	if from < 0 || from >= anchorCount || to < 0 || to >= anchorCount {
		return invalid("unknown anchor type")
	}
	if target == nil {
		return invalid("target is nil")
	}
	if target.scope != w.scope {
		return invalid("target %s belongs to another container", target.Name())
	}
	if target == w {
		return invalid("cannot connect a widget to itself")
	}
	if w.kind != KindPlain {
		return invalid("cannot connect from a %s", w.kind)
	}
	if (from == Baseline) != (to == Baseline) {
		return invalid("baseline only connects to baseline, got %s", to)
	}
	if from == Baseline && target.kind != KindPlain {
		return invalid("baseline target %s is a %s", target.Name(), target.kind)
	}
	if from.Axis() != to.Axis() {
		return invalid("target anchor %s.%s is on the %s axis", target.Name(), to, to.Axis())
	}
	if ax, ok := target.lineAxis(); ok && ax != to.Axis() {
		return invalid("%s %s is positioned on the %s axis", target.kind, target.Name(), ax)
	}
	return nil
}

// ResetAnchor disconnects one anchor. CenterX and CenterY reset the edge
// pair of their axis.
func (w *Widget) ResetAnchor(t AnchorType) {
	switch t {
	case CenterX, CenterY:
		ax := t.Axis()
		w.anchors[beginAnchor(ax)].reset()
		w.anchors[endAnchor(ax)].reset()
	default:
		if t >= 0 && t < anchorCount {
			w.anchors[t].reset()
		}
	}
	w.touch()
}

// ResetAnchors disconnects every anchor.
func (w *Widget) ResetAnchors() {
	for i := range w.anchors {
		w.anchors[i].reset()
	}
	w.touch()
}

// SetGoneMargin sets the margin used while the anchor's target is Gone.
// Pass [UnsetGoneMargin] to clear it.
func (w *Widget) SetGoneMargin(t AnchorType, margin int) {
	switch t {
	case CenterX, CenterY:
		ax := t.Axis()
		w.anchors[beginAnchor(ax)].goneMargin = margin
		w.anchors[endAnchor(ax)].goneMargin = margin
	default:
		if t >= 0 && t < anchorCount {
			w.anchors[t].goneMargin = margin
		}
	}
	w.touch()
}

// Anchor returns a copy of the anchor of type t.
func (w *Widget) Anchor(t AnchorType) Anchor {
	if t < 0 || t >= anchorCount {
		return newAnchor(w.handle, t)
	}
	return w.anchors[t]
}
