package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

// Handle addresses a widget inside its container. The root is always 0.
type Handle int

// NoHandle is the zero value for an absent widget reference.
const NoHandle Handle = -1

// Axis selects the horizontal (x, width) or vertical (y, height) dimension.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// suffix is the short axis tag used in dependency graph IDs.
func (a Axis) suffix() string {
	if a == Vertical {
		return "y"
	}
	return "x"
}

func (a Axis) other() Axis { return 1 - a }

// Kind tags what a widget is. Resolution dispatches on it.
type Kind int

const (
	KindPlain Kind = iota
	KindGuideline
	KindBarrier
	KindContainer
)

func (k Kind) String() string {
	switch k {
	case KindGuideline:
		return "guideline"
	case KindBarrier:
		return "barrier"
	case KindContainer:
		return "container"
	}
	return "widget"
}

// DimensionBehaviour is the size mode of one axis.
type DimensionBehaviour int

const (
	// Fixed uses the size set with SetWidth/SetHeight.
	Fixed DimensionBehaviour = iota
	// MatchConstraint sizes the axis from its constraints, see [MatchStyle].
	MatchConstraint
	// WrapContent uses the size reported by the [Measurer].
	WrapContent
	// MatchParent fills the container minus the anchor margins.
	MatchParent
)

var behaviourNames = [...]string{"fixed", "match_constraint", "wrap_content", "match_parent"}

func (b DimensionBehaviour) String() string {
	if b < 0 || int(b) >= len(behaviourNames) {
		return fmt.Sprintf("behaviour(%d)", int(b))
	}
	return behaviourNames[b]
}

// ParseDimensionBehaviour accepts the names printed by String plus the
// short forms "match" and "wrap".
func ParseDimensionBehaviour(s string) (DimensionBehaviour, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixed":
		return Fixed, nil
	case "match", "match_constraint":
		return MatchConstraint, nil
	case "wrap", "wrap_content":
		return WrapContent, nil
	case "parent", "match_parent":
		return MatchParent, nil
	}
	return Fixed, errors.New(errors.ErrCodeInvalidWidget, "unknown dimension behaviour %q", s)
}

// MatchStyle refines [MatchConstraint].
type MatchStyle int

const (
	// MatchSpread takes the whole span between the two anchors.
	MatchSpread MatchStyle = iota
	// MatchWrap takes the intrinsic size but never more than the span.
	MatchWrap
	// MatchPercent takes a fraction of the container span.
	MatchPercent
	// MatchRatio derives the axis from the other one through the
	// dimension ratio.
	MatchRatio
)

var matchNames = [...]string{"spread", "wrap", "percent", "ratio"}

func (m MatchStyle) String() string {
	if m < 0 || int(m) >= len(matchNames) {
		return fmt.Sprintf("match(%d)", int(m))
	}
	return matchNames[m]
}

// ParseMatchStyle parses the names printed by String.
func ParseMatchStyle(s string) (MatchStyle, error) {
	for i, n := range matchNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return MatchStyle(i), nil
		}
	}
	if strings.TrimSpace(s) == "" {
		return MatchSpread, nil
	}
	return MatchSpread, errors.New(errors.ErrCodeInvalidWidget, "unknown match style %q", s)
}

// ChainStyle controls how a chain distributes leftover space.
type ChainStyle int

const (
	ChainSpread ChainStyle = iota
	ChainSpreadInside
	ChainPacked
)

var chainNames = [...]string{"spread", "spread_inside", "packed"}

func (c ChainStyle) String() string {
	if c < 0 || int(c) >= len(chainNames) {
		return fmt.Sprintf("chain(%d)", int(c))
	}
	return chainNames[c]
}

// ParseChainStyle parses the names printed by String.
func ParseChainStyle(s string) (ChainStyle, error) {
	for i, n := range chainNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return ChainStyle(i), nil
		}
	}
	if strings.TrimSpace(s) == "" {
		return ChainSpread, nil
	}
	return ChainSpread, errors.New(errors.ErrCodeInvalidWidget, "unknown chain style %q", s)
}

// Visibility of a widget. Gone widgets collapse to zero size and their own
// margins are ignored.
type Visibility int

const (
	Visible Visibility = iota
	Invisible
	Gone
)

var visibilityNames = [...]string{"visible", "invisible", "gone"}

func (v Visibility) String() string {
	if v < 0 || int(v) >= len(visibilityNames) {
		return fmt.Sprintf("visibility(%d)", int(v))
	}
	return visibilityNames[v]
}

// ParseVisibility parses the names printed by String.
func ParseVisibility(s string) (Visibility, error) {
	for i, n := range visibilityNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Visibility(i), nil
		}
	}
	if strings.TrimSpace(s) == "" {
		return Visible, nil
	}
	return Visible, errors.New(errors.ErrCodeInvalidWidget, "unknown visibility %q", s)
}

// Orientation of a guideline. A vertical guideline is a vertical line and
// therefore has an x position.
type Orientation int

const (
	OrientationVertical Orientation = iota
	OrientationHorizontal
)

func (o Orientation) String() string {
	if o == OrientationHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// axis returns the axis along which a guideline of this orientation is
// positioned.
func (o Orientation) axis() Axis {
	if o == OrientationHorizontal {
		return Vertical
	}
	return Horizontal
}

// WeightUnset marks a chain weight that was never set. Flexible chain
// members without a weight share space as if their weight were 1.
const WeightUnset = -1.0

// Frame is the solved geometry of a widget in container coordinates.
// Baseline is -1 when the widget has none.
type Frame struct {
	X, Y          int
	Width, Height int
	Baseline      int
}

func (f Frame) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", f.X, f.Y, f.Width, f.Height)
}

// Right returns X + Width.
func (f Frame) Right() int { return f.X + f.Width }

// Bottom returns Y + Height.
func (f Frame) Bottom() int { return f.Y + f.Height }

// unbounded is the stored value for an unset maximum.
const unbounded = math.MaxInt32
