package layout

import (
	"slices"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

type barrierSpec struct {
	side       AnchorType
	refs       []Handle
	allowsGone bool
	margin     int
}

// Barrier is a view over a [KindBarrier] widget. Its position is the
// extremum of one side of the referenced widgets: the maximum for Right
// and Bottom, the minimum for Left and Top. The margin pushes the barrier
// away from the references. A barrier without references sits at 0.
type Barrier struct {
	*Widget
}

// Side returns the referenced side.
func (b Barrier) Side() AnchorType { return b.barrier.side }

// SetSide changes the referenced side. Only edge anchors are accepted.
func (b Barrier) SetSide(side AnchorType) error {
	switch side {
	case Left, Top, Right, Bottom:
	default:
		return errors.New(errors.ErrCodeInvalidWidget, "barrier %s: side must be an edge, got %s", b.Name(), side)
	}
	b.barrier.side = side
	b.touch()
	return nil
}

// Add references widgets. Widgets from another container, the root, the
// barrier itself and duplicates are rejected.
func (b Barrier) Add(widgets ...*Widget) error {
	for _, w := range widgets {
		switch {
		case w == nil:
			return errors.New(errors.ErrCodeInvalidWidget, "barrier %s: nil reference", b.Name())
		case w.scope != b.scope:
			return errors.New(errors.ErrCodeInvalidWidget, "barrier %s: %s belongs to another container", b.Name(), w.Name())
		case w == b.Widget || w.kind == KindContainer:
			return errors.New(errors.ErrCodeInvalidWidget, "barrier %s: cannot reference %s", b.Name(), w.Name())
		}
		if ax, ok := w.lineAxis(); ok && ax != b.barrier.side.Axis() {
			return errors.New(errors.ErrCodeInvalidWidget, "barrier %s: %s lies on the %s axis", b.Name(), w.Name(), ax)
		}
		if !slices.Contains(b.barrier.refs, w.handle) {
			b.barrier.refs = append(b.barrier.refs, w.handle)
		}
	}
	b.touch()
	return nil
}

// References returns the referenced handles in insertion order.
func (b Barrier) References() []Handle { return slices.Clone(b.barrier.refs) }

// SetAllowsGoneWidgets includes Gone references in the extremum.
func (b Barrier) SetAllowsGoneWidgets(allow bool) {
	b.barrier.allowsGone = allow
	b.touch()
}

// SetMargin offsets the barrier away from its references.
func (b Barrier) SetMargin(m int) {
	b.barrier.margin = m
	b.touch()
}

// isMax reports whether the barrier takes the maximum of its references.
func (s *barrierSpec) isMax() bool {
	return s.side == Right || s.side == Bottom
}
