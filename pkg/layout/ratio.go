package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

// DimensionRatio couples the two axes of a widget: width = Value·height.
type DimensionRatio struct {
	Value float64
	// Dependent is the derived axis when Explicit is set. Otherwise it is
	// chosen from the dimension behaviours at layout time.
	Dependent Axis
	Explicit  bool
}

type ratioSpec struct {
	DimensionRatio
	set bool
}

// ParseDimensionRatio parses "w:h", a plain number ("1.5"), or either form
// prefixed with "W," or "H," naming the axis that is derived from the
// other one.
func ParseDimensionRatio(s string) (DimensionRatio, error) {
	var r DimensionRatio
	src := strings.TrimSpace(s)
	if i := strings.IndexByte(src, ','); i >= 0 {
		switch strings.ToUpper(strings.TrimSpace(src[:i])) {
		case "W":
			r.Dependent, r.Explicit = Horizontal, true
		case "H":
			r.Dependent, r.Explicit = Vertical, true
		default:
			return r, errors.New(errors.ErrCodeInvalidRatio, "ratio %q: axis must be W or H", s)
		}
		src = strings.TrimSpace(src[i+1:])
	}
	var num, den float64
	var err error
	if i := strings.IndexByte(src, ':'); i >= 0 {
		if num, err = parseRatioTerm(src[:i]); err == nil {
			den, err = parseRatioTerm(src[i+1:])
		}
	} else {
		num, err = parseRatioTerm(src)
		den = 1
	}
	if err != nil {
		return r, errors.Wrap(errors.ErrCodeInvalidRatio, err, "ratio %q", s)
	}
	if num <= 0 || den <= 0 {
		return r, errors.New(errors.ErrCodeInvalidRatio, "ratio %q must be positive", s)
	}
	r.Value = num / den
	return r, nil
}

func parseRatioTerm(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// SetDimensionRatio parses and sets the ratio. An empty string clears it.
// On error the previous ratio is kept.
func (w *Widget) SetDimensionRatio(s string) error {
	if strings.TrimSpace(s) == "" {
		w.ratio = ratioSpec{}
		w.touch()
		return nil
	}
	r, err := ParseDimensionRatio(s)
	if err != nil {
		return err
	}
	w.ratio = ratioSpec{DimensionRatio: r, set: true}
	w.touch()
	return nil
}

// DimensionRatio returns the ratio and whether one is set.
func (w *Widget) DimensionRatio() (DimensionRatio, bool) {
	return w.ratio.DimensionRatio, w.ratio.set
}

// ratioAxis returns the axis derived through the ratio, if the ratio is
// active. The derived axis must be [MatchConstraint]. Without an explicit
// axis a [MatchRatio] style wins, then height when both axes match, then
// the single matching axis.
func (w *Widget) ratioAxis() (Axis, bool) {
	if !w.ratio.set || w.kind != KindPlain {
		return Horizontal, false
	}
	isMatch := func(a Axis) bool { return w.behaviour[a] == MatchConstraint }
	if w.ratio.Explicit {
		return w.ratio.Dependent, isMatch(w.ratio.Dependent)
	}
	for _, a := range [2]Axis{Vertical, Horizontal} {
		if isMatch(a) && w.match[a].style == MatchRatio {
			return a, true
		}
	}
	switch {
	case isMatch(Vertical):
		return Vertical, true
	case isMatch(Horizontal):
		return Horizontal, true
	}
	return Horizontal, false
}

// fromOther converts the size of the independent axis into the size of
// the dependent axis a.
func (r DimensionRatio) fromOther(a Axis, other float64) float64 {
	if a == Horizontal {
		return r.Value * other
	}
	return other / r.Value
}

// factor is the coefficient k of size(a) = k·size(other).
func (r DimensionRatio) factor(a Axis) float64 {
	if a == Horizontal {
		return r.Value
	}
	return 1 / r.Value
}
