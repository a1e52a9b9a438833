package scene

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// parentNames address the container root in connection targets.
var parentNames = map[string]bool{"parent": true, "root": true}

// target is a parsed connection target.
type target struct {
	name   string
	anchor layout.AnchorType
}

// parseTarget splits "name.anchor". A bare name uses the anchor of the
// connection's source side.
func parseTarget(s string, from layout.AnchorType) target {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		if t, err := layout.ParseAnchorType(s[i+1:]); err == nil {
			return target{name: s[:i], anchor: t}
		}
	}
	return target{name: s, anchor: from}
}

// Validate checks names, enum values and references. It does not check
// anchor compatibility, which is reported by [Document.Build].
func (d *Document) Validate() error {
	seen := make(map[string]string)
	declare := func(kind, name string) error {
		if err := errors.ValidateName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "%s %q", kind, name)
		}
		if prev, dup := seen[name]; dup {
			return errors.New(errors.ErrCodeInvalidScene, "%s %q: name already used by a %s", kind, name, prev)
		}
		seen[name] = kind
		return nil
	}

	if _, err := layout.ParseOptimizationLevel(d.Layout.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "layout.level")
	}
	for field, mode := range map[string]string{"layout.width_mode": d.Layout.WidthMode, "layout.height_mode": d.Layout.HeightMode} {
		if _, err := parseMeasureMode(mode); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "%s", field)
		}
	}
	if d.Layout.MaxIterations < 0 || d.Layout.CharWidth < 0 || d.Layout.LineHeight < 0 {
		return errors.New(errors.ErrCodeInvalidScene, "layout settings must not be negative")
	}
	for _, b := range []string{d.Root.Horizontal, d.Root.Vertical} {
		if b == "" {
			continue
		}
		if rb, err := layout.ParseDimensionBehaviour(b); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "root")
		} else if rb != layout.Fixed && rb != layout.WrapContent {
			return errors.New(errors.ErrCodeInvalidScene, "root: behaviour %q is not fixed or wrap", b)
		}
	}

	for _, g := range d.Guidelines {
		if err := declare("guideline", g.Name); err != nil {
			return err
		}
		if _, err := parseOrientation(g.Orientation); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "guideline %q", g.Name)
		}
		set := 0
		for _, p := range []bool{g.Begin != nil, g.End != nil, g.Percent != nil} {
			if p {
				set++
			}
		}
		if set > 1 {
			return errors.New(errors.ErrCodeInvalidScene, "guideline %q: begin, end and percent are exclusive", g.Name)
		}
	}
	for _, b := range d.Barriers {
		if err := declare("barrier", b.Name); err != nil {
			return err
		}
		side, err := layout.ParseAnchorType(b.Side)
		if err != nil || side == layout.Baseline || side == layout.CenterX || side == layout.CenterY {
			return errors.New(errors.ErrCodeInvalidScene, "barrier %q: invalid side %q", b.Name, b.Side)
		}
	}
	for i := range d.Widgets {
		if err := declare("widget", d.Widgets[i].Name); err != nil {
			return err
		}
		if err := d.Widgets[i].validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "widget %q", d.Widgets[i].Name)
		}
	}

	known := func(name string) bool { return parentNames[name] || seen[name] != "" }
	for _, b := range d.Barriers {
		for _, ref := range b.References {
			if !known(ref) || parentNames[ref] {
				return errors.New(errors.ErrCodeInvalidScene, "barrier %q: unknown reference %q", b.Name, ref)
			}
		}
	}
	for _, w := range d.Widgets {
		for _, c := range w.Connect {
			from, _ := layout.ParseAnchorType(c.From)
			if t := parseTarget(c.To, from); !known(t.name) {
				return errors.New(errors.ErrCodeInvalidScene, "widget %q: unknown connection target %q", w.Name, c.To)
			}
		}
	}
	return nil
}

func (w *Widget) validate() error {
	for _, b := range []string{w.Horizontal, w.Vertical} {
		if b == "" {
			continue
		}
		if _, err := layout.ParseDimensionBehaviour(b); err != nil {
			return err
		}
	}
	for _, s := range []string{w.HorizontalChain, w.VerticalChain} {
		if _, err := layout.ParseChainStyle(s); err != nil {
			return err
		}
	}
	for _, m := range []*Match{w.HorizontalMatch, w.VerticalMatch} {
		if m == nil {
			continue
		}
		if _, err := layout.ParseMatchStyle(m.Style); err != nil {
			return err
		}
	}
	if w.Visibility != "" {
		if _, err := layout.ParseVisibility(w.Visibility); err != nil {
			return err
		}
	}
	if w.Ratio != "" {
		if _, err := layout.ParseDimensionRatio(w.Ratio); err != nil {
			return err
		}
	}
	for _, b := range []*float64{w.HorizontalBias, w.VerticalBias} {
		if b != nil && (*b < 0 || *b > 1) {
			return errors.New(errors.ErrCodeInvalidScene, "bias %v outside [0, 1]", *b)
		}
	}
	if w.Width < 0 || w.Height < 0 || w.ContentWidth < 0 || w.ContentHeight < 0 {
		return errors.New(errors.ErrCodeInvalidScene, "sizes must not be negative")
	}
	for _, c := range w.Connect {
		if _, err := layout.ParseAnchorType(c.From); err != nil {
			return err
		}
		if strings.TrimSpace(c.To) == "" {
			return errors.New(errors.ErrCodeInvalidScene, "connection from %s has no target", c.From)
		}
	}
	return nil
}

func parseOrientation(s string) (layout.Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical", "v":
		return layout.OrientationVertical, nil
	case "horizontal", "h":
		return layout.OrientationHorizontal, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidScene, "invalid orientation %q", s)
}

// parseMeasureMode parses a measure mode. Empty means no measure pass.
func parseMeasureMode(s string) (layout.MeasureMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exactly":
		return layout.Exactly, nil
	case "at_most", "atmost":
		return layout.AtMost, nil
	case "unspecified", "wrap":
		return layout.Unspecified, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "invalid measure mode %q", s)
}

func sceneName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
