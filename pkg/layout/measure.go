package layout

// DimensionSpec describes one axis of a measurement request. Size is the
// design size for [Fixed] axes and 0 otherwise.
type DimensionSpec struct {
	Behaviour DimensionBehaviour
	Size      int
}

// MeasureSpec is what a [Measurer] is asked for.
type MeasureSpec struct {
	Horizontal DimensionSpec
	Vertical   DimensionSpec
}

// Measurement is the intrinsic size a [Measurer] reports. A Baseline <= 0
// means the widget's own baseline distance is used.
type Measurement struct {
	Width, Height int
	Baseline      int
}

// Measurer supplies intrinsic sizes, such as the size of a text. It must be
// a pure function of its inputs for layouts to be deterministic, and it
// must not call Layout or Measure on the container being laid out.
type Measurer interface {
	Measure(w *Widget, spec MeasureSpec) Measurement
}

// MeasurerFunc adapts a function to [Measurer].
type MeasurerFunc func(w *Widget, spec MeasureSpec) Measurement

// Measure calls f.
func (f MeasurerFunc) Measure(w *Widget, spec MeasureSpec) Measurement { return f(w, spec) }

// MeasureMode constrains the container size in [Container.Measure].
type MeasureMode int

const (
	// Exactly uses the given size.
	Exactly MeasureMode = iota
	// AtMost wraps the content but never exceeds the given size.
	AtMost
	// Unspecified wraps the content.
	Unspecified
)

var modeNames = [...]string{"exactly", "at_most", "unspecified"}

func (m MeasureMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unspecified"
	}
	return modeNames[m]
}

// measureKey identifies a cached measurement.
type measureKey struct {
	handle Handle
	spec   MeasureSpec
}

// needsMeasure reports whether a widget's size or baseline depends on the
// measurer.
func (w *Widget) needsMeasure() bool {
	if w.kind != KindPlain || w.gone() {
		return false
	}
	for _, b := range w.behaviour {
		if b == WrapContent || b == MatchConstraint {
			return true
		}
	}
	return false
}

func (w *Widget) measureSpec() MeasureSpec {
	spec := func(a Axis) DimensionSpec {
		d := DimensionSpec{Behaviour: w.behaviour[a]}
		if d.Behaviour == Fixed {
			d.Size = w.size[a]
		}
		return d
	}
	return MeasureSpec{Horizontal: spec(Horizontal), Vertical: spec(Vertical)}
}

// designMeasurement is what a widget measures to without a measurer.
func (w *Widget) designMeasurement() Measurement {
	return Measurement{Width: w.size[Horizontal], Height: w.size[Vertical], Baseline: w.baselineDistance}
}

// measure returns the intrinsic size of w, consulting and filling the
// container cache when caching is enabled.
func (c *Container) measure(w *Widget) Measurement {
	if !w.needsMeasure() {
		return w.designMeasurement()
	}
	if c.measurer == nil {
		return w.designMeasurement()
	}
	key := measureKey{handle: w.handle, spec: w.measureSpec()}
	cacheOn := c.level.Has(OptimizeGrouping)
	if cacheOn {
		if m, ok := c.cache[key]; ok {
			c.stats.CacheHits++
			c.hooks().OnMeasure(w.Name(), true)
			return m
		}
	}
	c.stats.MeasureCalls++
	c.hooks().OnMeasure(w.Name(), false)
	m := c.measurer.Measure(w, key.spec)
	m.Width, m.Height = max(m.Width, 0), max(m.Height, 0)
	if cacheOn {
		c.cache[key] = m
	}
	return m
}
