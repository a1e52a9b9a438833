package layout

// guideMode says which of the three guide specs is active.
type guideMode int

const (
	guideBegin guideMode = iota
	guideEnd
	guidePercent
)

type guideSpec struct {
	orientation Orientation
	mode        guideMode
	offset      int
	percent     float64
}

// Guideline is a view over a [KindGuideline] widget. A guideline is a
// line at a fixed offset from the start or end edge of the container, or
// at a fraction of its span. Setting one spec replaces the others.
type Guideline struct {
	*Widget
}

// Orientation returns the line orientation.
func (g Guideline) Orientation() Orientation { return g.guide.orientation }

// SetBegin places the line offset pixels from the container's start edge.
func (g Guideline) SetBegin(offset int) {
	g.guide.mode, g.guide.offset = guideBegin, offset
	g.touch()
}

// SetEnd places the line offset pixels before the container's end edge.
func (g Guideline) SetEnd(offset int) {
	g.guide.mode, g.guide.offset = guideEnd, offset
	g.touch()
}

// SetPercent places the line at fraction p of the container span. p is
// clamped to [0, 1].
func (g Guideline) SetPercent(p float64) {
	g.guide.mode, g.guide.percent = guidePercent, min(max(p, 0), 1)
	g.touch()
}

// Position resolves the line for a container spanning [0, span].
func (g Guideline) Position(span float64) float64 {
	return g.guide.position(span)
}

func (s *guideSpec) position(span float64) float64 {
	switch s.mode {
	case guideEnd:
		return span - float64(s.offset)
	case guidePercent:
		return s.percent * span
	}
	return float64(s.offset)
}
