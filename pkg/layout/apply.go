package layout

import "math"

// pixelEpsilon absorbs float noise before rounding to pixels.
const pixelEpsilon = 1e-7

// pixel rounds half up.
func pixel(v float64) int {
	return int(math.Floor(v + 0.5 + pixelEpsilon))
}

// apply writes the resolved nodes onto the widget frames.
func (p *pass) apply() {
	for _, w := range p.c.widgets[1:] {
		if ax, ok := w.lineAxis(); ok {
			pos := pixel(p.nodeOf(w, ax).begin)
			if ax == Horizontal {
				w.frame = Frame{X: pos, Height: int(p.span[Vertical]), Baseline: -1}
			} else {
				w.frame = Frame{Y: pos, Width: int(p.span[Horizontal]), Baseline: -1}
			}
			continue
		}
		h, v := p.nodeOf(w, Horizontal), p.nodeOf(w, Vertical)
		x, y := pixel(h.begin), pixel(v.begin)
		f := Frame{
			X:        x,
			Y:        y,
			Width:    max(pixel(h.end)-x, 0),
			Height:   max(pixel(v.end)-y, 0),
			Baseline: -1,
		}
		if bd := p.baselineDistance(w); bd > 0 && !w.gone() {
			f.Baseline = y + int(bd)
		}
		w.frame = f
	}
}
