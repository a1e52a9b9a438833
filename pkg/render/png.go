package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/anchorlayout/pkg/scene"
)

// PNG draws g as a PNG image. The image is g.Width x g.Height pixels times
// the scale set by [WithScale]; labels use gg's built-in bitmap face.
func PNG(g scene.Geometry, opts ...Option) ([]byte, error) {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	w := int(math.Ceil(float64(max(g.Width, 1)) * o.scale))
	h := int(math.Ceil(float64(max(g.Height, 1)) * o.scale))

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.Scale(o.scale, o.scale)

	for _, b := range boxes(g) {
		drawBox(dc, b, o)
	}
	if o.guides {
		for _, l := range lines(g) {
			drawLine(dc, l, g)
		}
	}

	dc.Identity()
	dc.SetHexColor(strokeColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, 0.5, float64(w)-1, float64(h)-1)
	dc.Stroke()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBox(dc *gg.Context, b box, o options) {
	x, y := float64(b.X), float64(b.Y)
	w, h := float64(b.Width), float64(b.Height)

	dc.SetHexColor(b.fill)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()

	dc.SetHexColor(strokeColor)
	dc.SetLineWidth(1 / o.scale)
	dc.DrawRectangle(x+0.5/o.scale, y+0.5/o.scale, w-1/o.scale, h-1/o.scale)
	dc.Stroke()

	if b.Baseline != nil {
		dc.Push()
		dc.SetHexColor("#f97316")
		dc.SetDash(2, 2)
		dc.DrawLine(x, float64(*b.Baseline), x+w, float64(*b.Baseline))
		dc.Stroke()
		dc.Pop()
	}
	if o.labels && b.label != "" {
		dc.SetHexColor("#0f172a")
		dc.DrawStringAnchored(b.label, x+w/2, y+h/2, 0.5, 0.5)
	}
}

func drawLine(dc *gg.Context, l line, g scene.Geometry) {
	dc.Push()
	defer dc.Pop()
	dc.SetHexColor(guideColor)
	if l.barrier {
		dc.SetHexColor(barrierColor)
	}
	dc.SetDash(4, 4)
	pos := float64(l.pos)
	if l.vertical {
		dc.DrawLine(pos, 0, pos, float64(g.Height))
	} else {
		dc.DrawLine(0, pos, float64(g.Width), pos)
	}
	dc.Stroke()
}
