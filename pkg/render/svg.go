package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/anchorlayout/pkg/scene"
)

const svgCSS = `
    .widget rect { stroke: ` + strokeColor + `; stroke-width: 1; }
    .widget text { font-family: monospace; font-size: 12px; fill: #0f172a; dominant-baseline: middle; text-anchor: middle; }
    .widget:hover rect { stroke-width: 3; }
    .baseline { stroke: #f97316; stroke-dasharray: 2 2; }
    .guide { stroke: ` + guideColor + `; stroke-dasharray: 4 4; }
    .guide.barrier { stroke: ` + barrierColor + `; }`

// SVG draws g as an SVG document in layout units.
func SVG(g scene.Geometry, opts ...Option) []byte {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		g.Width, g.Height, g.Width, g.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgCSS)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%d" height="%d" fill="white" stroke="%s"/>`+"\n",
		g.Width, g.Height, strokeColor)

	for _, b := range boxes(g) {
		renderSVGBox(&buf, b, o.labels)
	}
	if o.guides {
		for _, l := range lines(g) {
			renderSVGLine(&buf, l, g.Width, g.Height)
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderSVGBox(buf *bytes.Buffer, b box, labels bool) {
	name := html.EscapeString(b.Name)
	fmt.Fprintf(buf, `  <g class="widget" id="widget-%s">`+"\n", name)
	fmt.Fprintf(buf, `    <title>%s %s</title>`+"\n", name, b.Frame())
	fmt.Fprintf(buf, `    <rect x="%d" y="%d" width="%d" height="%d" rx="2" fill="%s"/>`+"\n",
		b.X, b.Y, b.Width, b.Height, html.EscapeString(b.fill))
	if b.Baseline != nil {
		fmt.Fprintf(buf, `    <line class="baseline" x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n",
			b.X, *b.Baseline, b.X+b.Width, *b.Baseline)
	}
	if labels {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f">%s</text>`+"\n",
			float64(b.X)+float64(b.Width)/2, float64(b.Y)+float64(b.Height)/2, html.EscapeString(b.label))
	}
	buf.WriteString("  </g>\n")
}

func renderSVGLine(buf *bytes.Buffer, l line, width, height int) {
	class := "guide"
	if l.barrier {
		class += " barrier"
	}
	x1, y1, x2, y2 := 0, l.pos, width, l.pos
	if l.vertical {
		x1, y1, x2, y2 = l.pos, 0, l.pos, height
	}
	fmt.Fprintf(buf, `  <line class="%s" id="guide-%s" x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n",
		class, html.EscapeString(l.name), x1, y1, x2, y2)
}
