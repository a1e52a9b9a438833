package scene

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// textMeasurer measures scene widgets. It only reads the document, so it
// is a pure function of the widget and its MeasureSpec.
type textMeasurer struct {
	widgets    map[string]*Widget
	charWidth  int
	lineHeight int
}

func newTextMeasurer(d *Document) *textMeasurer {
	m := &textMeasurer{
		widgets:    make(map[string]*Widget, len(d.Widgets)),
		charWidth:  d.Layout.CharWidth,
		lineHeight: d.Layout.LineHeight,
	}
	if m.charWidth == 0 {
		m.charWidth = DefaultCharWidth
	}
	if m.lineHeight == 0 {
		m.lineHeight = DefaultLineHeight
	}
	for i := range d.Widgets {
		m.widgets[d.Widgets[i].Name] = &d.Widgets[i]
	}
	return m
}

func (m *textMeasurer) Measure(w *layout.Widget, spec layout.MeasureSpec) layout.Measurement {
	dw, dh := w.DesignSize()
	sw, ok := m.widgets[w.Name()]
	if !ok {
		return layout.Measurement{Width: dw, Height: dh}
	}
	if sw.Text != "" {
		cols := 0
		if spec.Horizontal.Behaviour == layout.Fixed {
			cols = spec.Horizontal.Size / m.charWidth
		}
		lines := wrapText(sw.Text, cols)
		longest := 0
		for _, l := range lines {
			longest = max(longest, utf8.RuneCountInString(l))
		}
		return layout.Measurement{
			Width:    longest * m.charWidth,
			Height:   len(lines) * m.lineHeight,
			Baseline: m.lineHeight - m.lineHeight/4,
		}
	}
	out := layout.Measurement{Width: dw, Height: dh}
	if sw.ContentWidth > 0 {
		out.Width = sw.ContentWidth
	}
	if sw.ContentHeight > 0 {
		out.Height = sw.ContentHeight
	}
	return out
}

// wrapText splits text into lines of at most cols runes, breaking at
// spaces. Explicit newlines always break. cols <= 0 disables wrapping, and
// words longer than a line are kept whole.
func wrapText(text string, cols int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if cols <= 0 {
			lines = append(lines, para)
			continue
		}
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) > cols {
				lines = append(lines, line)
				line = word
				continue
			}
			line += " " + word
		}
		lines = append(lines, line)
	}
	return lines
}
