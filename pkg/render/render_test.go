package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/scene"
)

func intPtr(v int) *int { return &v }

func sample() scene.Geometry {
	return scene.Geometry{
		Name:   "sample",
		Width:  80,
		Height: 48,
		Widgets: []scene.Placement{
			{Name: "gutter", Kind: "guideline", X: 72, Height: 48, Orientation: "vertical"},
			{Name: "a", Kind: "widget", X: 8, Y: 16, Width: 40, Height: 32, Color: "#ff0000", Baseline: intPtr(40)},
			{Name: "hidden", Kind: "widget", X: 0, Y: 0, Width: 0, Height: 0, Visibility: "gone"},
		},
	}
}

func TestASCII(t *testing.T) {
	got := ASCII(sample())
	want := strings.Join([]string{
		"+---------+",
		"|+----+   |",
		"||a   |   |",
		"++----+---+",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestASCIIGuidesAndTruncation(t *testing.T) {
	g := sample()
	g.Widgets[1].Text = "a long caption"
	got := ASCII(g, WithGuides(true))
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "|+----+  :|", lines[1])
	assert.Equal(t, "||a lo|  :|", lines[2])

	got = ASCII(g, WithLabels(false))
	assert.NotContains(t, got, "a lo")
}

func TestPNG(t *testing.T) {
	data, err := PNG(sample(), WithScale(2))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 160, img.Bounds().Dx())
	assert.Equal(t, 96, img.Bounds().Dy())

	r, g, b, _ := img.At((8+4)*2, (16+4)*2).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b}, "widget fill")
	r, g, b, _ = img.At(60*2, 8*2).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "background")
}

func TestSVG(t *testing.T) {
	g := sample()
	g.Widgets[1].Name = "a<b"
	out := string(SVG(g, WithGuides(true)))

	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 80 48"`))
	assert.Contains(t, out, `id="widget-a&lt;b"`)
	assert.Contains(t, out, `<rect x="8" y="16" width="40" height="32" rx="2" fill="#ff0000"/>`)
	assert.Contains(t, out, `<line class="baseline" x1="8" y1="40" x2="48" y2="40"/>`)
	assert.Contains(t, out, `<line class="guide" id="guide-gutter" x1="72" y1="0" x2="72" y2="48"/>`)
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestPaletteAssignment(t *testing.T) {
	g := scene.Geometry{Widgets: []scene.Placement{
		{Name: "x", Kind: "widget", Width: 1, Height: 1},
		{Name: "y", Kind: "widget", Width: 1, Height: 1, Color: "#000000"},
		{Name: "z", Kind: "widget", Width: 1, Height: 1, Text: "two\nlines"},
	}}
	bs := boxes(g)
	require.Len(t, bs, 3)
	assert.Equal(t, palette[0], bs[0].fill)
	assert.Equal(t, "#000000", bs[1].fill)
	assert.Equal(t, palette[2], bs[2].fill)
	assert.Equal(t, "two lines", bs[2].label)
}

func TestRender(t *testing.T) {
	for _, f := range Formats {
		data, err := Render(sample(), f)
		require.NoError(t, err, f)
		assert.NotEmpty(t, data, f)
	}

	data, err := Render(sample(), FormatJSON)
	require.NoError(t, err)
	back, err := scene.ReadJSON(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, sample(), back)

	_, err = Render(sample(), "gif")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}
