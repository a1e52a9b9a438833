// Package render draws solved scene geometry.
//
// Every renderer takes a [scene.Geometry], so a layout restored from the
// cache renders exactly like a freshly solved one. Three formats are
// supported:
//
//   - PNG: raster image drawn with fogleman/gg
//   - SVG: hand-written vector markup with one group per widget
//   - ASCII: box drawing on a character grid, for terminals
//
// Guidelines and barriers are drawn as dashed lines when [WithGuides] is
// set. Widgets take their fill from the scene's color key, falling back to
// a fixed palette in creation order.
//
//	png, err := render.PNG(g, render.WithScale(2))
//	txt := render.ASCII(g, render.WithCell(8, 16))
package render
