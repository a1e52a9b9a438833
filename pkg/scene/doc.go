// Package scene reads constraint layouts from TOML documents.
//
// A scene describes one [layout.Container]: the root size and wrap modes,
// the optimization level, and every widget, guideline and barrier together
// with its connections. [Load] parses a file, [Document.Build] turns the
// document into a container, and [Scene.Solve] lays it out. The solved
// frames are captured as a [Geometry], which is what the renderers and the
// result cache consume.
//
// # Format
//
//	name = "login"
//
//	[layout]
//	level = "standard|dimensions"
//
//	[root]
//	width = 400
//	vertical = "wrap"
//
//	[[guideline]]
//	name = "gutter"
//	orientation = "vertical"
//	begin = 16
//
//	[[widget]]
//	name = "title"
//	text = "Sign in"
//	horizontal = "wrap"
//	vertical = "wrap"
//
//	  [[widget.connect]]
//	  from = "left"
//	  to = "gutter.left"
//
//	  [[widget.connect]]
//	  from = "top"
//	  to = "parent.top"
//	  margin = 16
//
// Connection targets are written as "name.anchor". The container itself is
// addressed as "parent" (or "root"), and a bare name connects to the
// target's anchor of the same type as "from".
//
// Widgets with text measure to a monospace grid of [Settings.CharWidth] by
// [Settings.LineHeight] cells; a fixed width wraps the text on word
// boundaries. Widgets with content_width/content_height measure to that
// size. Everything else measures to its design size.
package scene
