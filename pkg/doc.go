// Package pkg provides the libraries of anchorlayout, a constraint-based
// 2-D layout engine.
//
// # Overview
//
// Widgets are rectangles inside a container. Each widget has anchors (its
// edges, centers and baseline) that are connected to anchors of siblings,
// guidelines, barriers or the container itself. The engine turns those
// connections into linear equations, places everything it can directly
// and hands the rest to a small simplex solver. The pkg directory is
// organized into three areas:
//
//  1. [layout], [solver], [depgraph] - The engine
//  2. [scene], [render] - Documents and drawings
//  3. [pipeline], [cache], [observability], [errors] - Orchestration and ambient concerns
//
// # Architecture
//
// The typical data flow:
//
//	TOML scene
//	     ↓
//	[scene] package (decode, validate, build a container)
//	     ↓
//	[layout] package (optimize, emit equations, solve, apply frames)
//	     ↓
//	[scene] package (snapshot geometry)
//	     ↓
//	[render] package (PNG, SVG, text or JSON)
//
// # Quick Start
//
// Build and lay out a container in code:
//
//	c := layout.NewContainer()
//	c.Root().SetSize(600, 400)
//
//	ok := c.NewWidget("ok")
//	ok.SetSize(100, 40)
//	_ = ok.Connect(layout.Right, c.Root(), layout.Right, 16)
//	_ = ok.Connect(layout.Bottom, c.Root(), layout.Bottom, 16)
//
//	if err := c.Layout(); err != nil {
//	    return err
//	}
//	fmt.Println(ok.Frame()) // (484,344 100x40)
//
// Or run a scene file through the pipeline:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, _ := runner.Execute(ctx, pipeline.Options{
//	    ScenePath: "login.toml",
//	    Formats:   []string{"png", "json"},
//	})
//
// # Main Packages
//
// ## Engine
//
// [layout] - Widgets, anchors, guidelines, barriers, chains, dimension
// ratios and the container that lays them out. Optimization levels choose
// how much is placed without the solver; every level yields the same frames.
//
// [solver] - Exact rational arithmetic, linear equations and the
// strength-weighted two-phase simplex behind [layout].
//
// [depgraph] - Directed graphs with cycle detection, strongly connected
// components, topological order and Graphviz export. [layout] records the
// order in which widget axes were resolved as a depgraph.
//
// ## Documents and drawings
//
// [scene] - TOML scene documents, the text measurer and JSON geometry.
//
// [render] - Drawing solved geometry as PNG, SVG or plain text.
//
// ## Orchestration
//
// [pipeline] - The load → solve → render runner shared by the CLI and
// embedding programs, with caching and batch execution.
//
// [cache] - Content-addressed byte cache (file or null) for solved layouts
// and rendered artifacts.
//
// [observability] - Hooks for layout passes, solves, measurements, pipeline
// stages and cache traffic.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/layout/...     # Specific package
//	go test -run Example ./...   # Examples only
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/layout
// [solver]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/solver
// [depgraph]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/depgraph
// [scene]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/scene
// [render]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/errors
package pkg
