// Package layout computes box geometry from anchor constraints.
//
// A [Container] owns a flat set of widgets. Each widget has anchors
// (left, top, right, bottom, baseline and the two centers) that connect
// to anchors of siblings, guidelines, barriers or the container root,
// with a margin. Per-axis [DimensionBehaviour]s, biases, chains, weights
// and dimension ratios complete the description. [Container.Layout]
// resolves everything into integer frames.
//
// # Resolution
//
// Every layout builds a dependency graph with one node per widget axis
// and one per chain. Nodes outside any cycle whose sizes are known up
// front are placed directly in dependency order; the remaining nodes are
// handed to the simplex solver in package solver, one system per weakly
// connected group. Both paths use the same equations, so every
// [OptimizationLevel] yields the same frames:
//
//	c := layout.NewContainer(layout.WithMeasurer(textMeasurer))
//	c.Root().SetSize(600, 400)
//	title := c.NewWidget("title")
//	title.SetDimensionBehaviours(layout.WrapContent, layout.WrapContent)
//	title.Connect(layout.Left, c.Root(), layout.Left, 16)
//	title.Connect(layout.Top, c.Root(), layout.Top, 16)
//	if err := c.Layout(); err != nil {
//	    return err
//	}
//	fmt.Println(title.Frame())
//
// Invalid connections are rejected when they are made. Conflicting
// constraints never fail a layout: the solver keeps the strongest ones and
// [Container.Stats] reports how many hard constraints were dropped.
package layout
