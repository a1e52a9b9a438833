package depgraph_test

import (
	"fmt"

	"github.com/matzehuels/anchorlayout/pkg/depgraph"
)

func ExampleGraph_TopologicalSort() {
	// parent.x must be known before button.x, and button.x before label.x.
	g := depgraph.New()
	for _, id := range []string{"label.x", "button.x", "parent.x"} {
		_ = g.AddNode(depgraph.Node{ID: id})
	}
	_ = g.AddEdge(depgraph.Edge{From: "parent.x", To: "button.x"})
	_ = g.AddEdge(depgraph.Edge{From: "button.x", To: "label.x"})

	order, err := g.TopologicalSort()
	fmt.Println(order, err)
	// Output:
	// [parent.x button.x label.x] <nil>
}

func ExampleGraph_StronglyConnectedComponents() {
	// Two widgets anchored to each other form a cycle.
	g := depgraph.New()
	for _, id := range []string{"a.x", "b.x", "c.x"} {
		_ = g.AddNode(depgraph.Node{ID: id})
	}
	_ = g.AddEdge(depgraph.Edge{From: "a.x", To: "b.x"})
	_ = g.AddEdge(depgraph.Edge{From: "b.x", To: "a.x"})
	_ = g.AddEdge(depgraph.Edge{From: "b.x", To: "c.x"})

	fmt.Println(g.StronglyConnectedComponents())
	fmt.Println(g.HasCycle())
	// Output:
	// [[a.x b.x] [c.x]]
	// true
}
