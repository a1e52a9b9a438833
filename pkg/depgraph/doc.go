// Package depgraph provides the directed dependency graph used by the layout
// optimizer.
//
// # Overview
//
// Each node stands for something that has to be resolved (a widget axis or a
// chain) and each edge points from a prerequisite to the node that depends on
// it. Unlike a DAG, the graph may contain cycles: anchor graphs are allowed to
// be circular and cycles are simply handed to the general solver. The
// algorithms here find them:
//
//   - [Graph.HasCycle] and [Graph.Validate]: depth-first white/gray/black search
//   - [Graph.StronglyConnectedComponents]: Tarjan's algorithm
//   - [Graph.TopologicalSort]: Kahn's algorithm, returning the partial order on a cycle
//   - [Graph.WeakComponents]: independent groups that can be solved separately
//   - [Graph.Descendants]: everything downstream of a set of nodes
//
// # Determinism
//
// Every query returns IDs in an order derived from node insertion order, so
// repeated runs over the same graph produce identical results.
//
// # Visualization
//
// [ToDOT] exports a graph in Graphviz DOT format and [RenderSVG] renders DOT
// to SVG with the embedded Graphviz build from go-graphviz.
//
// # Concurrency
//
// Graph is not safe for concurrent use. Independent graphs can be used from
// separate goroutines.
package depgraph
