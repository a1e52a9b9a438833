package layout

import (
	"fmt"

	"github.com/matzehuels/anchorlayout/pkg/depgraph"
)

// Strategy records how a widget axis was resolved in the last pass.
type Strategy int

const (
	Unresolved Strategy = iota
	Direct
	Solved
)

func (s Strategy) String() string {
	switch s {
	case Direct:
		return "direct"
	case Solved:
		return "solved"
	}
	return "unresolved"
}

// node is one vertex of the dependency graph: a widget axis or a chain.
type node struct {
	id       string
	w        *Widget // nil for chain nodes
	axis     Axis
	chain    *chain // the chain for chain nodes and chain members
	strategy Strategy
	begin    float64
	end      float64
}

func (n *node) isChain() bool  { return n.w == nil }
func (n *node) resolved() bool { return n.strategy != Unresolved }

// pass holds the transient state of one resolution. Nothing in a pass
// outlives the Layout call except the dependency graph.
type pass struct {
	c     *Container
	level OptimizationLevel
	span  [2]float64

	meas     []Measurement
	axisNode [][2]*node // by handle; nil where a widget has no node on an axis
	nodes    []*node    // graph insertion order
	byID     map[string]*node
	chains   []*chain
	memberOf [][2]*chain // by handle
	ratioOff []bool      // by handle; ratio broken by a dependency cycle
	graph    *depgraph.Graph
	cyclic   map[string]bool
}

func newPass(c *Container) *pass {
	n := len(c.widgets)
	p := &pass{
		c:        c,
		level:    c.level,
		meas:     make([]Measurement, n),
		memberOf: make([][2]*chain, n),
		ratioOff: make([]bool, n),
	}
	for _, w := range c.widgets {
		p.meas[w.handle] = c.measure(w)
	}
	p.findChains()
	p.buildGraph()
	return p
}

func (p *pass) widget(h Handle) *Widget { return p.c.widgets[h] }

func (p *pass) root() *Widget { return p.c.widgets[rootHandle] }

// nodeOf returns the node positioning w on axis a.
func (p *pass) nodeOf(w *Widget, a Axis) *node { return p.axisNode[w.handle][a] }

// hasNode reports whether a widget is positioned on axis a. Guidelines and
// barriers only exist on their line axis.
func hasNode(w *Widget, a Axis) bool {
	if ax, ok := w.lineAxis(); ok {
		return ax == a
	}
	return true
}

// margin returns the effective margin of a connected anchor.
func (p *pass) margin(an Anchor) float64 {
	if !an.connected {
		return 0
	}
	if p.widget(an.owner).gone() {
		return 0
	}
	if gm, ok := an.GoneMargin(); ok && p.widget(an.target.Widget).gone() {
		return float64(gm)
	}
	return float64(an.margin)
}

// baselineDistance prefers the measured baseline.
func (p *pass) baselineDistance(w *Widget) float64 {
	if b := p.meas[w.handle].Baseline; b > 0 {
		return float64(b)
	}
	return float64(w.baselineDistance)
}

// intrinsic is the measured size of an axis clamped to its bounds.
func (p *pass) intrinsic(w *Widget, a Axis) float64 {
	if w.gone() {
		return 0
	}
	if w.behaviour[a] == Fixed {
		return float64(w.size[a])
	}
	m := p.meas[w.handle]
	v := float64(m.Width)
	if a == Vertical {
		v = float64(m.Height)
	}
	lo, hi := w.bounds(a)
	return min(max(v, lo), hi)
}

// ratioAxis is the widget's ratio axis unless a cycle disabled the ratio.
func (p *pass) ratioAxis(w *Widget) (Axis, bool) {
	if p.ratioOff[w.handle] {
		return Horizontal, false
	}
	return w.ratioAxis()
}

func (p *pass) ratioDependent(w *Widget, a Axis) bool {
	ra, ok := p.ratioAxis(w)
	return ok && ra == a && !w.gone()
}

// baselineLinked reports whether the vertical axis of w is positioned
// through its baseline.
func baselineLinked(w *Widget, a Axis) bool {
	return a == Vertical && w.anchors[Baseline].connected
}

func twoSided(w *Widget, a Axis) bool {
	return w.anchors[beginAnchor(a)].connected && w.anchors[endAnchor(a)].connected && !baselineLinked(w, a)
}

// sizeKind classifies how the size of a widget axis is obtained.
type sizeKind int

const (
	sizeKnown     sizeKind = iota // fixed, measured or collapsed
	sizePercent                   // fraction of the container span
	sizeRatio                     // derived from the other axis
	sizeSpread                    // span between the anchors, clamped
	sizeMatchWrap                 // intrinsic, at most the span
	sizeParent                    // container edges minus margins
	sizeFlexible                  // weighted share of a chain
)

// sizeMode resolves the size kind of a widget axis outside of chains. The
// value is the size for sizeKnown, the fraction for sizePercent and the
// intrinsic size otherwise.
func (p *pass) sizeMode(w *Widget, a Axis) (sizeKind, float64) {
	if w.gone() {
		return sizeKnown, 0
	}
	if p.ratioDependent(w, a) {
		return sizeRatio, 0
	}
	switch w.behaviour[a] {
	case Fixed, WrapContent:
		return sizeKnown, p.intrinsic(w, a)
	case MatchParent:
		return sizeParent, 0
	}
	if !twoSided(w, a) {
		return sizeKnown, p.intrinsic(w, a)
	}
	switch w.match[a].style {
	case MatchWrap:
		return sizeMatchWrap, p.intrinsic(w, a)
	case MatchPercent:
		return sizePercent, w.match[a].percent
	}
	return sizeSpread, p.intrinsic(w, a)
}

func (p *pass) nodeID(w *Widget, a Axis) string {
	return fmt.Sprintf("h%d.%s", w.handle, a.suffix())
}

// ratioEdge remembers a graph edge created by a dimension ratio, so that a
// ratio caught in a cycle can be disabled.
type ratioEdge struct {
	from, to string
	owner    Handle
}

// buildGraph creates the dependency graph. Ratio couplings that end up
// inside a strongly connected component are disabled and the graph is
// rebuilt, so the dependent axis falls back to its intrinsic size.
func (p *pass) buildGraph() {
	for {
		ratios := p.buildGraphOnce()
		sccOf := make(map[string]int)
		for i, comp := range p.graph.StronglyConnectedComponents() {
			for _, id := range comp {
				sccOf[id] = i
			}
		}
		broke := false
		for _, re := range ratios {
			if sccOf[re.from] == sccOf[re.to] {
				p.ratioOff[re.owner] = true
				broke = true
				p.c.logger.Debug("ratio in dependency cycle, using intrinsic size",
					"container", p.c.Name(), "widget", p.widget(re.owner).Name())
			}
		}
		if !broke {
			break
		}
	}
	p.cyclic = p.graph.CyclicNodes()
}

func (p *pass) buildGraphOnce() []ratioEdge {
	g := depgraph.New()
	p.graph = g
	p.nodes = p.nodes[:0]
	p.byID = make(map[string]*node)
	p.axisNode = make([][2]*node, len(p.c.widgets))

	addNode := func(n *node, label string, meta depgraph.Metadata) {
		if err := g.AddNode(depgraph.Node{ID: n.id, Label: label, Meta: meta}); err != nil {
			p.c.logger.Debug("dependency graph node", "container", p.c.Name(), "node", n.id, "err", err)
		}
		p.nodes = append(p.nodes, n)
		p.byID[n.id] = n
	}
	for _, w := range p.c.widgets {
		for _, a := range axes {
			if !hasNode(w, a) {
				continue
			}
			n := &node{id: p.nodeID(w, a), w: w, axis: a, chain: p.memberOf[w.handle][a]}
			p.axisNode[w.handle][a] = n
			addNode(n, w.Name()+"."+a.suffix(), depgraph.Metadata{"kind": w.kind.String(), "axis": a.String()})
		}
	}
	for _, ch := range p.chains {
		ch.node = &node{id: ch.id, axis: ch.axis, chain: ch}
		addNode(ch.node, fmt.Sprintf("chain(%s).%s", ch.head().Name(), ch.axis.suffix()),
			depgraph.Metadata{"kind": "chain", "axis": ch.axis.String(), "style": ch.style.String()})
	}

	var ratios []ratioEdge
	edge := func(from, to *node, kind string) {
		if from == nil || to == nil {
			return
		}
		if err := g.AddEdge(depgraph.Edge{From: from.id, To: to.id, Kind: kind}); err != nil {
			p.c.logger.Debug("dependency graph edge", "container", p.c.Name(), "from", from.id, "to", to.id, "err", err)
		}
	}
	anchorEdge := func(an Anchor, to *node) {
		if !an.connected {
			return
		}
		t := p.widget(an.target.Widget)
		edge(p.nodeOf(t, an.target.Type.Axis()), to, "anchor")
	}
	ratioDep := func(w *Widget, a Axis, to *node) {
		if p.ratioDependent(w, a) {
			from := p.nodeOf(w, a.other())
			edge(from, to, "ratio")
			ratios = append(ratios, ratioEdge{from: from.id, to: to.id, owner: w.handle})
		}
	}

	for _, n := range p.nodes {
		if n.isChain() {
			continue
		}
		w, a := n.w, n.axis
		rootNode := p.nodeOf(p.root(), a)
		switch w.kind {
		case KindContainer:
			continue
		case KindGuideline:
			edge(rootNode, n, "container")
			continue
		case KindBarrier:
			if len(w.barrier.refs) == 0 {
				edge(rootNode, n, "container")
			}
			for _, h := range w.barrier.refs {
				edge(p.nodeOf(p.widget(h), a), n, "barrier")
			}
			continue
		}
		if n.chain != nil {
			edge(n.chain.node, n, "chain")
			continue
		}
		if baselineLinked(w, a) {
			anchorEdge(w.anchors[Baseline], n)
		}
		anchorEdge(w.anchors[beginAnchor(a)], n)
		anchorEdge(w.anchors[endAnchor(a)], n)
		if k, _ := p.sizeMode(w, a); k == sizePercent || k == sizeParent {
			edge(rootNode, n, "container")
		}
		ratioDep(w, a, n)
	}

	for _, ch := range p.chains {
		a := ch.axis
		anchorEdge(ch.head().anchors[beginAnchor(a)], ch.node)
		anchorEdge(ch.tail().anchors[endAnchor(a)], ch.node)
		for _, m := range ch.members {
			if k, _ := p.memberSize(ch, m); k == sizePercent {
				edge(p.nodeOf(p.root(), a), ch.node, "container")
			}
			ratioDep(m, a, ch.node)
		}
	}
	return ratios
}
