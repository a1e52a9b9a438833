package layout

// resolve positions every node: the root first, then everything the
// optimization level allows in dependency order, then the rest with the
// solver.
func (p *pass) resolve() {
	for _, a := range axes {
		rn := p.nodeOf(p.root(), a)
		rn.begin, rn.end, rn.strategy = 0, p.span[a], Direct
	}
	if p.level.Has(OptimizeDirect) {
		p.resolveDirect()
	}
	p.solveResidual()

	for _, n := range p.nodes {
		if n.isChain() || n.w.kind == KindContainer {
			continue
		}
		switch n.strategy {
		case Direct:
			p.c.stats.Direct++
		case Solved:
			p.c.stats.Solved++
		}
	}
	for _, n := range p.nodes {
		if gn, ok := p.graph.Node(n.id); ok {
			gn.Meta["strategy"] = n.strategy.String()
		}
	}
}

// eligible reports whether the optimization level allows resolving n
// without the solver.
func (p *pass) eligible(n *node) bool {
	switch {
	case n.isChain():
		return p.level.Has(OptimizeChain) && p.chainDirectEligible(n.chain)
	case n.chain != nil:
		return true
	}
	switch n.w.kind {
	case KindContainer, KindGuideline:
		return true
	case KindBarrier:
		return p.level.Has(OptimizeBarrier)
	}
	switch kind, _ := p.sizeMode(n.w, n.axis); kind {
	case sizeKnown, sizeParent:
		return true
	case sizeSpread, sizeMatchWrap:
		// A ratio feeds the bounds of the derived axis back into this one.
		if _, coupled := p.ratioAxis(n.w); coupled {
			return false
		}
		return p.level.Has(OptimizeDimensions)
	}
	return false
}

// ready reports whether n can be resolved now: it is eligible, outside
// every cycle and all of its dependencies are resolved.
func (p *pass) ready(n *node) bool {
	if n.resolved() || p.cyclic[n.id] || !p.eligible(n) {
		return false
	}
	for _, id := range p.graph.Parents(n.id) {
		if !p.byID[id].resolved() {
			return false
		}
	}
	return true
}

// resolveDirect walks the topological order with [OptimizeGraph] and
// sweeps the node list until nothing changes otherwise. Both visit the
// same set of ready nodes.
func (p *pass) resolveDirect() {
	if p.level.Has(OptimizeGraph) {
		order, _ := p.graph.TopologicalSort()
		for _, id := range order {
			if n := p.byID[id]; p.ready(n) {
				p.resolveNode(n)
			}
		}
		return
	}
	for changed := true; changed; {
		changed = false
		for _, n := range p.nodes {
			if p.ready(n) {
				p.resolveNode(n)
				changed = true
			}
		}
	}
}

func (p *pass) resolveNode(n *node) {
	switch {
	case n.isChain():
		p.resolveChain(n.chain)
	case n.chain != nil:
		// placed by its chain
	case n.w.kind == KindGuideline:
		n.begin = n.w.guide.position(p.span[n.axis])
		n.end = n.begin
	case n.w.kind == KindBarrier:
		n.begin = p.barrierPosition(n.w)
		n.end = n.begin
	default:
		p.resolveWidget(n)
	}
	n.strategy = Direct
}

// anchorValue is the resolved coordinate of a target anchor.
func (p *pass) anchorValue(ref AnchorRef) float64 {
	t := p.widget(ref.Widget)
	n := p.nodeOf(t, ref.Type.Axis())
	switch ref.Type {
	case Right, Bottom:
		return n.end
	case CenterX, CenterY:
		return (n.begin + n.end) / 2
	case Baseline:
		return n.begin + p.baselineDistance(t)
	}
	return n.begin
}

// barrierRefs returns the references that take part in the extremum.
func (p *pass) barrierRefs(b *Widget) []*Widget {
	var out []*Widget
	for _, h := range b.barrier.refs {
		w := p.widget(h)
		if w.gone() && !b.barrier.allowsGone {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (p *pass) barrierPosition(b *Widget) float64 {
	refs := p.barrierRefs(b)
	if len(refs) == 0 {
		return 0
	}
	spec := b.barrier
	var pos float64
	for i, r := range refs {
		v := p.anchorValue(AnchorRef{Widget: r.handle, Type: spec.side})
		if i == 0 || spec.isMax() && v > pos || !spec.isMax() && v < pos {
			pos = v
		}
	}
	if spec.isMax() {
		return pos + float64(spec.margin)
	}
	return pos - float64(spec.margin)
}

// resolveWidget computes the same position the solver reaches for a
// widget axis with a known or anchor-derived size.
func (p *pass) resolveWidget(n *node) {
	w, a := n.w, n.axis
	kind, val := p.sizeMode(w, a)
	bA, eA := w.anchors[beginAnchor(a)], w.anchors[endAnchor(a)]
	var lo, hi float64
	if bA.connected {
		lo = p.anchorValue(bA.target) + p.margin(bA)
	}
	if eA.connected {
		hi = p.anchorValue(eA.target) - p.margin(eA)
	}
	bias := w.placementBias(a)

	var begin, size float64
	switch kind {
	case sizeParent:
		root := p.nodeOf(p.root(), a)
		n.begin = root.begin + p.margin(bA)
		n.end = root.end - p.margin(eA)
		return
	case sizeSpread, sizeMatchWrap:
		span := hi - lo
		minSize, maxSize := w.bounds(a)
		if kind == sizeSpread {
			size = max(max(minSize, 0), min(span, maxSize))
		} else {
			size = max(max(minSize, 0), min(val, span))
		}
		begin = lo + bias*(span-size)
	default:
		size = val
		switch {
		case baselineLinked(w, a):
			bl := w.anchors[Baseline]
			begin = p.anchorValue(bl.target) + p.margin(bl) - p.baselineDistance(w)
		case bA.connected && eA.connected:
			begin = lo + bias*(hi-lo-size)
		case bA.connected:
			begin = lo
		case eA.connected:
			begin = hi - size
		default:
			begin = float64(w.pos[a])
		}
	}
	n.begin, n.end = begin, begin+size
}

// solveResidual builds linear systems for the nodes direct resolution
// left behind. With [OptimizeGrouping] every weakly connected component
// gets its own system.
func (p *pass) solveResidual() {
	var pending []string
	for _, n := range p.nodes {
		if !n.resolved() {
			pending = append(pending, n.id)
		}
	}
	if len(pending) == 0 {
		return
	}
	groups := [][]string{pending}
	if p.level.Has(OptimizeGrouping) {
		groups = p.graph.Subgraph(pending).WeakComponents()
	}
	for _, ids := range groups {
		p.solveGroup(ids)
	}
}

func (p *pass) solveGroup(ids []string) {
	g := p.newGroup()
	for _, id := range ids {
		g.emit(p.byID[id])
	}
	res := g.sys.Minimize()
	for _, id := range ids {
		n := p.byID[id]
		if v, ok := g.nv[n]; ok {
			n.begin, n.end = v.begin.Value, v.end.Value
		}
		n.strategy = Solved
	}

	st := g.sys.Stats()
	s := &p.c.stats
	s.Systems++
	s.Iterations += res.Iterations
	s.Dropped += res.Dropped
	s.Capped = s.Capped || res.Capped
	p.c.hooks().OnSolve(p.c.Name(), st.Rows, res.Iterations, res.Dropped, res.Capped)
	p.c.logger.Debug("solved group",
		"container", p.c.Name(),
		"nodes", len(ids),
		"rows", st.Rows,
		"variables", st.Variables,
		"iterations", res.Iterations,
		"state", res.State,
	)
}
