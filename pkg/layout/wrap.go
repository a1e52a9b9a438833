package layout

import (
	"math"

	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// The extent pass computes the smallest container span on one axis that
// fits the children at their intrinsic sizes. Every child size is a
// constant here: match constraints, percents and parent matches count as
// wrap content, and ratios are applied to those wrap sizes. Positions are
// the only unknowns, so the constraints are linear in one variable per
// widget plus the container end.

const (
	originVar = 0 // the container start, always 0
	extentVar = 1 // the container end
)

// wterm is k·x[v].
type wterm struct {
	v int
	k float64
}

// wexpr is Σ k·x[v] + c.
type wexpr struct {
	terms []wterm
	c     float64
}

func wv(v int) wexpr     { return wexpr{terms: []wterm{{v: v, k: 1}}} }
func wc(c float64) wexpr { return wexpr{c: c} }
func (e wexpr) add(c float64) wexpr {
	return wexpr{terms: e.terms, c: e.c + c}
}

// wcons is Σ k·x + c >= 0, or == 0 when eq is set.
type wcons struct {
	terms []wterm
	c     float64
	eq    bool
}

type extentModel struct {
	names []string
	cons  []wcons
	begin map[Handle]int
}

func (m *extentModel) newVar(name string) int {
	m.names = append(m.names, name)
	return len(m.names) - 1
}

// relate records lhs >= rhs, or lhs == rhs when eq is set.
func (m *extentModel) relate(lhs, rhs wexpr, eq bool) {
	sum := map[int]float64{}
	var order []int
	add := func(e wexpr, sign float64) {
		for _, t := range e.terms {
			if _, ok := sum[t.v]; !ok {
				order = append(order, t.v)
			}
			sum[t.v] += sign * t.k
		}
	}
	add(lhs, 1)
	add(rhs, -1)
	c := wcons{c: lhs.c - rhs.c, eq: eq}
	for _, v := range order {
		if k := sum[v]; math.Abs(k) > 1e-12 {
			c.terms = append(c.terms, wterm{v: v, k: k})
		}
	}
	m.cons = append(m.cons, c)
}

func (m *extentModel) ge(lhs, rhs wexpr) { m.relate(lhs, rhs, false) }
func (m *extentModel) le(lhs, rhs wexpr) { m.relate(rhs, lhs, false) }
func (m *extentModel) eq(lhs, rhs wexpr) { m.relate(lhs, rhs, true) }

// extentSize is the size of a widget axis during the extent pass.
func (p *pass) extentSize(w *Widget, a Axis) float64 {
	if w.gone() || w.kind != KindPlain {
		return 0
	}
	if p.ratioDependent(w, a) {
		lo, hi := w.bounds(a)
		return min(max(w.ratio.fromOther(a, p.extentSize(w, a.other())), lo), hi)
	}
	if w.behaviour[a] == Fixed {
		return float64(w.size[a])
	}
	return p.intrinsic(w, a)
}

// extent returns the minimal container span on axis a.
func (p *pass) extent(a Axis) float64 {
	m := p.extentModel(a)
	if p.level.Has(OptimizeGraphWrap) {
		if e, ok := m.longestPath(); ok {
			return e
		}
		p.c.logger.Debug("wrap content falls back to the solver", "container", p.c.Name(), "axis", a)
	}
	return p.solveExtent(m)
}

func (p *pass) extentModel(a Axis) *extentModel {
	m := &extentModel{begin: make(map[Handle]int)}
	m.newVar("origin")
	m.newVar("extent")
	for _, w := range p.c.widgets[1:] {
		if hasNode(w, a) {
			m.begin[w.handle] = m.newVar(w.Name() + "." + a.suffix())
		}
	}

	anchor := func(ref AnchorRef) wexpr {
		t := p.widget(ref.Widget)
		if t.kind == KindContainer {
			switch ref.Type {
			case Right, Bottom:
				return wv(extentVar)
			case CenterX, CenterY:
				return wexpr{terms: []wterm{{v: extentVar, k: 0.5}}}
			}
			return wc(0)
		}
		b := wv(m.begin[t.handle])
		s := p.extentSize(t, a)
		switch ref.Type {
		case Right, Bottom:
			return b.add(s)
		case CenterX, CenterY:
			return b.add(s / 2)
		case Baseline:
			return b.add(p.baselineDistance(t))
		}
		return b
	}
	inside := func(w *Widget, b int, s float64) {
		if w.gone() {
			return
		}
		m.ge(wv(b), wc(0))
		m.le(wv(b).add(s), wv(extentVar))
	}

	for _, w := range p.c.widgets[1:] {
		b, ok := m.begin[w.handle]
		if !ok || p.memberOf[w.handle][a] != nil {
			continue
		}
		switch w.kind {
		case KindGuideline:
			gs := w.guide
			switch gs.mode {
			case guideEnd:
				m.eq(wv(b), wv(extentVar).add(-float64(gs.offset)))
			case guidePercent:
				m.eq(wv(b), wexpr{terms: []wterm{{v: extentVar, k: gs.percent}}})
			default:
				m.eq(wv(b), wc(float64(gs.offset)))
			}
			continue
		case KindBarrier:
			refs := p.barrierRefs(w)
			if len(refs) == 0 {
				m.eq(wv(b), wc(0))
			}
			mg := float64(w.barrier.margin)
			for _, r := range refs {
				t := anchor(AnchorRef{Widget: r.handle, Type: w.barrier.side})
				if w.barrier.isMax() {
					m.ge(wv(b), t.add(mg))
				} else {
					m.le(wv(b), t.add(-mg))
				}
			}
			continue
		}

		s := p.extentSize(w, a)
		bA, eA := w.anchors[beginAnchor(a)], w.anchors[endAnchor(a)]
		m1, m2 := p.margin(bA), p.margin(eA)
		switch {
		case baselineLinked(w, a):
			bl := w.anchors[Baseline]
			m.eq(wv(b), anchor(bl.target).add(p.margin(bl)-p.baselineDistance(w)))
		case w.behaviour[a] == MatchParent && !w.gone():
			m.ge(wv(b), wc(m1))
			m.le(wv(b).add(s), wv(extentVar).add(-m2))
		case bA.connected && eA.connected:
			m.ge(wv(b), anchor(bA.target).add(m1))
			m.le(wv(b).add(s), anchor(eA.target).add(-m2))
		case bA.connected:
			m.eq(wv(b), anchor(bA.target).add(m1))
		case eA.connected:
			m.eq(wv(b).add(s), anchor(eA.target).add(-m2))
		default:
			m.eq(wv(b), wc(float64(w.pos[a])))
		}
		inside(w, b, s)
	}

	for _, ch := range p.chains {
		if ch.axis != a {
			continue
		}
		p.extentChain(m, ch, anchor, inside)
	}
	m.ge(wv(extentVar), wc(0))
	return m
}

func (p *pass) extentChain(m *extentModel, ch *chain, anchor func(AnchorRef) wexpr, inside func(*Widget, int, float64)) {
	a := ch.axis
	s := p.chainShape(ch)
	head, tail := ch.head(), ch.tail()
	bA, eA := head.anchors[beginAnchor(a)], tail.anchors[endAnchor(a)]
	begin := func(i int) int { return m.begin[ch.members[i].handle] }
	size := func(i int) float64 { return p.extentSize(ch.members[i], a) }

	if len(s.visible) == 0 {
		origin := wc(float64(head.pos[a]))
		switch {
		case bA.connected:
			origin = anchor(bA.target)
		case eA.connected:
			origin = anchor(eA.target)
		}
		for i := range ch.members {
			m.eq(wv(begin(i)), origin)
		}
		return
	}

	first, last := s.visible[0], s.visible[len(s.visible)-1]
	for i, w := range ch.members {
		if !w.gone() {
			inside(w, begin(i), size(i))
			continue
		}
		if pv := s.prevVisible[i]; pv >= 0 {
			m.eq(wv(begin(i)), wv(begin(pv)).add(size(pv)))
		} else {
			m.eq(wv(begin(i)), wv(begin(first)).add(-s.startMargin))
		}
	}

	closed := ch.closed()
	for k := 1; k < len(s.visible); k++ {
		cur, prev := s.visible[k], s.visible[k-1]
		next := wv(begin(prev)).add(size(prev) + s.inner[k-1])
		if closed {
			m.ge(wv(begin(cur)), next)
		} else {
			m.eq(wv(begin(cur)), next)
		}
	}
	switch {
	case closed:
		m.ge(wv(begin(first)), anchor(bA.target).add(s.startMargin))
		m.le(wv(begin(last)).add(size(last)), anchor(eA.target).add(-s.endMargin))
	case bA.connected:
		m.eq(wv(begin(first)), anchor(bA.target).add(s.startMargin))
	case eA.connected:
		m.eq(wv(begin(last)).add(size(last)), anchor(eA.target).add(-s.endMargin))
	default:
		m.eq(wv(begin(first)), wc(float64(head.pos[a])))
	}
}

// solveExtent minimizes the container end with every other constraint
// hard.
func (p *pass) solveExtent(m *extentModel) float64 {
	g := p.newGroup()
	vars := make([]*solver.SolverVariable, len(m.names))
	for i, n := range m.names {
		vars[i] = g.sys.CreateVariable(n)
	}
	g.sys.AddEquality(vars[originVar], nil, 0, solver.StrengthFixed)
	for _, c := range m.cons {
		e := lconst(c.c)
		for _, t := range c.terms {
			e = e.plus(lvar(vars[t.v]).scale(t.k))
		}
		if c.eq {
			g.eq(e, lconst(0), solver.StrengthFixed)
		} else {
			g.ge(e, lconst(0), solver.StrengthFixed)
		}
	}
	g.sys.AddEquality(vars[extentVar], nil, 0, solver.StrengthNone)
	res := g.sys.Minimize()
	p.c.stats.Systems++
	p.c.stats.Iterations += res.Iterations
	p.c.stats.Dropped += res.Dropped
	p.c.stats.Capped = p.c.stats.Capped || res.Capped
	return max(vars[extentVar].Value, 0)
}

// diffEdge encodes x[to] >= x[from] + w.
type diffEdge struct {
	from, to int
	w        float64
}

// longestPath solves the model as difference constraints: the least
// solution is the longest path from the origin. It reports false when a
// constraint is not a difference of two variables or the constraints are
// infeasible.
func (m *extentModel) longestPath() (float64, bool) {
	var edges []diffEdge
	addGE := func(terms []wterm, c float64) bool {
		switch len(terms) {
		case 0:
			return c >= -pixelEpsilon
		case 1:
			t := terms[0]
			switch t.k {
			case 1: // x + c >= 0
				edges = append(edges, diffEdge{from: originVar, to: t.v, w: -c})
			case -1: // origin >= x - c
				edges = append(edges, diffEdge{from: t.v, to: originVar, w: -c})
			default:
				return false
			}
		case 2:
			x, y := terms[0], terms[1]
			if x.k == -1 && y.k == 1 {
				x, y = y, x
			}
			if x.k != 1 || y.k != -1 {
				return false
			}
			// x - y + c >= 0
			edges = append(edges, diffEdge{from: y.v, to: x.v, w: -c})
		default:
			return false
		}
		return true
	}
	negate := func(terms []wterm) []wterm {
		out := make([]wterm, len(terms))
		for i, t := range terms {
			out[i] = wterm{v: t.v, k: -t.k}
		}
		return out
	}
	for _, c := range m.cons {
		if !addGE(c.terms, c.c) {
			return 0, false
		}
		if c.eq && !addGE(negate(c.terms), -c.c) {
			return 0, false
		}
	}

	n := len(m.names)
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(-1)
	}
	dist[originVar] = 0
	for round := 0; round <= n; round++ {
		changed := false
		for _, e := range edges {
			if math.IsInf(dist[e.from], -1) {
				continue
			}
			if d := dist[e.from] + e.w; d > dist[e.to]+pixelEpsilon {
				if e.to == originVar || round == n {
					return 0, false
				}
				dist[e.to] = d
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return max(dist[extentVar], 0), true
}
