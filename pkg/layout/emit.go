package layout

import (
	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// lterm is coef·v.
type lterm struct {
	v *solver.SolverVariable
	k float64
}

// lexpr is a linear expression Σ k·v + c over solver variables.
type lexpr struct {
	terms []lterm
	c     float64
}

func lvar(v *solver.SolverVariable) lexpr { return lexpr{terms: []lterm{{v: v, k: 1}}} }
func lconst(c float64) lexpr              { return lexpr{c: c} }

func (e lexpr) add(c float64) lexpr {
	return lexpr{terms: e.terms, c: e.c + c}
}

func (e lexpr) plus(f lexpr) lexpr {
	terms := make([]lterm, 0, len(e.terms)+len(f.terms))
	terms = append(terms, e.terms...)
	terms = append(terms, f.terms...)
	return lexpr{terms: terms, c: e.c + f.c}
}

func (e lexpr) scale(k float64) lexpr {
	terms := make([]lterm, len(e.terms))
	for i, t := range e.terms {
		terms[i] = lterm{v: t.v, k: t.k * k}
	}
	return lexpr{terms: terms, c: e.c * k}
}

func (e lexpr) minus(f lexpr) lexpr { return e.plus(f.scale(-1)) }

// appendTo writes the expression onto the current side of eq.
func (e lexpr) appendTo(eq *solver.LinearEquation) {
	for _, t := range e.terms {
		eq.VarTimes(solver.AmountFromFloat(t.k), t.v)
	}
	if e.c != 0 {
		eq.ConstAmount(solver.AmountFromFloat(e.c))
	}
}

// nodeVars are the solver variables of a widget axis. Guidelines and
// barriers use one variable for both.
type nodeVars struct {
	begin, end *solver.SolverVariable
}

// group is one linear system and the nodes it resolves.
type group struct {
	p   *pass
	sys *solver.LinearSystem
	nv  map[*node]nodeVars
}

func (p *pass) newGroup() *group {
	return &group{
		p:   p,
		sys: solver.NewLinearSystem(solver.WithMaxIterations(p.c.maxIterations)),
		nv:  make(map[*node]nodeVars),
	}
}

// vars returns the variables of n, creating them on first use. Nodes that
// are already resolved are pinned to their values.
func (g *group) vars(n *node) nodeVars {
	if v, ok := g.nv[n]; ok {
		return v
	}
	label := n.w.Name() + "." + n.axis.suffix()
	v := nodeVars{begin: g.sys.CreateVariable(label + ".begin")}
	if _, line := n.w.lineAxis(); line {
		v.end = v.begin
	} else {
		v.end = g.sys.CreateVariable(label + ".end")
	}
	g.nv[n] = v
	if n.resolved() {
		g.sys.AddEquality(v.begin, nil, n.begin, solver.StrengthFixed)
		if v.end != v.begin {
			g.sys.AddEquality(v.end, nil, n.end, solver.StrengthFixed)
		}
	}
	return v
}

func (g *group) relate(lhs lexpr, op solver.Operator, rhs lexpr, st solver.Strength) bool {
	eq := solver.NewEquation()
	lhs.appendTo(eq)
	switch op {
	case solver.OpLowerThan:
		eq.LowerThan()
	case solver.OpGreaterThan:
		eq.GreaterThan()
	default:
		eq.EqualsTo()
	}
	rhs.appendTo(eq)
	return g.sys.AddConstraint(eq, st)
}

func (g *group) eq(lhs, rhs lexpr, st solver.Strength) bool {
	return g.relate(lhs, solver.OpEquals, rhs, st)
}

func (g *group) ge(lhs, rhs lexpr, st solver.Strength) bool {
	return g.relate(lhs, solver.OpGreaterThan, rhs, st)
}

func (g *group) le(lhs, rhs lexpr, st solver.Strength) bool {
	return g.relate(lhs, solver.OpLowerThan, rhs, st)
}

// anchorExpr is the coordinate of a target anchor.
func (g *group) anchorExpr(ref AnchorRef) lexpr {
	t := g.p.widget(ref.Widget)
	v := g.vars(g.p.nodeOf(t, ref.Type.Axis()))
	switch ref.Type {
	case Right, Bottom:
		return lvar(v.end)
	case CenterX, CenterY:
		return lvar(v.begin).scale(0.5).plus(lvar(v.end).scale(0.5))
	case Baseline:
		return lvar(v.begin).add(g.p.baselineDistance(t))
	}
	return lvar(v.begin)
}

func sizeOf(v nodeVars) lexpr { return lvar(v.end).minus(lvar(v.begin)) }

// centering splits the space between lo and hi around [begin, end]:
// (begin - lo)·(1-bias) = (hi - end)·bias.
func (g *group) centering(v nodeVars, lo, hi lexpr, bias float64, st solver.Strength) {
	g.eq(lvar(v.begin).minus(lo).scale(1-bias), hi.minus(lvar(v.end)).scale(bias), st)
}

// emitSize constrains the size of a widget axis for the kinds that do not
// depend on its own anchors.
func (g *group) emitSize(w *Widget, a Axis, v nodeVars, kind sizeKind, val float64) {
	size := sizeOf(v)
	lo, hi := w.bounds(a)
	bounded := func() {
		g.ge(size, lconst(max(lo, 0)), solver.StrengthFixed)
		if hi < float64(unbounded) {
			g.le(size, lconst(hi), solver.StrengthFixed)
		}
	}
	switch kind {
	case sizeKnown:
		g.eq(size, lconst(val), solver.StrengthFixed)
	case sizePercent:
		root := g.vars(g.p.nodeOf(g.p.root(), a))
		g.eq(size, sizeOf(root).scale(val), solver.StrengthFixed)
	case sizeRatio:
		bounded()
		other := g.vars(g.p.nodeOf(w, a.other()))
		g.eq(size, sizeOf(other).scale(w.ratio.factor(a)), solver.StrengthFixed)
	case sizeSpread, sizeFlexible:
		bounded()
	}
}

// emit writes the constraints of one unresolved node.
func (g *group) emit(n *node) {
	switch {
	case n.isChain():
		g.emitChain(n.chain)
	case n.chain != nil:
		g.vars(n)
	case n.w.kind == KindGuideline:
		g.emitGuideline(n)
	case n.w.kind == KindBarrier:
		g.emitBarrier(n)
	case n.w.kind == KindPlain:
		g.emitWidget(n)
	}
}

func (g *group) emitGuideline(n *node) {
	p := g.p
	v := g.vars(n)
	root := g.vars(p.nodeOf(p.root(), n.axis))
	s := n.w.guide
	switch s.mode {
	case guideEnd:
		g.eq(lvar(v.begin), lvar(root.end).add(-float64(s.offset)), solver.StrengthFixed)
	case guidePercent:
		g.sys.AddProportion(root.begin, v.begin, root.begin, root.end, s.percent, solver.StrengthFixed)
	default:
		g.eq(lvar(v.begin), lvar(root.begin).add(float64(s.offset)), solver.StrengthFixed)
	}
}

// emitBarrier holds the barrier beyond every reference with hard
// inequalities and pulls it back onto them with weak equalities, which
// leaves it on the extremum.
func (g *group) emitBarrier(n *node) {
	p := g.p
	v := g.vars(n)
	spec := n.w.barrier
	refs := p.barrierRefs(n.w)
	if len(refs) == 0 {
		root := g.vars(p.nodeOf(p.root(), n.axis))
		g.eq(lvar(v.begin), lvar(root.begin), solver.StrengthFixed)
		return
	}
	m := float64(spec.margin)
	for _, r := range refs {
		target := g.anchorExpr(AnchorRef{Widget: r.handle, Type: spec.side})
		if spec.isMax() {
			g.ge(lvar(v.begin), target.add(m), solver.StrengthFixed)
			g.eq(lvar(v.begin), target.add(m), solver.StrengthLow)
		} else {
			g.le(lvar(v.begin), target.add(-m), solver.StrengthFixed)
			g.eq(lvar(v.begin), target.add(-m), solver.StrengthLow)
		}
	}
}

func (g *group) emitWidget(n *node) {
	p := g.p
	w, a := n.w, n.axis
	v := g.vars(n)
	kind, val := p.sizeMode(w, a)
	bA, eA := w.anchors[beginAnchor(a)], w.anchors[endAnchor(a)]
	m1, m2 := p.margin(bA), p.margin(eA)
	var lo, hi lexpr
	if bA.connected {
		lo = g.anchorExpr(bA.target).add(m1)
	}
	if eA.connected {
		hi = g.anchorExpr(eA.target).add(-m2)
	}
	bias := w.placementBias(a)

	switch kind {
	case sizeParent:
		root := g.vars(p.nodeOf(p.root(), a))
		g.eq(lvar(v.begin), lvar(root.begin).add(m1), solver.StrengthFixed)
		g.eq(lvar(v.end), lvar(root.end).add(-m2), solver.StrengthFixed)
		return
	case sizeSpread:
		g.emitSize(w, a, v, kind, val)
		g.eq(lvar(v.begin), lo, solver.StrengthEquality)
		g.eq(lvar(v.end), hi, solver.StrengthEquality)
		g.centering(v, lo, hi, bias, solver.StrengthCentering)
		return
	case sizeMatchWrap:
		size := sizeOf(v)
		minSize, _ := w.bounds(a)
		g.ge(size, lconst(max(minSize, 0)), solver.StrengthFixed)
		g.le(size, lconst(val), solver.StrengthFixed)
		g.eq(size, lconst(val), solver.StrengthMedium)
		g.ge(lvar(v.begin), lo, solver.StrengthEquality)
		g.le(lvar(v.end), hi, solver.StrengthEquality)
		g.centering(v, lo, hi, bias, solver.StrengthCentering)
		return
	}

	g.emitSize(w, a, v, kind, val)
	switch {
	case baselineLinked(w, a):
		bl := w.anchors[Baseline]
		g.eq(lvar(v.begin), g.anchorExpr(bl.target).add(p.margin(bl)-p.baselineDistance(w)), solver.StrengthEquality)
	case bA.connected && eA.connected:
		g.centering(v, lo, hi, bias, solver.StrengthCentering)
	case bA.connected:
		g.eq(lvar(v.begin), lo, solver.StrengthEquality)
	case eA.connected:
		g.eq(lvar(v.end), hi, solver.StrengthEquality)
	default:
		g.eq(lvar(v.begin), lconst(float64(w.pos[a])), solver.StrengthEquality)
	}
}
