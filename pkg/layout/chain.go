package layout

import (
	"fmt"

	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// chain is a run of widgets linked end to begin in both directions on one
// axis. The head carries the style and the bias of the chain.
type chain struct {
	id      string
	axis    Axis
	members []*Widget
	style   ChainStyle
	bias    float64
	node    *node
}

func (ch *chain) head() *Widget { return ch.members[0] }
func (ch *chain) tail() *Widget { return ch.members[len(ch.members)-1] }

func (ch *chain) beginConnected() bool {
	return ch.head().anchors[beginAnchor(ch.axis)].connected
}

func (ch *chain) endConnected() bool {
	return ch.tail().anchors[endAnchor(ch.axis)].connected
}

func (ch *chain) closed() bool { return ch.beginConnected() && ch.endConnected() }

// chainable reports whether w may be a chain member on axis a. Widgets
// filling the parent are positioned on their own, as is the vertical axis
// of a baseline-aligned widget. A row of baseline-aligned widgets still
// chains horizontally.
func chainable(w *Widget, a Axis) bool {
	return w.kind == KindPlain && w.behaviour[a] != MatchParent && !baselineLinked(w, a)
}

// linked reports whether the end of x and the begin of y target each other.
func linked(x, y *Widget, a Axis) bool {
	e, b := x.anchors[endAnchor(a)], y.anchors[beginAnchor(a)]
	return e.connected && b.connected &&
		e.target == AnchorRef{Widget: y.handle, Type: beginAnchor(a)} &&
		b.target == AnchorRef{Widget: x.handle, Type: endAnchor(a)}
}

func (p *pass) chainNext(x *Widget, a Axis) *Widget {
	e := x.anchors[endAnchor(a)]
	if !e.connected || e.target.Type != beginAnchor(a) {
		return nil
	}
	y := p.widget(e.target.Widget)
	if !chainable(y, a) || !linked(x, y, a) {
		return nil
	}
	return y
}

func (p *pass) chainPrev(y *Widget, a Axis) *Widget {
	b := y.anchors[beginAnchor(a)]
	if !b.connected || b.target.Type != endAnchor(a) {
		return nil
	}
	x := p.widget(b.target.Widget)
	if !chainable(x, a) || !linked(x, y, a) {
		return nil
	}
	return x
}

// findChains detects chains on both axes. A widget belongs to at most one
// chain per axis.
func (p *pass) findChains() {
	for _, a := range axes {
		for _, w := range p.c.widgets {
			if !chainable(w, a) || p.chainPrev(w, a) != nil || p.chainNext(w, a) == nil {
				continue
			}
			ch := &chain{
				id:    fmt.Sprintf("chain:%s:h%d", a.suffix(), w.handle),
				axis:  a,
				style: w.chainStyle[a],
				bias:  w.bias[a],
			}
			for m := w; m != nil && p.memberOf[m.handle][a] == nil; m = p.chainNext(m, a) {
				ch.members = append(ch.members, m)
				p.memberOf[m.handle][a] = ch
			}
			p.chains = append(p.chains, ch)
		}
	}
}

// memberSize classifies the size of a chain member. Spread members of a
// closed chain share the leftover space by weight; in an open chain they
// keep their intrinsic size.
func (p *pass) memberSize(ch *chain, m *Widget) (sizeKind, float64) {
	a := ch.axis
	if m.gone() {
		return sizeKnown, 0
	}
	if p.ratioDependent(m, a) {
		return sizeRatio, 0
	}
	if m.behaviour[a] != MatchConstraint {
		return sizeKnown, p.intrinsic(m, a)
	}
	switch m.match[a].style {
	case MatchWrap:
		return sizeKnown, p.intrinsic(m, a)
	case MatchPercent:
		return sizePercent, m.match[a].percent
	}
	if !ch.closed() {
		return sizeKnown, p.intrinsic(m, a)
	}
	if m.weight[a] == 0 {
		return sizeKnown, 0
	}
	return sizeFlexible, chainWeight(m, a)
}

func chainWeight(m *Widget, a Axis) float64 {
	if m.weight[a] == WeightUnset {
		return 1
	}
	return m.weight[a]
}

// directEligible reports whether every member size is known up front.
func (p *pass) chainDirectEligible(ch *chain) bool {
	for _, m := range ch.members {
		if k, _ := p.memberSize(ch, m); k != sizeKnown {
			return false
		}
	}
	return true
}

// chainShape is the arrangement of the visible members of a chain.
type chainShape struct {
	visible     []int     // member indexes of visible members
	prevVisible []int     // per member, the closest visible member before it or -1
	startMargin float64   // margin before the first visible member
	endMargin   float64   // margin after the last visible member
	inner       []float64 // inner[k] separates visible k and k+1
}

func (p *pass) chainShape(ch *chain) chainShape {
	a := ch.axis
	var s chainShape
	last := -1
	for i, m := range ch.members {
		s.prevVisible = append(s.prevVisible, last)
		if m.gone() {
			continue
		}
		if last >= 0 {
			prev := ch.members[last]
			s.inner = append(s.inner, p.margin(prev.anchors[endAnchor(a)])+p.margin(m.anchors[beginAnchor(a)]))
		}
		s.visible = append(s.visible, i)
		last = i
	}
	if len(s.visible) > 0 {
		first := ch.members[s.visible[0]]
		lastW := ch.members[s.visible[len(s.visible)-1]]
		s.startMargin = p.margin(first.anchors[beginAnchor(a)])
		s.endMargin = p.margin(lastW.anchors[endAnchor(a)])
	}
	return s
}

// resolveChain places every member of a chain whose sizes are all known.
func (p *pass) resolveChain(ch *chain) {
	a := ch.axis
	s := p.chainShape(ch)
	head, tail := ch.head(), ch.tail()
	bA, eA := head.anchors[beginAnchor(a)], tail.anchors[endAnchor(a)]
	set := func(i int, begin, end float64) {
		n := p.nodeOf(ch.members[i], a)
		n.begin, n.end = begin, end
	}

	if len(s.visible) == 0 {
		origin := float64(head.pos[a])
		switch {
		case bA.connected:
			origin = p.anchorValue(bA.target)
		case eA.connected:
			origin = p.anchorValue(eA.target)
		}
		for i := range ch.members {
			set(i, origin, origin)
		}
		return
	}

	sizes := make([]float64, len(s.visible))
	var total float64
	for k, i := range s.visible {
		_, sizes[k] = p.memberSize(ch, ch.members[i])
		total += sizes[k]
	}
	for _, m := range s.inner {
		total += m
	}

	n := len(s.visible)
	var first, extra float64
	switch {
	case ch.closed():
		lo := p.anchorValue(bA.target) + s.startMargin
		hi := p.anchorValue(eA.target) - s.endMargin
		avail := hi - lo - total
		switch {
		case ch.style == ChainSpread:
			extra = avail / float64(n+1)
			first = lo + extra
		case ch.style == ChainSpreadInside && n >= 2:
			extra = avail / float64(n-1)
			first = lo
		default:
			first = lo + ch.bias*avail
		}
	case bA.connected:
		first = p.anchorValue(bA.target) + s.startMargin
	case eA.connected:
		first = p.anchorValue(eA.target) - s.endMargin - total
	default:
		first = float64(head.pos[a])
	}

	pos := first
	for k, i := range s.visible {
		set(i, pos, pos+sizes[k])
		pos += sizes[k] + extra
		if k < len(s.inner) {
			pos += s.inner[k]
		}
	}
	firstBegin := p.nodeOf(ch.members[s.visible[0]], a).begin
	for i, m := range ch.members {
		if !m.gone() {
			continue
		}
		at := firstBegin - s.startMargin
		if pv := s.prevVisible[i]; pv >= 0 {
			at = p.nodeOf(ch.members[pv], a).end
		}
		set(i, at, at)
	}
}

// emitChain writes the constraints of a chain into a group system. The
// equations mirror resolveChain so both paths agree.
func (g *group) emitChain(ch *chain) {
	p := g.p
	a := ch.axis
	s := p.chainShape(ch)
	head, tail := ch.head(), ch.tail()
	bA, eA := head.anchors[beginAnchor(a)], tail.anchors[endAnchor(a)]

	vars := make([]nodeVars, len(ch.members))
	var flex []int
	for i, m := range ch.members {
		vars[i] = g.vars(p.nodeOf(m, a))
		k, v := p.memberSize(ch, m)
		g.emitSize(m, a, vars[i], k, v)
		if k == sizeFlexible {
			flex = append(flex, i)
		}
	}

	var tb, te lexpr
	if bA.connected {
		tb = g.anchorExpr(bA.target)
	}
	if eA.connected {
		te = g.anchorExpr(eA.target)
	}

	if len(s.visible) == 0 {
		origin := lconst(float64(head.pos[a]))
		switch {
		case bA.connected:
			origin = tb
		case eA.connected:
			origin = te
		}
		for i := range ch.members {
			g.eq(lvar(vars[i].begin), origin, solver.StrengthFixed)
		}
		return
	}

	first := vars[s.visible[0]]
	for i, m := range ch.members {
		if !m.gone() {
			continue
		}
		if pv := s.prevVisible[i]; pv >= 0 {
			g.eq(lvar(vars[i].begin), lvar(vars[pv].end), solver.StrengthFixed)
		} else {
			g.eq(lvar(vars[i].begin), lvar(first.begin).add(-s.startMargin), solver.StrengthFixed)
		}
	}

	n := len(s.visible)
	gap := func(k int) lexpr {
		switch {
		case k == 0:
			return lvar(first.begin).minus(tb).add(-s.startMargin)
		case k == n:
			return te.add(-s.endMargin).minus(lvar(vars[s.visible[n-1]].end))
		}
		cur, prev := vars[s.visible[k]], vars[s.visible[k-1]]
		return lvar(cur.begin).minus(lvar(prev.end)).add(-s.inner[k-1])
	}

	if !ch.closed() {
		for k := 1; k < n; k++ {
			g.eq(gap(k), lconst(0), solver.StrengthEquality)
		}
		switch {
		case bA.connected:
			g.eq(gap(0), lconst(0), solver.StrengthEquality)
		case eA.connected:
			g.eq(gap(n), lconst(0), solver.StrengthEquality)
		default:
			g.eq(lvar(first.begin), lconst(float64(head.pos[a])), solver.StrengthEquality)
		}
		return
	}

	const st = solver.StrengthCentering
	switch {
	case len(flex) > 0:
		for k := 0; k <= n; k++ {
			g.eq(gap(k), lconst(0), st)
		}
		// Weights rank below the edges so a member clamped by its bounds
		// gives up its share instead of opening a gap. Every pair is
		// related so the unclamped members still split by weight.
		for x, i := range flex {
			for _, j := range flex[x+1:] {
				ratio := chainWeight(ch.members[j], a) / chainWeight(ch.members[i], a)
				g.sys.AddProportion(vars[j].begin, vars[j].end, vars[i].begin, vars[i].end, ratio, solver.StrengthHighest)
			}
		}
	case ch.style == ChainSpread:
		for k := 0; k < n; k++ {
			g.eq(gap(k), gap(k+1), st)
		}
	case ch.style == ChainSpreadInside && n >= 2:
		g.eq(gap(0), lconst(0), st)
		g.eq(gap(n), lconst(0), st)
		for k := 1; k < n-1; k++ {
			g.eq(gap(k), gap(k+1), st)
		}
	default:
		for k := 1; k < n; k++ {
			g.eq(gap(k), lconst(0), st)
		}
		g.eq(gap(0).scale(1-ch.bias), gap(n).scale(ch.bias), st)
	}
}
