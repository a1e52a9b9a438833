package solver

// priority is an objective coefficient split by strength level. Index i holds
// the weight contributed at [Strength] i; higher levels dominate lower ones.
type priority [softLevels]float64

// unitPriority returns the weight vector for one unit of error at s.
func unitPriority(s Strength) priority {
	var p priority
	if s >= 0 && int(s) < softLevels {
		p[s] = 1
	}
	return p
}

func (p priority) plus(q priority, k float64) priority {
	for i := range p {
		p[i] += q[i] * k
	}
	return p
}

// sign compares p against zero lexicographically from the strongest level
// down, returning -1, 0 or +1.
func (p priority) sign() int {
	for i := softLevels - 1; i >= 0; i-- {
		switch {
		case nearZero(p[i]):
			continue
		case p[i] < 0:
			return -1
		default:
			return 1
		}
	}
	return 0
}

func (p priority) isZero() bool {
	return p.sign() == 0
}

// goal is the objective row being minimized: constant + Σ cells[v]·v.
type goal struct {
	constant priority
	cells    map[*SolverVariable]priority
}

func newGoal() *goal {
	return &goal{cells: make(map[*SolverVariable]priority)}
}

// goalFromRow builds a single-level objective equal to row.
func goalFromRow(row *ArrayRow) *goal {
	g := newGoal()
	g.constant[0] = row.constant
	for v, k := range row.cells {
		var p priority
		p[0] = k
		g.cells[v] = p
	}
	return g
}

func (g *goal) insert(v *SolverVariable, p priority, k float64) {
	q := g.cells[v].plus(p, k)
	if q.isZero() {
		delete(g.cells, v)
		return
	}
	g.cells[v] = q
}

// substitute replaces v with the expression of row.
func (g *goal) substitute(v *SolverVariable, row *ArrayRow) {
	p, ok := g.cells[v]
	if !ok {
		return
	}
	delete(g.cells, v)
	g.constant = g.constant.plus(p, row.constant)
	for x, k := range row.cells {
		g.insert(x, p, k)
	}
}

func (g *goal) remove(v *SolverVariable) {
	delete(g.cells, v)
}
