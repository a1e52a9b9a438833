package solver

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultMaxIterations caps the number of pivots a single system performs.
const DefaultMaxIterations = 10000

// State is the lifecycle state of a [LinearSystem].
type State int

const (
	// StateBuilding accepts constraints.
	StateBuilding State = iota
	// StateMinimizing is running Phase 2.
	StateMinimizing
	// StateSolved holds an assignment that satisfies every hard constraint.
	StateSolved
	// StateInfeasible holds a best-effort assignment; at least one hard
	// constraint was dropped.
	StateInfeasible
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateMinimizing:
		return "minimizing"
	case StateSolved:
		return "solved"
	case StateInfeasible:
		return "infeasible"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Option configures a [LinearSystem].
type Option func(*LinearSystem)

// WithMaxIterations overrides [DefaultMaxIterations]. The cap applies to
// Phase 2 as a whole and separately to each Phase 1 run. Values <= 0 are
// ignored.
func WithMaxIterations(n int) Option {
	return func(s *LinearSystem) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// Result summarizes a call to [LinearSystem.Minimize].
type Result struct {
	State      State
	Iterations int  // pivots performed since the system was created
	Capped     bool // the iteration cap stopped Phase 2 early
	Dropped    int  // hard constraints dropped as infeasible
}

// Stats describes the size of a system and the work it performed.
type Stats struct {
	Rows           int
	Variables      int
	Constraints    int
	Iterations     int
	ArtificialRuns int
	Dropped        int
	Capped         bool
}

// LinearSystem is an incremental two-phase simplex over [SolverVariable]s.
//
// Constraints are added one at a time with [LinearSystem.AddConstraint]. The
// tableau is kept feasible after every addition: a new row picks an
// unrestricted subject or one of its own fresh slack/error variables, and
// otherwise runs Phase 1 with an artificial variable. [LinearSystem.Minimize]
// then runs Phase 2 on the strength-weighted error objective.
//
// Pivot selection follows Bland's rule: the entering variable is the lowest
// ID with an improving objective coefficient, and ratio ties on the leaving
// row break towards the lowest basic ID.
//
// A LinearSystem is not safe for concurrent use. Independent systems share
// nothing and may be solved in parallel.
type LinearSystem struct {
	names     namer
	variables []*SolverVariable
	rows      map[*SolverVariable]*ArrayRow

	objective  *goal
	artificial *goal

	state         State
	maxIterations int

	constraints        int
	iterations         int
	minimizeIterations int
	artificialRuns     int
	dropped            int
	capped             bool
}

// NewLinearSystem returns an empty system in [StateBuilding].
func NewLinearSystem(opts ...Option) *LinearSystem {
	s := &LinearSystem{
		rows:          make(map[*SolverVariable]*ArrayRow),
		objective:     newGoal(),
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewVariable allocates a variable with a generated name.
func (s *LinearSystem) NewVariable(t VariableType, strength Strength) *SolverVariable {
	v := &SolverVariable{
		ID:       len(s.variables),
		Name:     s.names.next(t),
		Type:     t,
		Strength: strength,
	}
	s.variables = append(s.variables, v)
	return v
}

// CreateVariable allocates a named unrestricted variable. An empty name
// gets a generated one.
func (s *LinearSystem) CreateVariable(name string) *SolverVariable {
	v := s.NewVariable(Unrestricted, StrengthNone)
	if name != "" {
		v.Name = name
	}
	return v
}

// Variables returns every variable in allocation order.
func (s *LinearSystem) Variables() []*SolverVariable {
	return slices.Clone(s.variables)
}

// State returns the current lifecycle state.
func (s *LinearSystem) State() State { return s.state }

// Stats returns size and work counters.
func (s *LinearSystem) Stats() Stats {
	return Stats{
		Rows:           len(s.rows),
		Variables:      len(s.variables),
		Constraints:    s.constraints,
		Iterations:     s.iterations,
		ArtificialRuns: s.artificialRuns,
		Dropped:        s.dropped,
		Capped:         s.capped,
	}
}

// AddConstraint adds eq with the given strength and reports whether the
// constraint was kept. Soft constraints are always kept. A hard constraint
// that conflicts with the hard constraints already present is dropped, the
// drop is counted and the system is marked infeasible; solving continues.
func (s *LinearSystem) AddConstraint(eq *LinearEquation, strength Strength) bool {
	if s.state != StateInfeasible {
		s.state = StateBuilding
	}
	s.constraints++

	row := NewArrayRow()
	var fresh []*SolverVariable
	if slack := CreateRowFromEquation(eq, row, s); slack != nil {
		fresh = append(fresh, slack)
		if !strength.IsHard() {
			e := s.NewVariable(Error, strength)
			row.insert(e, -row.cells[slack])
			s.objective.insert(e, unitPriority(strength), 1)
			fresh = append(fresh, e)
		}
	} else if !strength.IsHard() {
		plus := s.NewVariable(Error, strength)
		minus := s.NewVariable(Error, strength)
		row.insert(plus, -1)
		row.insert(minus, 1)
		s.objective.insert(plus, unitPriority(strength), 1)
		s.objective.insert(minus, unitPriority(strength), 1)
		fresh = append(fresh, plus, minus)
	}

	for _, v := range row.variables() {
		if basic, ok := s.rows[v]; ok {
			row.substitute(v, basic)
		}
	}

	if len(row.cells) == 0 {
		if nearZero(row.constant) {
			return true
		}
		s.drop()
		return false
	}
	if row.constant < 0 {
		row.reverseSign()
	}

	subject := chooseSubject(row, fresh)
	if subject == nil {
		if !s.addWithArtificialVariable(row) {
			s.drop()
			return false
		}
		return true
	}
	row.solveFor(subject)
	s.substitute(subject, row)
	s.rows[subject] = row
	return true
}

func (s *LinearSystem) drop() {
	s.dropped++
	s.state = StateInfeasible
}

// chooseSubject returns the lowest-ID unrestricted variable of row, or else
// the lowest-ID fresh restricted variable with a negative coefficient.
func chooseSubject(row *ArrayRow, fresh []*SolverVariable) *SolverVariable {
	vars := row.variables()
	for _, v := range vars {
		if v.Type == Unrestricted {
			return v
		}
	}
	for _, v := range vars {
		if slices.Contains(fresh, v) && row.cells[v] < 0 {
			return v
		}
	}
	return nil
}

// addWithArtificialVariable runs Phase 1 for a row that has no usable
// subject. It reports whether the row could be satisfied.
func (s *LinearSystem) addWithArtificialVariable(row *ArrayRow) bool {
	s.artificialRuns++
	art := s.NewVariable(Artificial, StrengthNone)
	r := row.clone()
	r.basic = art
	s.rows[art] = r
	s.artificial = goalFromRow(r)

	s.optimize(s.artificial, s.maxIterations)
	success := nearZero(s.artificial.constant[0])
	s.artificial = nil

	if basic, ok := s.rows[art]; ok {
		delete(s.rows, art)
		if !success {
			return false
		}
		if len(basic.cells) == 0 {
			return true
		}
		entering := pivotable(basic)
		if entering == nil {
			return false
		}
		basic.solveForPivot(entering)
		basic.remove(art)
		s.substitute(entering, basic)
		s.rows[entering] = basic
	}

	for _, r := range s.rows {
		r.remove(art)
	}
	s.objective.remove(art)
	return success
}

// pivotable returns the lowest-ID non-artificial variable of row.
func pivotable(row *ArrayRow) *SolverVariable {
	for _, v := range row.variables() {
		if v.Type != Artificial {
			return v
		}
	}
	return nil
}

// substitute replaces v everywhere with the expression of row.
func (s *LinearSystem) substitute(v *SolverVariable, row *ArrayRow) {
	for _, r := range s.rows {
		r.substitute(v, row)
	}
	s.objective.substitute(v, row)
	if s.artificial != nil {
		s.artificial.substitute(v, row)
	}
}

// optimize pivots until g cannot improve, the problem is unbounded in the
// improving direction, or budget pivots were spent. It returns the number of
// pivots performed and whether the budget stopped it.
func (s *LinearSystem) optimize(g *goal, budget int) (int, bool) {
	pivots := 0
	for {
		entering, dir := s.enteringVariable(g)
		if entering == nil {
			return pivots, false
		}
		leaving := s.leavingRow(entering, dir)
		if leaving == nil {
			return pivots, false
		}
		if pivots >= budget {
			return pivots, true
		}
		pivots++
		s.iterations++
		s.pivot(leaving, entering)
	}
}

// enteringVariable returns the lowest-ID variable whose objective
// coefficient improves g, with the direction it has to move in.
func (s *LinearSystem) enteringVariable(g *goal) (*SolverVariable, float64) {
	vars := make([]*SolverVariable, 0, len(g.cells))
	for v := range g.cells {
		vars = append(vars, v)
	}
	slices.SortFunc(vars, byID)
	for _, v := range vars {
		if v.Type == Artificial {
			continue
		}
		sign := g.cells[v].sign()
		if v.Type.restricted() {
			if sign < 0 {
				return v, 1
			}
			continue
		}
		if sign != 0 {
			return v, float64(-sign)
		}
	}
	return nil, 0
}

// leavingRow applies the minimum ratio test over rows with a restricted
// basic variable, breaking ties towards the lowest basic ID.
func (s *LinearSystem) leavingRow(entering *SolverVariable, dir float64) *ArrayRow {
	var best *ArrayRow
	bestRatio := 0.0
	for _, basic := range s.sortedBasics() {
		if !basic.Type.restricted() {
			continue
		}
		r := s.rows[basic]
		c := r.cells[entering] * dir
		if nearZero(c) || c > 0 {
			continue
		}
		ratio := r.constant / -c
		if best == nil || ratio < bestRatio-epsilon {
			best, bestRatio = r, ratio
		}
	}
	return best
}

func (s *LinearSystem) sortedBasics() []*SolverVariable {
	basics := make([]*SolverVariable, 0, len(s.rows))
	for v := range s.rows {
		basics = append(basics, v)
	}
	slices.SortFunc(basics, byID)
	return basics
}

// pivot makes entering basic in row.
func (s *LinearSystem) pivot(row *ArrayRow, entering *SolverVariable) {
	delete(s.rows, row.basic)
	row.solveForPivot(entering)
	s.substitute(entering, row)
	s.rows[entering] = row
}

// Minimize runs Phase 2 on the strength-weighted objective and writes the
// solution back onto every variable.
func (s *LinearSystem) Minimize() Result {
	infeasible := s.state == StateInfeasible
	s.state = StateMinimizing
	pivots, capped := s.optimize(s.objective, s.maxIterations-s.minimizeIterations)
	s.minimizeIterations += pivots
	s.capped = s.capped || capped
	s.UpdateFromSolver()
	if infeasible || s.dropped > 0 {
		s.state = StateInfeasible
	} else {
		s.state = StateSolved
	}
	return Result{
		State:      s.state,
		Iterations: s.iterations,
		Capped:     s.capped,
		Dropped:    s.dropped,
	}
}

// Value returns the current value of v: its row constant when basic, zero
// otherwise.
func (s *LinearSystem) Value(v *SolverVariable) float64 {
	if r, ok := s.rows[v]; ok {
		return r.constant
	}
	return 0
}

// UpdateFromSolver copies the current value of every variable onto its
// Value field.
func (s *LinearSystem) UpdateFromSolver() {
	for _, v := range s.variables {
		v.Value = s.Value(v)
	}
}

// ObjectiveValue returns the error weight left at strength level st.
func (s *LinearSystem) ObjectiveValue(st Strength) float64 {
	if st < 0 || int(st) >= softLevels {
		return 0
	}
	return s.objective.constant[st]
}

// String dumps the tableau, one row per line, ordered by basic ID.
func (s *LinearSystem) String() string {
	var b strings.Builder
	for _, v := range s.sortedBasics() {
		b.WriteString(s.rows[v].String())
		b.WriteByte('\n')
	}
	return b.String()
}
