package solver

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
)

// epsilon is the tolerance below which tableau coefficients count as zero.
const epsilon = 1e-9

func nearZero(v float64) bool {
	return scalar.EqualWithinAbs(v, 0, epsilon)
}

// ArrayRow is one row of the simplex tableau.
//
// A row with a basic variable b reads b = constant + Σ cells[v]·v. Before a
// basic variable is chosen the same data reads 0 = constant + Σ cells[v]·v.
// The tableau keeps every basic variable basic in exactly one row and absent
// from every other row.
type ArrayRow struct {
	basic    *SolverVariable
	constant float64
	cells    map[*SolverVariable]float64
}

// NewArrayRow returns an empty row.
func NewArrayRow() *ArrayRow {
	return &ArrayRow{cells: make(map[*SolverVariable]float64)}
}

// Basic returns the row's basic variable, nil while the row is detached.
func (r *ArrayRow) Basic() *SolverVariable { return r.basic }

// Constant returns the row constant, which is the basic variable's value.
func (r *ArrayRow) Constant() float64 { return r.constant }

// Coefficient returns the coefficient of v, zero when absent.
func (r *ArrayRow) Coefficient(v *SolverVariable) float64 { return r.cells[v] }

// Len returns the number of non-constant cells.
func (r *ArrayRow) Len() int { return len(r.cells) }

func (r *ArrayRow) clone() *ArrayRow {
	c := &ArrayRow{basic: r.basic, constant: r.constant, cells: make(map[*SolverVariable]float64, len(r.cells))}
	for v, k := range r.cells {
		c.cells[v] = k
	}
	return c
}

// insert adds coef·v, dropping the cell when it cancels out.
func (r *ArrayRow) insert(v *SolverVariable, coef float64) {
	k := r.cells[v] + coef
	if nearZero(k) {
		delete(r.cells, v)
		return
	}
	r.cells[v] = k
}

// insertRow adds coef times other (constant included).
func (r *ArrayRow) insertRow(other *ArrayRow, coef float64) {
	r.constant += other.constant * coef
	for v, k := range other.cells {
		r.insert(v, k*coef)
	}
}

func (r *ArrayRow) remove(v *SolverVariable) {
	delete(r.cells, v)
}

// reverseSign negates the constant and every cell.
func (r *ArrayRow) reverseSign() {
	r.constant = -r.constant
	for v, k := range r.cells {
		r.cells[v] = -k
	}
}

// solveFor makes v the basic variable of a detached row
// 0 = constant + c·v + rest, giving v = -(constant + rest)/c.
func (r *ArrayRow) solveFor(v *SolverVariable) {
	coef := -1 / r.cells[v]
	delete(r.cells, v)
	r.constant *= coef
	for x, k := range r.cells {
		r.cells[x] = k * coef
	}
	r.basic = v
}

// solveForPivot exchanges the basic variable: the old basic moves into the
// cells with coefficient -1 and entering becomes basic.
func (r *ArrayRow) solveForPivot(entering *SolverVariable) {
	if r.basic != nil {
		r.insert(r.basic, -1)
	}
	r.solveFor(entering)
}

// substitute replaces v with the expression of row.
func (r *ArrayRow) substitute(v *SolverVariable, row *ArrayRow) {
	coef, ok := r.cells[v]
	if !ok {
		return
	}
	delete(r.cells, v)
	r.insertRow(row, coef)
}

// variables returns the row's variables ordered by ID.
func (r *ArrayRow) variables() []*SolverVariable {
	vs := make([]*SolverVariable, 0, len(r.cells))
	for v := range r.cells {
		vs = append(vs, v)
	}
	slices.SortFunc(vs, byID)
	return vs
}

func byID(a, b *SolverVariable) int {
	return a.ID - b.ID
}

// String renders the row as "b = c + k·v ...".
func (r *ArrayRow) String() string {
	var b strings.Builder
	if r.basic != nil {
		fmt.Fprintf(&b, "%s = ", r.basic)
	} else {
		b.WriteString("0 = ")
	}
	fmt.Fprintf(&b, "%g", r.constant)
	for _, v := range r.variables() {
		fmt.Fprintf(&b, " %+g %s", r.cells[v], v)
	}
	return b.String()
}
