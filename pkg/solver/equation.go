package solver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

// Operator is the relation between the two sides of a [LinearEquation].
type Operator int

const (
	OpEquals Operator = iota
	OpLowerThan
	OpGreaterThan
)

func (o Operator) String() string {
	switch o {
	case OpLowerThan:
		return "<="
	case OpGreaterThan:
		return ">="
	default:
		return "="
	}
}

// VariableFactory allocates fresh variables. [LinearSystem] implements it.
type VariableFactory interface {
	NewVariable(t VariableType, s Strength) *SolverVariable
}

// LinearEquation is a single constraint written in algebraic order:
//
//	eq := solver.NewEquation().Var(right).EqualsTo().Var(left).Const(100)
//
// Terms are appended to the current side. The side starts on the left and
// switches to the right with [LinearEquation.EqualsTo],
// [LinearEquation.LowerThan] or [LinearEquation.GreaterThan].
type LinearEquation struct {
	left    []EquationVariable
	right   []EquationVariable
	op      Operator
	onRight bool
}

// NewEquation returns an empty equation building its left side.
func NewEquation() *LinearEquation {
	return &LinearEquation{}
}

func (e *LinearEquation) side() *[]EquationVariable {
	if e.onRight {
		return &e.right
	}
	return &e.left
}

// Term appends t to the current side.
func (e *LinearEquation) Term(t EquationVariable) *LinearEquation {
	s := e.side()
	*s = append(*s, t)
	return e
}

// Var appends 1·v to the current side.
func (e *LinearEquation) Var(v *SolverVariable) *LinearEquation {
	return e.Term(Term(AmountOf(1), v))
}

// VarTimes appends coef·v to the current side.
func (e *LinearEquation) VarTimes(coef Amount, v *SolverVariable) *LinearEquation {
	return e.Term(Term(coef, v))
}

// Const appends the integer constant n to the current side.
func (e *LinearEquation) Const(n int) *LinearEquation {
	return e.Term(Constant(AmountOf(n)))
}

// ConstAmount appends the constant a to the current side.
func (e *LinearEquation) ConstAmount(a Amount) *LinearEquation {
	return e.Term(Constant(a))
}

// EqualsTo sets the operator to = and switches to the right side.
func (e *LinearEquation) EqualsTo() *LinearEquation {
	e.op, e.onRight = OpEquals, true
	return e
}

// LowerThan sets the operator to <= and switches to the right side.
func (e *LinearEquation) LowerThan() *LinearEquation {
	e.op, e.onRight = OpLowerThan, true
	return e
}

// GreaterThan sets the operator to >= and switches to the right side.
func (e *LinearEquation) GreaterThan() *LinearEquation {
	e.op, e.onRight = OpGreaterThan, true
	return e
}

// Operator returns the current relation.
func (e *LinearEquation) Operator() Operator { return e.op }

// Left returns a copy of the left side terms.
func (e *LinearEquation) Left() []EquationVariable { return slices.Clone(e.left) }

// Right returns a copy of the right side terms.
func (e *LinearEquation) Right() []EquationVariable { return slices.Clone(e.right) }

// Normalize rewrites an inequality as an equality by adding a slack term on
// the left: +slack for <=, -slack for >=. It returns the slack, or nil when
// the equation already was an equality.
func (e *LinearEquation) Normalize(f VariableFactory) *SolverVariable {
	if e.op == OpEquals {
		return nil
	}
	slack := f.NewVariable(Slack, StrengthNone)
	coef := AmountOf(1)
	if e.op == OpGreaterThan {
		coef = coef.Negate()
	}
	e.left = append(e.left, Term(coef, slack))
	e.op = OpEquals
	e.onRight = true
	return slack
}

// Simplify merges compatible terms on each side and removes null terms.
func (e *LinearEquation) Simplify() {
	e.left = simplifySide(e.left)
	e.right = simplifySide(e.right)
}

func simplifySide(terms []EquationVariable) []EquationVariable {
	out := make([]EquationVariable, 0, len(terms))
	for _, t := range terms {
		merged := false
		for i := range out {
			if out[i].Compatible(t) {
				out[i].Amount = out[i].Amount.Add(t.Amount)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, t)
		}
	}
	return removeNullTerms(out)
}

func removeNullTerms(terms []EquationVariable) []EquationVariable {
	return slices.DeleteFunc(terms, func(t EquationVariable) bool {
		return t.Amount.IsNull()
	})
}

// moveAllToTheRight rewrites left = right as 0 = right - left.
func (e *LinearEquation) moveAllToTheRight() {
	for _, t := range e.left {
		e.right = append(e.right, t.Negate())
	}
	e.left = nil
	e.right = simplifySide(e.right)
}

// Balance moves every term to the right and extracts the preferred variable
// as a singleton left side with coefficient exactly 1. Preference is
// Unrestricted, then Slack, then Error, then Artificial, lowest ID first.
func (e *LinearEquation) Balance() error {
	if e.op != OpEquals {
		return errors.New(errors.ErrCodeInternal, "balance requires a normalized equation")
	}
	e.moveAllToTheRight()
	var best *SolverVariable
	for _, t := range e.right {
		v := t.Variable
		if v == nil {
			continue
		}
		if best == nil || v.Type.preference() < best.Type.preference() ||
			(v.Type == best.Type && v.ID < best.ID) {
			best = v
		}
	}
	if best == nil {
		return errors.New(errors.ErrCodeInternal, "equation %s has no variable to balance", e)
	}
	return e.pivotRight(best)
}

// Pivot moves every term to the right and extracts v as the singleton left
// side with coefficient 1.
func (e *LinearEquation) Pivot(v *SolverVariable) error {
	if e.op != OpEquals {
		return errors.New(errors.ErrCodeInternal, "pivot requires a normalized equation")
	}
	e.moveAllToTheRight()
	return e.pivotRight(v)
}

// pivotRight solves 0 = c·v + rest for v.
func (e *LinearEquation) pivotRight(v *SolverVariable) error {
	idx := slices.IndexFunc(e.right, func(t EquationVariable) bool { return t.Variable == v })
	if idx < 0 {
		return errors.New(errors.ErrCodeNotFound, "variable %s not in equation", v)
	}
	coef := e.right[idx].Amount.Negate()
	rest := slices.Delete(slices.Clone(e.right), idx, idx+1)
	right := make([]EquationVariable, 0, len(rest))
	for _, t := range rest {
		q, err := t.Divide(coef)
		if err != nil {
			return err
		}
		right = append(right, q)
	}
	e.left = []EquationVariable{Term(AmountOf(1), v)}
	e.right = right
	return nil
}

// String renders the equation, e.g. "u1 = u2 + 100".
func (e *LinearEquation) String() string {
	var b strings.Builder
	writeSide(&b, e.left)
	fmt.Fprintf(&b, " %s ", e.op)
	writeSide(&b, e.right)
	return b.String()
}

func writeSide(b *strings.Builder, terms []EquationVariable) {
	if len(terms) == 0 {
		b.WriteString("0")
		return
	}
	for i, t := range terms {
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(t.String())
	}
}

// CreateRowFromEquation normalizes eq and folds it into row as
// 0 = constant + Σ coef·var. It returns the slack introduced by
// normalization, if any.
func CreateRowFromEquation(eq *LinearEquation, row *ArrayRow, f VariableFactory) *SolverVariable {
	slack := eq.Normalize(f)
	eq.moveAllToTheRight()
	for _, t := range eq.right {
		if t.Variable == nil {
			row.constant += t.Amount.Float64()
			continue
		}
		row.insert(t.Variable, t.Amount.Float64())
	}
	return slack
}
