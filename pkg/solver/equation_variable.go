package solver

// EquationVariable is one term of a [LinearEquation]: a coefficient and an
// optional variable. A nil Variable makes the term a constant.
type EquationVariable struct {
	Amount   Amount
	Variable *SolverVariable
}

// Constant returns a constant term.
func Constant(a Amount) EquationVariable {
	return EquationVariable{Amount: a}
}

// Term returns the term coef·v.
func Term(coef Amount, v *SolverVariable) EquationVariable {
	return EquationVariable{Amount: coef, Variable: v}
}

// IsConstant reports whether the term has no variable.
func (e EquationVariable) IsConstant() bool {
	return e.Variable == nil
}

// Compatible reports whether e and o can be merged into a single term:
// both constants, or both on the same variable.
func (e EquationVariable) Compatible(o EquationVariable) bool {
	return e.Variable == o.Variable
}

// Multiply scales the coefficient.
func (e EquationVariable) Multiply(a Amount) EquationVariable {
	return EquationVariable{Amount: e.Amount.Multiply(a), Variable: e.Variable}
}

// Divide divides the coefficient, failing on a null divisor.
func (e EquationVariable) Divide(a Amount) (EquationVariable, error) {
	q, err := e.Amount.Divide(a)
	if err != nil {
		return e, err
	}
	return EquationVariable{Amount: q, Variable: e.Variable}, nil
}

// Negate flips the sign of the coefficient.
func (e EquationVariable) Negate() EquationVariable {
	return EquationVariable{Amount: e.Amount.Negate(), Variable: e.Variable}
}

func (e EquationVariable) String() string {
	if e.Variable == nil {
		return e.Amount.String()
	}
	if e.Amount.IsOne() {
		return e.Variable.Name
	}
	return e.Amount.String() + " " + e.Variable.Name
}
