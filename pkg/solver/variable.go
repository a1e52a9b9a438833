package solver

import "fmt"

// VariableType tags how a [SolverVariable] may be used by the simplex.
type VariableType int

const (
	// Unrestricted variables are the layout unknowns (anchor positions).
	// They may take any value and are preferred as basic variables.
	Unrestricted VariableType = iota
	// Slack variables turn inequalities into equalities. Always >= 0.
	Slack
	// Error variables measure the violation of a soft constraint. Always >= 0.
	Error
	// Artificial variables seed the Phase 1 feasibility search. Always >= 0.
	Artificial
)

// String returns the single-letter prefix used for generated names.
func (t VariableType) String() string {
	switch t {
	case Unrestricted:
		return "u"
	case Slack:
		return "s"
	case Error:
		return "e"
	case Artificial:
		return "a"
	}
	return "?"
}

// restricted reports whether variables of this type must stay non-negative.
func (t VariableType) restricted() bool {
	return t != Unrestricted
}

// preference orders variable types for [LinearEquation.Balance]; lower is
// preferred as the basic variable.
func (t VariableType) preference() int {
	return int(t)
}

// Strength is the priority of a constraint. [StrengthFixed] constraints are
// hard; every lower strength is a soft level of the objective and is
// sacrificed before any level above it.
type Strength int

const (
	StrengthNone Strength = iota
	StrengthLow
	StrengthMedium
	StrengthHigh
	StrengthHighest
	StrengthEquality
	StrengthBarrier
	StrengthCentering
	StrengthFixed
)

// softLevels is the number of objective priority levels.
const softLevels = int(StrengthFixed)

var strengthNames = [...]string{
	"none", "low", "medium", "high", "highest", "equality", "barrier", "centering", "fixed",
}

// String returns the lowercase strength name.
func (s Strength) String() string {
	if s < 0 || int(s) >= len(strengthNames) {
		return fmt.Sprintf("strength(%d)", int(s))
	}
	return strengthNames[s]
}

// IsHard reports whether constraints of this strength must be satisfied.
func (s Strength) IsHard() bool {
	return s >= StrengthFixed
}

// SolverVariable is one unknown of a [LinearSystem].
//
// Variables are allocated by the system that owns them and carry a dense ID
// that is unique within that system. They are never shared across systems.
type SolverVariable struct {
	ID       int
	Name     string
	Type     VariableType
	Strength Strength // only meaningful for Error variables
	Value    float64  // written by [LinearSystem.UpdateFromSolver]
}

func (v *SolverVariable) String() string {
	if v == nil {
		return "<const>"
	}
	return v.Name
}

// namer hands out per-system sequence numbers for generated variable names.
type namer struct {
	counters [4]int
}

func (n *namer) next(t VariableType) string {
	n.counters[t]++
	return fmt.Sprintf("%s%d", t, n.counters[t])
}
