// Package solver implements the incremental two-phase simplex used to
// resolve box layouts.
//
// Coefficients are built as exact rationals ([Amount]) while equations are
// assembled, then folded into float64 tableau rows ([ArrayRow]) owned by a
// single [LinearSystem]. Constraints carry a [Strength]: [StrengthFixed] is
// hard, every weaker strength is soft and is violated only when the stronger
// constraints leave no other choice. Infeasible hard constraints are dropped
// and counted rather than reported as errors, so a solve always yields an
// assignment.
//
// # Building constraints
//
//	sys := solver.NewLinearSystem()
//	left := sys.CreateVariable("button.left")
//	right := sys.CreateVariable("button.right")
//	sys.AddEquality(left, nil, 16, solver.StrengthFixed)
//	sys.AddEquality(right, left, 120, solver.StrengthFixed)
//	res := sys.Minimize()
//	// res.State == solver.StateSolved, right.Value == 136
//
// Equations can also be written directly:
//
//	eq := solver.NewEquation().Var(right).GreaterThan().Var(left).Const(50)
//	sys.AddConstraint(eq, solver.StrengthEquality)
//
// Variable names come from a counter owned by each system, so independent
// systems never share state and can be solved in parallel.
package solver
