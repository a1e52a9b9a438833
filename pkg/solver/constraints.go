package solver

// The helpers below cover the constraint shapes a box layout needs. Each one
// builds a [LinearEquation] and hands it to [LinearSystem.AddConstraint],
// returning whether the constraint was kept.

// AddEquality adds a = b + margin. A nil b makes it a = margin.
func (s *LinearSystem) AddEquality(a, b *SolverVariable, margin float64, strength Strength) bool {
	eq := NewEquation().Var(a).EqualsTo()
	if b != nil {
		eq.Var(b)
	}
	eq.ConstAmount(AmountFromFloat(margin))
	return s.AddConstraint(eq, strength)
}

// AddGreaterThan adds a >= b + margin. A nil b makes it a >= margin.
func (s *LinearSystem) AddGreaterThan(a, b *SolverVariable, margin float64, strength Strength) bool {
	eq := NewEquation().Var(a).GreaterThan()
	if b != nil {
		eq.Var(b)
	}
	eq.ConstAmount(AmountFromFloat(margin))
	return s.AddConstraint(eq, strength)
}

// AddLowerThan adds a <= b + margin. A nil b makes it a <= margin.
func (s *LinearSystem) AddLowerThan(a, b *SolverVariable, margin float64, strength Strength) bool {
	eq := NewEquation().Var(a).LowerThan()
	if b != nil {
		eq.Var(b)
	}
	eq.ConstAmount(AmountFromFloat(margin))
	return s.AddConstraint(eq, strength)
}

// AddCentering positions the segment [begin, end] between beginTarget+m1 and
// endTarget-m2 so that the leftover space is split by bias:
//
//	(begin - beginTarget - m1)·(1-bias) = (endTarget - m2 - end)·bias
//
// A nil target stands for the coordinate 0.
func (s *LinearSystem) AddCentering(begin, beginTarget *SolverVariable, m1 float64,
	end, endTarget *SolverVariable, m2 float64, bias float64, strength Strength) bool {
	b := AmountFromFloat(bias)
	nb := AmountOf(1).Sub(b)

	eq := NewEquation().VarTimes(nb, begin)
	if beginTarget != nil {
		eq.VarTimes(nb.Negate(), beginTarget)
	}
	eq.ConstAmount(nb.Multiply(AmountFromFloat(m1)).Negate())
	eq.EqualsTo()
	if endTarget != nil {
		eq.VarTimes(b, endTarget)
	}
	eq.ConstAmount(b.Multiply(AmountFromFloat(m2)).Negate())
	eq.VarTimes(b.Negate(), end)
	return s.AddConstraint(eq, strength)
}

// AddRatio adds a = ratio·b.
func (s *LinearSystem) AddRatio(a, b *SolverVariable, ratio float64, strength Strength) bool {
	eq := NewEquation().Var(a).EqualsTo().VarTimes(AmountFromFloat(ratio), b)
	return s.AddConstraint(eq, strength)
}

// AddProportion relates two spans: (aEnd - aBegin) = ratio·(bEnd - bBegin).
func (s *LinearSystem) AddProportion(aBegin, aEnd, bBegin, bEnd *SolverVariable, ratio float64, strength Strength) bool {
	r := AmountFromFloat(ratio)
	eq := NewEquation().
		Var(aEnd).VarTimes(AmountOf(-1), aBegin).
		EqualsTo().
		VarTimes(r, bEnd).VarTimes(r.Negate(), bBegin)
	return s.AddConstraint(eq, strength)
}

// AddGap relates the gaps of two consecutive pairs of coordinates:
// (a2 - a1) = (b2 - b1) + margin. Chains use it to equalize spacing.
func (s *LinearSystem) AddGap(a1, a2, b1, b2 *SolverVariable, margin float64, strength Strength) bool {
	eq := NewEquation().
		Var(a2).VarTimes(AmountOf(-1), a1).
		EqualsTo().
		Var(b2).VarTimes(AmountOf(-1), b1).
		ConstAmount(AmountFromFloat(margin))
	return s.AddConstraint(eq, strength)
}
