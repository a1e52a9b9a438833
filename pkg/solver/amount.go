package solver

import (
	"fmt"
	"math"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

// ErrDivisionByNull is returned by [Amount.Divide] when the divisor is zero.
// Callers only ever divide by pivot coefficients they have checked first,
// so hitting this error means a solver invariant was broken.
var ErrDivisionByNull = errors.New(errors.ErrCodeArithmetic, "division by a null amount")

// maxDenominator bounds the denominator produced by [AmountFromFloat].
const maxDenominator = 1_000_000

// Amount is an exact rational number used for every equation coefficient.
//
// The zero value is the number 0. Amounts are always kept reduced with the
// sign in the numerator and a strictly positive denominator, but equality is
// value based: use [Amount.Equal] rather than ==.
type Amount struct {
	num int64
	den int64
}

// NewAmount returns num/den reduced to lowest terms. A zero denominator
// yields the null amount.
func NewAmount(num, den int64) Amount {
	if den == 0 || num == 0 {
		return Amount{num: 0, den: 1}
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs64(num), den)
	return Amount{num: num / g, den: den / g}
}

// AmountOf returns the integer n as an Amount.
func AmountOf(n int) Amount {
	return Amount{num: int64(n), den: 1}
}

// AmountFromFloat approximates f with a continued fraction whose denominator
// stays below one million. Non-finite values map to the null amount.
func AmountFromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return Amount{den: 1}
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Amount{num: int64(f), den: 1}
	}

	neg := f < 0
	x := math.Abs(f)

	// Convergents h/k of the continued fraction expansion of x.
	h0, h1 := int64(0), int64(1)
	k0, k1 := int64(1), int64(0)
	r := x
	for i := 0; i < 64; i++ {
		a := math.Floor(r)
		if a > math.MaxInt32 {
			break
		}
		ai := int64(a)
		h2 := ai*h1 + h0
		k2 := ai*k1 + k0
		if k2 > maxDenominator {
			break
		}
		h0, h1 = h1, h2
		k0, k1 = k1, k2
		frac := r - a
		if frac < 1e-12 || math.Abs(float64(h1)/float64(k1)-x) < 1e-12 {
			break
		}
		r = 1 / frac
	}
	if k1 == 0 {
		return Amount{num: int64(math.Round(f)), den: 1}
	}
	if neg {
		h1 = -h1
	}
	return NewAmount(h1, k1)
}

// Numerator returns the reduced numerator.
func (a Amount) Numerator() int64 { return a.num }

// Denominator returns the reduced, strictly positive denominator.
func (a Amount) Denominator() int64 {
	if a.den == 0 {
		return 1
	}
	return a.den
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	ad, bd := a.Denominator(), b.Denominator()
	if ad == bd {
		return NewAmount(a.num+b.num, ad)
	}
	return NewAmount(a.num*bd+b.num*ad, ad*bd)
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return a.Add(b.Negate())
}

// Multiply returns a * b.
func (a Amount) Multiply(b Amount) Amount {
	if a.num == 0 || b.num == 0 {
		return Amount{den: 1}
	}
	// Cross-reduce first to keep intermediate products small.
	g1 := gcd(abs64(a.num), b.Denominator())
	g2 := gcd(abs64(b.num), a.Denominator())
	return NewAmount((a.num/g1)*(b.num/g2), (a.Denominator()/g2)*(b.Denominator()/g1))
}

// Divide returns a / b, or [ErrDivisionByNull] when b is zero.
func (a Amount) Divide(b Amount) (Amount, error) {
	if b.IsNull() {
		return Amount{den: 1}, ErrDivisionByNull
	}
	return a.Multiply(Amount{num: b.Denominator(), den: b.num}.normalized()), nil
}

// MustDivide is like [Amount.Divide] but panics on a null divisor.
func (a Amount) MustDivide(b Amount) Amount {
	q, err := a.Divide(b)
	if err != nil {
		panic(err)
	}
	return q
}

// Negate returns -a.
func (a Amount) Negate() Amount {
	return Amount{num: -a.num, den: a.Denominator()}
}

// Inverse returns 1/a, or [ErrDivisionByNull] when a is zero.
func (a Amount) Inverse() (Amount, error) {
	return AmountOf(1).Divide(a)
}

// IsNull reports whether a == 0.
func (a Amount) IsNull() bool { return a.num == 0 }

// IsOne reports whether a == 1.
func (a Amount) IsOne() bool { return a.num != 0 && a.num == a.Denominator() }

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool { return a.num < 0 }

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool { return a.num > 0 }

// Equal compares by value, cross-multiplying so unreduced representations
// still compare equal.
func (a Amount) Equal(b Amount) bool {
	return a.num*b.Denominator() == b.num*a.Denominator()
}

// Float64 returns the nearest float64.
func (a Amount) Float64() float64 {
	return float64(a.num) / float64(a.Denominator())
}

// String formats the amount as "n" or "n/d".
func (a Amount) String() string {
	if a.Denominator() == 1 {
		return fmt.Sprintf("%d", a.num)
	}
	return fmt.Sprintf("%d/%d", a.num, a.Denominator())
}

func (a Amount) normalized() Amount {
	return NewAmount(a.num, a.den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
