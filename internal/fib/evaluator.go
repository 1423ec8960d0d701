package fib

import (
	"fmt"
	"math"
	"math/big"
)

// Mode selects how terms are computed.
type Mode string

const (
	ModeWrap    Mode = "wrap"    // machine arithmetic, silent wraparound
	ModeChecked Mode = "checked" // machine arithmetic, ErrOverflow on wraparound
	ModeBig     Mode = "big"     // arbitrary precision
)

// ValidModes lists all supported modes.
var ValidModes = []Mode{ModeWrap, ModeChecked, ModeBig}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range ValidModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %v)", ErrInvalidMode, s, ValidModes)
}

// Width is the machine word size used by ModeWrap and ModeChecked.
type Width int

const (
	Width32 Width = 32
	Width64 Width = 64
)

// ParseWidth validates a bit width.
func ParseWidth(bits int) (Width, error) {
	switch Width(bits) {
	case Width32, Width64:
		return Width(bits), nil
	}
	return 0, fmt.Errorf("%w: %d (valid: 32, 64)", ErrInvalidWidth, bits)
}

// Evaluator describes one way of computing terms.
type Evaluator struct {
	Mode  Mode
	Width Width
	// MaxIndex caps accepted indices; 0 means no cap.
	MaxIndex int64
}

// DefaultEvaluator is the literal behaviour: wrapping 32-bit arithmetic.
func DefaultEvaluator() Evaluator {
	return Evaluator{Mode: ModeWrap, Width: Width32}
}

// Validate reports whether the evaluator can be used.
func (e Evaluator) Validate() error {
	if _, err := ParseMode(string(e.Mode)); err != nil {
		return err
	}
	if e.Mode != ModeBig {
		if _, err := ParseWidth(int(e.Width)); err != nil {
			return err
		}
	}
	if e.MaxIndex < 0 {
		return fmt.Errorf("%w: max index %d is negative", ErrIndexRange, e.MaxIndex)
	}
	return nil
}

// String renders the evaluator as mode/width, e.g. "wrap/32" or "big".
func (e Evaluator) String() string {
	if e.Mode == ModeBig {
		return string(e.Mode)
	}
	return fmt.Sprintf("%s/%d", e.Mode, e.Width)
}

// CheckIndex rejects indices the evaluator will not compute.
func (e Evaluator) CheckIndex(n int64) error {
	if e.MaxIndex > 0 && n > e.MaxIndex {
		return fmt.Errorf("%w: %d exceeds max index %d", ErrIndexRange, n, e.MaxIndex)
	}
	if e.Mode != ModeBig && e.Width == Width32 && (n > math.MaxInt32 || n < math.MinInt32) {
		return fmt.Errorf("%w: %d does not fit a 32-bit index", ErrIndexRange, n)
	}
	return nil
}

// Eval computes fib(n) according to the evaluator.
func (e Evaluator) Eval(n int64) (*big.Int, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := e.CheckIndex(n); err != nil {
		return nil, err
	}

	switch e.Mode {
	case ModeBig:
		return TermBig(n), nil
	case ModeChecked:
		if e.Width == Width32 {
			v, err := TermChecked(int32(n))
			if err != nil {
				return nil, err
			}
			return big.NewInt(int64(v)), nil
		}
		v, err := TermChecked(n)
		if err != nil {
			return nil, err
		}
		return big.NewInt(v), nil
	default:
		if e.Width == Width32 {
			return big.NewInt(int64(Term32(int32(n)))), nil
		}
		return big.NewInt(Term64(n)), nil
	}
}

// MaxBigSequence caps Sequence in ModeBig. Every term is kept, and fib(n)
// needs about 0.7n bits, so the total grows with the square of count.
const MaxBigSequence = 10000

// Sequence returns fib(1)..fib(count) computed in a single pass.
// The evaluator's MaxIndex applies to count, and ModeBig is further limited
// to MaxBigSequence terms. In ModeChecked the sequence stops with
// ErrOverflow at the first term that does not fit.
func (e Evaluator) Sequence(count int64) ([]*big.Int, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if count <= 0 {
		return []*big.Int{}, nil
	}
	if err := e.CheckIndex(count); err != nil {
		return nil, err
	}
	if e.Mode == ModeBig && count > MaxBigSequence {
		return nil, fmt.Errorf("%w: sequence of %d big terms exceeds %d", ErrIndexRange, count, MaxBigSequence)
	}

	out := make([]*big.Int, 0, count)
	err := e.walk(count, func(_ int64, v *big.Int) {
		out = append(out, v)
	})
	return out, err
}

// walk yields fib(1)..fib(count) in order. Every yielded value is a distinct
// *big.Int that walk never touches again.
func (e Evaluator) walk(count int64, yield func(n int64, v *big.Int)) error {
	prev, cur := big.NewInt(1), big.NewInt(1)
	for n := int64(1); n <= count; n++ {
		if n <= 2 {
			yield(n, big.NewInt(1))
			continue
		}
		next := new(big.Int).Add(prev, cur)
		if e.Mode != ModeBig {
			wrapped := e.wrap(next)
			if e.Mode == ModeChecked && wrapped.Cmp(next) != 0 {
				return &OverflowError{N: count, At: n}
			}
			next = wrapped
		}
		prev, cur = cur, next
		yield(n, cur)
	}
	return nil
}

// wrap reduces v to the evaluator's signed word, two's complement.
func (e Evaluator) wrap(v *big.Int) *big.Int {
	if e.Width == Width32 {
		return big.NewInt(int64(int32(v.Int64())))
	}
	// The sum of two int64 values always fits 65 bits; truncate to 64.
	mod := new(big.Int).Lsh(big.NewInt(1), 64)
	r := new(big.Int).Mod(v, mod)
	if r.Bit(63) == 1 {
		r.Sub(r, mod)
	}
	return r
}
