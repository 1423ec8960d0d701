package fib

import (
	"errors"
	"fmt"
	"math/big"
)

// Property names reported by Verify.
const (
	PropertyBase        = "base"        // fib(1) = fib(2) = 1
	PropertyRecurrence  = "recurrence"  // fib(n) = fib(n-1) + fib(n-2)
	PropertyMonotonic   = "monotonic"   // fib(n) >= fib(n-1)
	PropertyOverflow    = "overflow"    // checked mode stopped early
	PropertyConsistency = "consistency" // Sequence agrees with Eval
)

// Violation is one failed property at index N.
type Violation struct {
	N        int64  `json:"n"`
	Property string `json:"property"`
	Detail   string `json:"detail"`
}

// Report summarises a Verify run.
type Report struct {
	Evaluator  string      `json:"evaluator"`
	UpTo       int64       `json:"up_to"`
	Checked    int64       `json:"checked"`
	Violations []Violation `json:"violations"`
}

// OK reports whether no property was violated.
func (r *Report) OK() bool { return len(r.Violations) == 0 }

// Verify checks the sequence properties for 1..upTo using the evaluator's
// arithmetic. Wrapping arithmetic preserves the recurrence but not
// monotonicity, so wrap mode reports the first wrapped term.
// Only the last two terms are held at any time.
func Verify(ev Evaluator, upTo int64) (*Report, error) {
	report := &Report{Evaluator: ev.String(), UpTo: upTo, Violations: []Violation{}}
	if upTo <= 0 {
		return report, nil
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if err := ev.CheckIndex(upTo); err != nil {
		return nil, err
	}

	one := big.NewInt(1)
	monotonicBroken := false
	var p2, p1 *big.Int // fib(n-2), fib(n-1)
	err := ev.walk(upTo, func(n int64, v *big.Int) {
		report.Checked++
		defer func() { p2, p1 = p1, v }()

		if n <= 2 {
			if v.Cmp(one) != 0 {
				report.Violations = append(report.Violations, Violation{
					N: n, Property: PropertyBase, Detail: fmt.Sprintf("got %s, want 1", v),
				})
			}
			return
		}

		sum := new(big.Int).Add(p1, p2)
		if ev.Mode != ModeBig {
			sum = ev.wrap(sum)
		}
		if v.Cmp(sum) != 0 {
			report.Violations = append(report.Violations, Violation{
				N: n, Property: PropertyRecurrence,
				Detail: fmt.Sprintf("got %s, want %s + %s = %s", v, p1, p2, sum),
			})
		}

		// Only the first break is interesting; after a wrap the sign flips freely.
		if !monotonicBroken && v.Cmp(p1) < 0 {
			monotonicBroken = true
			report.Violations = append(report.Violations, Violation{
				N: n, Property: PropertyMonotonic,
				Detail: fmt.Sprintf("fib(%d) = %s < fib(%d) = %s", n, v, n-1, p1),
			})
		}
	})
	if err != nil {
		var oe *OverflowError
		if !errors.As(err, &oe) {
			return nil, err
		}
		report.Violations = append(report.Violations, Violation{
			N:        oe.At,
			Property: PropertyOverflow,
			Detail:   oe.Error(),
		})
	}

	if p1 != nil {
		last := report.Checked
		direct, err := ev.Eval(last)
		if err != nil {
			return nil, fmt.Errorf("recompute fib(%d): %w", last, err)
		}
		if direct.Cmp(p1) != 0 {
			report.Violations = append(report.Violations, Violation{
				N: last, Property: PropertyConsistency,
				Detail: fmt.Sprintf("walk gives %s, direct evaluation gives %s", p1, direct),
			})
		}
	}

	return report, nil
}
