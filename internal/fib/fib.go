// Package fib computes terms of the Fibonacci sequence using the
// fib(1) = fib(2) = 1 indexing convention.
//
// Term is the literal iterative algorithm: two accumulators and a counter,
// silent wraparound on overflow, and 1 for every n <= 2. TermChecked and
// TermBig use the same loop but detect overflow or avoid it entirely.
package fib

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrOverflow is returned when a term does not fit the requested width.
	ErrOverflow = errors.New("fibonacci term overflows integer width")
	// ErrIndexRange is returned when an index is outside what the evaluator accepts.
	ErrIndexRange = errors.New("index out of range")
	// ErrInvalidMode is returned for an unknown computation mode.
	ErrInvalidMode = errors.New("invalid computation mode")
	// ErrInvalidWidth is returned for a width other than 32 or 64.
	ErrInvalidWidth = errors.New("invalid integer width")
)

// Integer is the set of machine integers Term operates on.
type Integer interface {
	~int32 | ~int64
}

// Term returns the n-th Fibonacci number.
// For n <= 2 (including zero and negative n) the loop never runs and 1 is
// returned. Additions wrap on overflow.
func Term[T Integer](n T) T {
	var prev, cur T = 1, 1
	for i := T(2); i < n; i++ {
		prev, cur = cur, prev+cur
	}
	return cur
}

// Term32 is Term on a 32-bit word.
func Term32(n int32) int32 { return Term(n) }

// Term64 is Term on a 64-bit word.
func Term64(n int64) int64 { return Term(n) }

// TermChecked is Term but stops with ErrOverflow at the first addition that
// leaves the range of T.
func TermChecked[T Integer](n T) (T, error) {
	var prev, cur T = 1, 1
	for i := T(2); i < n; i++ {
		next := prev + cur
		// Both operands are positive, so a wrapped sum is smaller than either.
		if next < cur {
			return 0, &OverflowError{N: int64(n), At: int64(i) + 1}
		}
		prev, cur = cur, next
	}
	return cur, nil
}

// TermBig returns the n-th Fibonacci number with arbitrary precision.
func TermBig(n int64) *big.Int {
	prev, cur := big.NewInt(1), big.NewInt(1)
	for i := int64(2); i < n; i++ {
		prev.Add(prev, cur)
		prev, cur = cur, prev
	}
	return cur
}

// OverflowError records which index overflowed while computing N.
type OverflowError struct {
	N  int64 // requested index
	At int64 // first index whose term does not fit
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("fib(%d): term %d overflows integer width", e.N, e.At)
}

func (e *OverflowError) Unwrap() error { return ErrOverflow }
