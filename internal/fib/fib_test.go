package fib

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerm_KnownValues(t *testing.T) {
	tests := []struct {
		n    int32
		want int32
	}{
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 3},
		{5, 5},
		{10, 55},
		{20, 6765},
		{46, 1836311903},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Term32(tt.n), "Term32(%d)", tt.n)
		assert.Equal(t, int64(tt.want), Term64(int64(tt.n)), "Term64(%d)", tt.n)
	}
}

func TestTerm_NonPositiveReturnsOne(t *testing.T) {
	for _, n := range []int32{2, 1, 0, -1, -42, math.MinInt32} {
		assert.Equal(t, int32(1), Term32(n), "Term32(%d)", n)
		assert.Equal(t, int64(1), Term64(int64(n)), "Term64(%d)", n)
	}
	assert.Equal(t, int64(1), Term64(math.MinInt64))
}

func TestTerm_Recurrence(t *testing.T) {
	for n := int64(3); n <= 92; n++ {
		require.Equal(t, Term64(n-1)+Term64(n-2), Term64(n), "n=%d", n)
	}
	// Wrapping addition keeps the recurrence past the overflow point.
	for n := int32(3); n <= 60; n++ {
		require.Equal(t, Term32(n-1)+Term32(n-2), Term32(n), "n=%d", n)
	}
}

func TestTerm_Monotonic(t *testing.T) {
	for n := int64(2); n <= 92; n++ {
		require.GreaterOrEqual(t, Term64(n), Term64(n-1), "n=%d", n)
	}
}

func TestTerm_WrapsSilently(t *testing.T) {
	// fib(47) = 2971215073, which is 2971215073 - 2^32 as an int32.
	assert.Equal(t, int32(-1323752223), Term32(47))
	assert.Equal(t, int64(7540113804746346429), Term64(92))
	assert.Negative(t, Term64(93))
}

func TestTermChecked(t *testing.T) {
	v, err := TermChecked(int32(46))
	require.NoError(t, err)
	assert.Equal(t, int32(1836311903), v)

	_, err = TermChecked(int32(47))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverflow))

	var oe *OverflowError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, int64(47), oe.N)
	assert.Equal(t, int64(47), oe.At)

	_, err = TermChecked(int64(200))
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, int64(93), oe.At)

	v64, err := TermChecked(int64(-5))
	require.NoError(t, err)
	assert.Equal(t, int64(1), v64)
}

func TestTermBig(t *testing.T) {
	assert.Equal(t, "1", TermBig(-3).String())
	assert.Equal(t, "1", TermBig(2).String())
	assert.Equal(t, "55", TermBig(10).String())
	assert.Equal(t, "2971215073", TermBig(47).String())
	assert.Equal(t, "12200160415121876738", TermBig(93).String())
	assert.Equal(t, "354224848179261915075", TermBig(100).String())
}
