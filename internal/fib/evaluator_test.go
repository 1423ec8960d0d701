package fib

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("checked")
	require.NoError(t, err)
	assert.Equal(t, ModeChecked, m)

	_, err = ParseMode("fast")
	assert.True(t, errors.Is(err, ErrInvalidMode))
}

func TestParseWidth(t *testing.T) {
	w, err := ParseWidth(64)
	require.NoError(t, err)
	assert.Equal(t, Width64, w)

	_, err = ParseWidth(16)
	assert.True(t, errors.Is(err, ErrInvalidWidth))
}

func TestEvaluator_Eval(t *testing.T) {
	tests := []struct {
		name    string
		ev      Evaluator
		n       int64
		want    string
		wantErr error
	}{
		{"wrap32 small", Evaluator{Mode: ModeWrap, Width: Width32}, 10, "55", nil},
		{"wrap32 zero", Evaluator{Mode: ModeWrap, Width: Width32}, 0, "1", nil},
		{"wrap32 negative", Evaluator{Mode: ModeWrap, Width: Width32}, -7, "1", nil},
		{"wrap32 overflow", Evaluator{Mode: ModeWrap, Width: Width32}, 47, "-1323752223", nil},
		{"wrap64", Evaluator{Mode: ModeWrap, Width: Width64}, 47, "2971215073", nil},
		{"checked32 overflow", Evaluator{Mode: ModeChecked, Width: Width32}, 47, "", ErrOverflow},
		{"checked64", Evaluator{Mode: ModeChecked, Width: Width64}, 92, "7540113804746346429", nil},
		{"big", Evaluator{Mode: ModeBig}, 100, "354224848179261915075", nil},
		{"index too wide for 32", Evaluator{Mode: ModeWrap, Width: Width32}, math.MaxInt32 + 1, "", ErrIndexRange},
		{"max index", Evaluator{Mode: ModeBig, MaxIndex: 50}, 51, "", ErrIndexRange},
		{"bad mode", Evaluator{Mode: "fast", Width: Width32}, 3, "", ErrInvalidMode},
		{"bad width", Evaluator{Mode: ModeWrap, Width: 8}, 3, "", ErrInvalidWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ev.Eval(tt.n)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestEvaluator_String(t *testing.T) {
	assert.Equal(t, "wrap/32", DefaultEvaluator().String())
	assert.Equal(t, "big", Evaluator{Mode: ModeBig, Width: Width64}.String())
}

func TestEvaluator_Sequence(t *testing.T) {
	seq, err := DefaultEvaluator().Sequence(10)
	require.NoError(t, err)

	got := make([]string, len(seq))
	for i, v := range seq {
		got[i] = v.String()
	}
	want := []string{"1", "1", "2", "3", "5", "8", "13", "21", "34", "55"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sequence(10) mismatch (-want +got):\n%s", diff)
	}

	empty, err := DefaultEvaluator().Sequence(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEvaluator_SequenceMatchesTerm(t *testing.T) {
	for _, ev := range []Evaluator{
		{Mode: ModeWrap, Width: Width32},
		{Mode: ModeWrap, Width: Width64},
		{Mode: ModeBig},
	} {
		seq, err := ev.Sequence(120)
		require.NoError(t, err, ev.String())
		for i, v := range seq {
			direct, err := ev.Eval(int64(i) + 1)
			require.NoError(t, err)
			require.Zero(t, direct.Cmp(v), "%s n=%d: sequence %s, eval %s", ev, i+1, v, direct)
		}
	}
}

func TestEvaluator_SequenceCheckedStops(t *testing.T) {
	seq, err := Evaluator{Mode: ModeChecked, Width: Width32}.Sequence(50)
	require.ErrorIs(t, err, ErrOverflow)
	assert.Len(t, seq, 46)
	assert.Equal(t, "1836311903", seq[45].String())
}

func TestEvaluator_SequenceBigCap(t *testing.T) {
	ev := Evaluator{Mode: ModeBig}

	_, err := ev.Sequence(MaxBigSequence + 1)
	require.ErrorIs(t, err, ErrIndexRange)

	seq, err := ev.Sequence(MaxBigSequence)
	require.NoError(t, err)
	assert.Len(t, seq, MaxBigSequence)

	// Fixed-width modes hold one machine word per term and are bounded by MaxIndex only.
	seq, err = Evaluator{Mode: ModeWrap, Width: Width64}.Sequence(MaxBigSequence + 1)
	require.NoError(t, err)
	assert.Len(t, seq, MaxBigSequence+1)
}

func TestEvaluator_SequenceTermsAreDistinct(t *testing.T) {
	seq, err := Evaluator{Mode: ModeBig}.Sequence(4)
	require.NoError(t, err)

	seq[0].SetInt64(99)
	assert.Equal(t, "1", seq[1].String())
	assert.Equal(t, "2", seq[2].String())
}
