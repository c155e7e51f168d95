package timing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestEstimate_HelloWorld(t *testing.T) {
	t.Run("default rate", func(t *testing.T) {
		tl := Estimate("Hello world", 0, 0)
		require.Len(t, tl, 2)
		assert.Equal(t, "Hello", tl[0].Word)
		assert.InDelta(t, 0.0, tl[0].Start, eps)
		assert.InDelta(t, 0.4, tl[0].End, eps)
		assert.InDelta(t, 0.8, tl.End(), eps)
	})

	t.Run("200 wpm gives 0.3s per five-letter word", func(t *testing.T) {
		tl := Estimate("Hello world", 200, 0)
		require.Len(t, tl, 2)
		assert.InDelta(t, 0.3, tl[0].End, eps)
		assert.InDelta(t, 0.3, tl[1].Start, eps)
		assert.InDelta(t, 0.6, tl[1].End, eps)
	})
}

func TestEstimate_Contiguous(t *testing.T) {
	texts := []string{
		"a",
		"The quick brown fox jumps over the lazy dog",
		"  leading and   trailing   whitespace  ",
		"supercalifragilisticexpialidocious is a long word",
		"naïve café déjà vu",
		"line\nbreaks\tand tabs",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			tl := Estimate(text, DefaultWordsPerMinute, 1.5)
			require.Len(t, tl, len(Tokenize(text)))
			require.NotEmpty(t, tl)
			assert.InDelta(t, 1.5, tl[0].Start, eps)

			total := 0.0
			for i, b := range tl {
				assert.Less(t, b.Start, b.End)
				total += b.Duration()
				if i+1 < len(tl) {
					assert.InDelta(t, b.End, tl[i+1].Start, eps)
				}
			}
			assert.InDelta(t, 1.5+total, tl.End(), 1e-6)
		})
	}
}

func TestEstimate_LengthFactorClamp(t *testing.T) {
	tl := Estimate("a abcdefghijklmnopqrstuvwxyz abcde", 150, 0)
	require.Len(t, tl, 3)
	assert.InDelta(t, 0.2, tl[0].Duration(), eps) // clamped to 0.5
	assert.InDelta(t, 0.8, tl[1].Duration(), eps) // clamped to 2.0
	assert.InDelta(t, 0.4, tl[2].Duration(), eps)
}

func TestEstimate_Empty(t *testing.T) {
	assert.Empty(t, Estimate("", 150, 0))
	assert.Empty(t, Estimate("   \n\t ", 150, 0))
	assert.Equal(t, 0.0, Timeline(nil).End())
}

func TestReconcile_OrdersByStart(t *testing.T) {
	tl := Reconcile(
		[]Timepoint{{WordIndex: 2, Seconds: 1.0}, {WordIndex: 0, Seconds: 0.0}, {WordIndex: 1, Seconds: 0.5}},
		[]string{"a", "b", "c"},
	)

	require.Len(t, tl, 3)
	assert.Equal(t, []string{"a", "b", "c"}, tl.Words())
	assert.InDelta(t, 0.0, tl[0].Start, eps)
	assert.InDelta(t, 0.5, tl[0].End, eps)
	assert.InDelta(t, 0.5, tl[1].Start, eps)
	assert.InDelta(t, 1.0, tl[1].End, eps)
	assert.InDelta(t, 1.0, tl[2].Start, eps)
	assert.InDelta(t, 1.1, tl[2].End, eps)
}

func TestReconcile_DropsOutOfRange(t *testing.T) {
	tl := Reconcile(
		[]Timepoint{{WordIndex: 0, Seconds: 0.2}, {WordIndex: 7, Seconds: 0.4}, {WordIndex: -1, Seconds: 0.1}, {WordIndex: 1, Seconds: 0.9}},
		[]string{"hello", "there"},
	)

	require.Len(t, tl, 2)
	assert.Equal(t, "hello", tl[0].Word)
	assert.InDelta(t, 0.9, tl[0].End, eps)
	assert.Equal(t, "there", tl[1].Word)
	assert.InDelta(t, 1.4, tl[1].End, eps)
}

func TestReconcile_SharedTimeKeepsPositiveDuration(t *testing.T) {
	tl := Reconcile(
		[]Timepoint{{WordIndex: 0, Seconds: 0.5}, {WordIndex: 1, Seconds: 0.5}, {WordIndex: 2, Seconds: 1.0}},
		[]string{"a", "bb", "c"},
	)

	require.Len(t, tl, 3)
	for i, b := range tl {
		assert.Greater(t, b.End, b.Start, "boundary %d %q", i, b.Word)
		assert.GreaterOrEqual(t, b.Start, 0.0)
	}
	assert.InDelta(t, 0.6, tl[0].End, eps)
	assert.InDelta(t, 1.0, tl[1].End, eps)
	assert.InDelta(t, 1.1, tl[2].End, eps)
}

func TestReconcile_DropsInvalidTimes(t *testing.T) {
	tl := Reconcile(
		[]Timepoint{
			{WordIndex: 0, Seconds: -0.3},
			{WordIndex: 1, Seconds: math.NaN()},
			{WordIndex: 2, Seconds: math.Inf(1)},
			{WordIndex: 3, Seconds: 0.2},
		},
		[]string{"one", "two", "three", "four"},
	)

	require.Len(t, tl, 1)
	assert.Equal(t, "four", tl[0].Word)
	assert.InDelta(t, 0.2, tl[0].Start, eps)
	assert.InDelta(t, 0.6, tl[0].End, eps)
}

func TestReconcile_Empty(t *testing.T) {
	assert.Empty(t, Reconcile(nil, []string{"a"}))
	assert.Empty(t, Reconcile([]Timepoint{{WordIndex: 0, Seconds: 1}}, nil))
}
