package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetterGradeThresholds(t *testing.T) {
	cases := []struct {
		value    float64
		expected string
	}{
		{100, "A"},
		{90, "A"},
		{89.9, "B"},
		{80, "B"},
		{79.5, "C"},
		{70, "C"},
		{69, "D"},
		{60, "D"},
		{59.9, "F"},
		{0, "F"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, LetterGrade(tc.value), "value %v", tc.value)
	}
}

func TestLetterGradeMonotonic(t *testing.T) {
	prev := LetterRank(LetterGrade(0))
	for v := 1.0; v <= 100; v++ {
		rank := LetterRank(LetterGrade(v))
		assert.GreaterOrEqual(t, rank, prev, "rank must not decrease at %v", v)
		prev = rank
	}
}

func TestResolveLetterPrefersSuppliedFineScale(t *testing.T) {
	assert.Equal(t, "B+", ResolveLetter(83, "B+"))
	assert.Equal(t, "A-", ResolveLetter(91, "A-"))
}

func TestResolveLetterFallsBackToCoarse(t *testing.T) {
	assert.Equal(t, "B", ResolveLetter(83, ""))
	assert.Equal(t, "F", ResolveLetter(55, "E"))
	assert.Equal(t, "A", ResolveLetter(95, "A++"))
}

func TestIsFineLetter(t *testing.T) {
	for _, l := range []string{"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "F"} {
		assert.True(t, IsFineLetter(l), l)
	}
	assert.False(t, IsFineLetter("D-"))
	assert.False(t, IsFineLetter("E"))
	assert.False(t, IsFineLetter(""))
}
