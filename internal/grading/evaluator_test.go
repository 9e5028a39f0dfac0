package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func TestEvaluate_TextTypes(t *testing.T) {
	eval := NewEvaluator()

	tests := []struct {
		name    string
		qType   string
		key     string
		answer  string
		correct *bool
		marks   *float64
	}{
		{name: "exact match", qType: TypeSingleChoice, key: "Paris", answer: "Paris", correct: boolPtr(true), marks: floatPtr(4)},
		{name: "case insensitive", qType: TypeSingleChoice, key: "Paris", answer: "paris", correct: boolPtr(true), marks: floatPtr(4)},
		{name: "whitespace trimmed", qType: TypeSingleChoice, key: "Paris", answer: "  Paris  ", correct: boolPtr(true), marks: floatPtr(4)},
		{name: "wrong answer penalized", qType: TypeSingleChoice, key: "Paris", answer: "London", correct: boolPtr(false), marks: floatPtr(-1)},
		{name: "empty answer is wrong", qType: TypeSingleChoice, key: "Paris", answer: "", correct: boolPtr(false), marks: floatPtr(-1)},
		{name: "true_false folded", qType: TypeTrueFalse, key: "True", answer: " true ", correct: boolPtr(true), marks: floatPtr(4)},
		{name: "true_false wrong", qType: TypeTrueFalse, key: "true", answer: "false", correct: boolPtr(false), marks: floatPtr(-1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := eval.Evaluate(
				Q{Type: tc.qType, Marks: 4, NegativeMarks: 1, Key: Response{Text: tc.key}},
				Response{Text: tc.answer},
			)
			require.NoError(t, err)
			assert.Equal(t, tc.correct, res.Correct)
			assert.Equal(t, tc.marks, res.Marks)
		})
	}
}

func TestEvaluate_FillBlank(t *testing.T) {
	eval := NewEvaluator()
	q := Q{Type: TypeFillBlank, Marks: 3, NegativeMarks: 1, Key: Response{Parts: []string{"Mercury", "Venus"}}}

	res, err := eval.Evaluate(q, Response{Parts: []string{" mercury ", "VENUS"}})
	require.NoError(t, err)
	require.NotNil(t, res.Correct)
	assert.True(t, *res.Correct)
	assert.Equal(t, 3.0, *res.Marks)

	res, err = eval.Evaluate(q, Response{Parts: []string{"Venus", "Mercury"}})
	require.NoError(t, err)
	assert.False(t, *res.Correct, "order matters for fill_blank")
	assert.Equal(t, -1.0, *res.Marks)

	res, err = eval.Evaluate(q, Response{Parts: []string{"Mercury"}})
	require.NoError(t, err)
	assert.False(t, *res.Correct, "length mismatch is wrong, not malformed")

	// Scalar key degrades to a single text comparison.
	scalar := Q{Type: TypeFillBlank, Marks: 2, Key: Response{Text: "oxygen"}}
	res, err = eval.Evaluate(scalar, Response{Text: " Oxygen"})
	require.NoError(t, err)
	assert.True(t, *res.Correct)
}

func TestEvaluate_Essay(t *testing.T) {
	eval := NewEvaluator()
	res, err := eval.Evaluate(
		Q{Type: TypeEssay, Marks: 10, Key: Response{}},
		Response{Text: "The mitochondria is the powerhouse of the cell."},
	)
	require.NoError(t, err)
	assert.Nil(t, res.Correct, "essay correctness is indeterminate")
	assert.Nil(t, res.Marks, "essay marks stay unset until manual grading")
}

func TestEvaluate_Matching(t *testing.T) {
	eval := NewEvaluator()
	q := Q{
		Type: TypeMatching, Marks: 5, NegativeMarks: 2,
		Key: Response{Pairs: []Pair{{Left: "H2O", Right: "water"}, {Left: "NaCl", Right: "salt"}}},
	}

	res, err := eval.Evaluate(q, Response{Pairs: []Pair{{Left: "NaCl", Right: "salt"}, {Left: "H2O", Right: "water"}}})
	require.NoError(t, err)
	assert.True(t, *res.Correct, "pair order must not matter")
	assert.Equal(t, 5.0, *res.Marks)

	res, err = eval.Evaluate(q, Response{Pairs: []Pair{{Left: "H2O", Right: "salt"}, {Left: "NaCl", Right: "water"}}})
	require.NoError(t, err)
	assert.False(t, *res.Correct)
	assert.Equal(t, -2.0, *res.Marks)
}

func TestEvaluate_Ordering(t *testing.T) {
	eval := NewEvaluator()
	q := Q{Type: TypeOrdering, Marks: 4, Key: Response{Parts: []string{"a", "b", "c"}}}

	res, err := eval.Evaluate(q, Response{Parts: []string{"a", "b", "c"}})
	require.NoError(t, err)
	assert.True(t, *res.Correct)

	res, err = eval.Evaluate(q, Response{Parts: []string{"c", "b", "a"}})
	require.NoError(t, err)
	assert.False(t, *res.Correct, "ordering is order-sensitive")
	assert.Equal(t, 0.0, *res.Marks, "zero negative marks award plain zero")
}

func TestEvaluate_Errors(t *testing.T) {
	eval := NewEvaluator()

	_, err := eval.Evaluate(Q{Type: "short_word", Key: Response{Text: "x"}}, Response{Text: "x"})
	assert.ErrorIs(t, err, ErrInvalidQuestionType)

	_, err = eval.Evaluate(
		Q{Type: TypeOrdering, Key: Response{Parts: []string{"a"}}},
		Response{Text: "not a list"},
	)
	assert.ErrorIs(t, err, ErrMalformedAnswer)

	_, err = eval.Evaluate(
		Q{Type: TypeMatching, Key: Response{Pairs: []Pair{{Left: "a", Right: "b"}}}},
		Response{Parts: []string{"a:b"}},
	)
	assert.ErrorIs(t, err, ErrMalformedAnswer)
}
