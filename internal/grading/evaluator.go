package grading

import (
	"errors"
	"fmt"
	"sort"
)

// Question types understood by the evaluator.
const (
	TypeSingleChoice = "single_choice"
	TypeTrueFalse    = "true_false"
	TypeFillBlank    = "fill_blank"
	TypeEssay        = "essay"
	TypeMatching     = "matching"
	TypeOrdering     = "ordering"
)

var (
	ErrInvalidQuestionType = errors.New("invalid question type")
	ErrMalformedAnswer     = errors.New("malformed answer")
)

// Q is a minimal view of a question needed for evaluation.
// Keep this in sync with whatever fields your store uses.
type Q struct {
	Type          string
	Marks         float64
	NegativeMarks float64
	Key           Response
}

// Result is the outcome of evaluating a single response. Correct==nil means
// correctness cannot be decided mechanically (essay); Marks stays nil until
// a teacher grades the answer.
type Result struct {
	Correct *bool
	Marks   *float64
}

// Strategy evaluates a single question type.
type Strategy interface {
	Evaluate(q Q, resp Response) (Result, error)
}

// Evaluator routes by question type to the matching Strategy. It is pure:
// no clock, no storage, no side effects.
type Evaluator struct {
	strategies map[string]Strategy
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		strategies: map[string]Strategy{
			TypeSingleChoice: textStrategy{},
			TypeTrueFalse:    textStrategy{},
			TypeFillBlank:    fillBlankStrategy{},
			TypeEssay:        essayStrategy{},
			TypeMatching:     matchingStrategy{},
			TypeOrdering:     orderingStrategy{},
		},
	}
}

func (e *Evaluator) Evaluate(q Q, resp Response) (Result, error) {
	s, ok := e.strategies[q.Type]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidQuestionType, q.Type)
	}
	return s.Evaluate(q, resp)
}

// scored converts a correctness verdict into awarded marks: +marks when
// correct, -negativeMarks when determinately wrong.
func scored(q Q, correct bool) Result {
	m := q.Marks
	if !correct {
		m = -q.NegativeMarks
	}
	return Result{Correct: &correct, Marks: &m}
}

// --- Strategies ---

type textStrategy struct{}

func (textStrategy) Evaluate(q Q, resp Response) (Result, error) {
	if resp.Shape() != ShapeText || q.Key.Shape() != ShapeText {
		return Result{}, fmt.Errorf("%w: %s question expects a text answer", ErrMalformedAnswer, q.Type)
	}
	return scored(q, normalize(resp.Text) == normalize(q.Key.Text)), nil
}

type fillBlankStrategy struct{}

func (fillBlankStrategy) Evaluate(q Q, resp Response) (Result, error) {
	// A scalar key behaves like single_choice: one normalized comparison.
	if q.Key.Shape() == ShapeText {
		if resp.Shape() != ShapeText {
			return Result{}, fmt.Errorf("%w: scalar fill_blank expects a text answer", ErrMalformedAnswer)
		}
		return scored(q, normalize(resp.Text) == normalize(q.Key.Text)), nil
	}
	if q.Key.Shape() != ShapeParts || resp.Shape() != ShapeParts {
		return Result{}, fmt.Errorf("%w: fill_blank expects an ordered list of blanks", ErrMalformedAnswer)
	}
	return scored(q, equalNormalized(resp.Parts, q.Key.Parts)), nil
}

type essayStrategy struct{}

func (essayStrategy) Evaluate(_ Q, resp Response) (Result, error) {
	if resp.Shape() != ShapeText {
		return Result{}, fmt.Errorf("%w: essay answers must be text", ErrMalformedAnswer)
	}
	// Indeterminate until a teacher grades it.
	return Result{}, nil
}

type matchingStrategy struct{}

func (matchingStrategy) Evaluate(q Q, resp Response) (Result, error) {
	if resp.Shape() != ShapePairs || q.Key.Shape() != ShapePairs {
		return Result{}, fmt.Errorf("%w: matching expects a list of pairs", ErrMalformedAnswer)
	}
	return scored(q, equalPairSets(resp.Pairs, q.Key.Pairs)), nil
}

type orderingStrategy struct{}

func (orderingStrategy) Evaluate(q Q, resp Response) (Result, error) {
	if resp.Shape() != ShapeParts || q.Key.Shape() != ShapeParts {
		return Result{}, fmt.Errorf("%w: ordering expects an ordered list", ErrMalformedAnswer)
	}
	if len(resp.Parts) != len(q.Key.Parts) {
		return scored(q, false), nil
	}
	for i := range q.Key.Parts {
		if resp.Parts[i] != q.Key.Parts[i] {
			return scored(q, false), nil
		}
	}
	return scored(q, true), nil
}

// equalPairSets compares two pairings as unordered sets: both sides are put
// into a canonical (left, right) order, then compared element-wise.
func equalPairSets(a, b []Pair) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := sortedPairs(a), sortedPairs(b)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func sortedPairs(in []Pair) []Pair {
	out := make([]Pair, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Left != out[j].Left {
			return out[i].Left < out[j].Left
		}
		return out[i].Right < out[j].Right
	})
	return out
}
