package grading

// Response is the raw answer payload for a single question. The same tagged
// shape carries both a question's stored correct answer and a candidate's
// submitted answer: exactly one field is meaningful, selected by the
// question type (Text for choice/true-false/essay and scalar fill-blank,
// Parts for ordered sequences, Pairs for matching).
type Response struct {
	Text  string   `json:"text,omitempty"`
	Parts []string `json:"parts,omitempty"`
	Pairs []Pair   `json:"pairs,omitempty"`
}

// Pair is one left->right association in a matching answer.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type Shape int

const (
	ShapeText Shape = iota
	ShapeParts
	ShapePairs
)

// Shape reports which payload field the response carries. A response with no
// populated field counts as text, so an empty answer is still comparable
// (and simply wrong) for text-shaped questions.
func (r Response) Shape() Shape {
	switch {
	case r.Pairs != nil:
		return ShapePairs
	case r.Parts != nil:
		return ShapeParts
	default:
		return ShapeText
	}
}
