package exam

import "math"

// Score is the aggregate outcome of one submission against its exam.
type Score struct {
	TotalMarks    float64
	MarksObtained float64
	Percentage    float64
	Grade         string
	IsPassed      bool
}

// AggregateScore combines per-answer marks into submission totals. TotalMarks
// covers every question on the exam, answered or not; marks pending manual
// grading count as zero. The percentage is rounded to a whole number and NOT
// clamped at zero: negative marking may legitimately drive it below.
// Re-invoking with the same inputs yields the same Score.
func AggregateScore(questions []Question, answers []Answer, passingMarks float64) Score {
	var total, obtained float64
	for _, q := range questions {
		total += q.Marks
	}
	for _, a := range answers {
		if a.MarksAwarded != nil {
			obtained += *a.MarksAwarded
		}
	}
	pct := 0.0
	if total > 0 {
		pct = math.Round(obtained / total * 100)
	}
	return Score{
		TotalMarks:    total,
		MarksObtained: obtained,
		Percentage:    pct,
		Grade:         GradeFor(pct),
		IsPassed:      obtained >= passingMarks, // raw marks threshold, not percentage
	}
}

// GradeFor maps a percentage onto the fixed letter-grade bands.
func GradeFor(pct float64) string {
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B+"
	case pct >= 60:
		return "B"
	case pct >= 50:
		return "C"
	case pct >= 40:
		return "D"
	default:
		return "F"
	}
}

// gradingComplete reports whether no answer still awaits manual review.
func gradingComplete(answers []Answer) bool {
	for _, a := range answers {
		if a.MarksAwarded == nil && !a.IsReviewed {
			return false
		}
	}
	return true
}
