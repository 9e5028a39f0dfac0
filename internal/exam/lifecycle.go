package exam

import (
	"math"
	"time"

	"github.com/examind-labs/examind/internal/grading"
)

// gradingView projects a stored question into the evaluator's input.
func gradingView(q Question) grading.Q {
	return grading.Q{
		Type:          q.Type,
		Marks:         q.Marks,
		NegativeMarks: q.NegativeMarks,
		Key:           q.CorrectAnswer,
	}
}

// recordAnswer evaluates the response at record time and upserts it into the
// submission's answer list, last write wins per question. Only valid before
// the attempt is submitted.
func recordAnswer(eval *grading.Evaluator, sub *Submission, q Question, resp grading.Response, timeTakenSec int) error {
	if sub.IsSubmitted {
		return ErrAlreadySubmitted
	}
	if timeTakenSec < 0 {
		timeTakenSec = 0
	}
	res, err := eval.Evaluate(gradingView(q), resp)
	if err != nil {
		return err
	}
	ans := Answer{
		QuestionID:   q.ID,
		Response:     resp,
		TimeTakenSec: timeTakenSec,
		IsCorrect:    res.Correct,
		MarksAwarded: res.Marks,
	}
	if prev := sub.AnswerFor(q.ID); prev != nil {
		*prev = ans
	} else {
		sub.Answers = append(sub.Answers, ans)
	}
	return nil
}

// finalize applies the Created -> Submitted transition to the in-memory
// record. The backing store must make the isSubmitted flip itself atomic
// (compare-and-swap on the persisted flag).
func finalize(sub *Submission, e Exam, now time.Time, auto bool) {
	end := now
	sub.EndTime = &end
	sub.SubmittedAt = &end
	sub.TimeTakenMin = int(math.Round(now.Sub(sub.StartTime).Minutes()))
	sub.IsSubmitted = true
	sub.AutoSubmitted = auto
	applyScore(sub, e)
	sub.IsGraded = gradingComplete(sub.Answers)
}

func applyScore(sub *Submission, e Exam) {
	sc := AggregateScore(e.Questions, sub.Answers, e.PassingMarks)
	sub.TotalMarks = sc.TotalMarks
	sub.MarksObtained = sc.MarksObtained
	sub.Percentage = sc.Percentage
	sub.Grade = sc.Grade
	sub.IsPassed = sc.IsPassed
}

// gradeAnswer applies a manual grade to one essay answer after submission
// and re-aggregates the submission totals.
func gradeAnswer(sub *Submission, e Exam, questionID string, marks float64, feedback, gradedBy string, now time.Time) error {
	if !sub.IsSubmitted {
		return ErrNotSubmitted
	}
	ans := sub.AnswerFor(questionID)
	if ans == nil {
		return ErrAnswerNotFound
	}
	var q *Question
	for i := range e.Questions {
		if e.Questions[i].ID == questionID {
			q = &e.Questions[i]
			break
		}
	}
	if q == nil {
		return ErrQuestionNotFound
	}
	if q.Type != grading.TypeEssay {
		return ErrNotEssay
	}
	ans.MarksAwarded = &marks
	ans.TeacherFeedback = feedback
	ans.IsReviewed = true
	applyScore(sub, e)
	sub.IsGraded = gradingComplete(sub.Answers)
	sub.GradedBy = gradedBy
	t := now
	sub.GradedAt = &t
	return nil
}
