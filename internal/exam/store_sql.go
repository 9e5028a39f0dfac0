package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/examind-labs/examind/internal/grading"
	syncx "github.com/examind-labs/examind/internal/sync"
)

// SQLStore persists exams, questions and submissions over database/sql
// (sqlite or postgres). Answers ride along as a JSON column on the
// submission row; the submit transition is a conditional update keyed on
// is_submitted so only one finalize ever wins.
type SQLStore struct {
	db     *sql.DB
	eval   *grading.Evaluator
	events *syncx.EventRepo
	now    func() time.Time
}

type SQLOption func(*SQLStore)

// WithEventLog makes the store append lifecycle events (best effort).
func WithEventLog(repo *syncx.EventRepo) SQLOption {
	return func(s *SQLStore) { s.events = repo }
}

// WithClock overrides the store clock; test hook.
func WithClock(now func() time.Time) SQLOption {
	return func(s *SQLStore) { s.now = now }
}

func NewSQLStore(db *sql.DB, opts ...SQLOption) *SQLStore {
	s := &SQLStore{db: db, eval: grading.NewEvaluator(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *SQLStore) PutQuestion(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = s.now().Unix()
	}
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return Question{}, err
	}
	cj, err := json.Marshal(q.CorrectAnswer)
	if err != nil {
		return Question{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO questions
		(id,text,type,subject,topic,difficulty,marks,negative_marks,options_json,correct_json,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET text=EXCLUDED.text, type=EXCLUDED.type, subject=EXCLUDED.subject,
			topic=EXCLUDED.topic, difficulty=EXCLUDED.difficulty, marks=EXCLUDED.marks,
			negative_marks=EXCLUDED.negative_marks, options_json=EXCLUDED.options_json,
			correct_json=EXCLUDED.correct_json`,
		q.ID, q.Text, q.Type, q.Subject, q.Topic, q.Difficulty, q.Marks, q.NegativeMarks,
		string(oj), string(cj), q.CreatedBy, q.CreatedAt)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	return scanQuestion(s.db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM questions WHERE id=$1`, id))
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, limit, offset int) ([]Question, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionCols+` FROM questions ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) (Exam, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = s.now().Unix()
	}
	// total_marks is derived from the referenced questions, never trusted
	// from the caller.
	qs, err := s.questionsByID(ctx, e.QuestionIDs)
	if err != nil {
		return Exam{}, err
	}
	var total float64
	for _, q := range qs {
		total += q.Marks
	}
	e.TotalMarks = total
	e.Questions = nil
	qj, err := json.Marshal(e.QuestionIDs)
	if err != nil {
		return Exam{}, err
	}
	sj, err := json.Marshal(e.Settings)
	if err != nil {
		return Exam{}, err
	}
	ej, err := json.Marshal(e.EligibleStudents)
	if err != nil {
		return Exam{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams
		(id,title,description,subject,created_by,question_ids_json,total_marks,duration_min,passing_marks,
		 start_date,end_date,settings_json,eligible_json,is_published,is_active,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
			subject=EXCLUDED.subject, question_ids_json=EXCLUDED.question_ids_json,
			total_marks=EXCLUDED.total_marks, duration_min=EXCLUDED.duration_min,
			passing_marks=EXCLUDED.passing_marks, start_date=EXCLUDED.start_date, end_date=EXCLUDED.end_date,
			settings_json=EXCLUDED.settings_json, eligible_json=EXCLUDED.eligible_json,
			is_published=EXCLUDED.is_published, is_active=EXCLUDED.is_active`,
		e.ID, e.Title, e.Description, e.Subject, e.CreatedBy, string(qj), total, e.DurationMin, e.PassingMarks,
		e.StartDate.Unix(), e.EndDate.Unix(), string(sj), string(ej), boolInt(e.IsPublished), boolInt(e.IsActive), e.CreatedAt)
	if err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	return s.getExam(ctx, s.db, id)
}

func (s *SQLStore) GetExamForStudent(ctx context.Context, id string) (Exam, error) {
	e, err := s.getExam(ctx, s.db, id)
	if err != nil {
		return Exam{}, err
	}
	return e.StripAnswerKeys(), nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) getExam(ctx context.Context, db queryer, id string) (Exam, error) {
	e, err := scanExam(db.QueryRowContext(ctx, `SELECT `+examCols+` FROM exams WHERE id=$1`, id))
	if err != nil {
		return Exam{}, err
	}
	e.Questions, err = s.questionsByIDQ(ctx, db, e.QuestionIDs)
	if err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) questionsByID(ctx context.Context, ids []string) ([]Question, error) {
	return s.questionsByIDQ(ctx, s.db, ids)
}

// questionsByIDQ loads questions one by one, preserving exam order. Exams are
// small enough that the N queries have never shown up in profiles.
func (s *SQLStore) questionsByIDQ(ctx context.Context, db queryer, ids []string) ([]Question, error) {
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		q, err := scanQuestion(db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM questions WHERE id=$1`, id))
		if err != nil {
			if errors.Is(err, ErrQuestionNotFound) {
				return nil, ErrQuestionNotFound
			}
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *SQLStore) ListExams(ctx context.Context, opts ExamListOpts) ([]Exam, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	where := []string{}
	args := []any{}
	n := 0
	add := func(cond string, val any) {
		n++
		where = append(where, strings.Replace(cond, "?", placeholder(n), 1))
		args = append(args, val)
	}
	if opts.Subject != "" {
		add("subject=?", opts.Subject)
	}
	if opts.ViewerRole == "teacher" {
		add("created_by=?", opts.ViewerID)
	}
	if opts.ViewerRole == "student" {
		add("is_published=?", 1)
		add("is_active=?", 1)
	}
	q := `SELECT ` + examCols + ` FROM exams`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id LIMIT ` + placeholder(n+1) + ` OFFSET ` + placeholder(n+2)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	now := s.now()
	out := []Exam{}
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		if opts.ViewerRole == "student" {
			// Window and eligibility cut client-side; they live in JSON
			// columns the WHERE clause cannot reach portably.
			if !e.AvailableTo(opts.ViewerID, now) {
				continue
			}
		}
		e.Questions, err = s.questionsByID(ctx, e.QuestionIDs)
		if err != nil {
			return nil, err
		}
		if opts.ViewerRole == "student" {
			e = e.StripAnswerKeys()
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// StartAttempt re-runs the attempt policy and inserts the new submission in
// one transaction. The UNIQUE(student_id, exam_id, attempt_number) index is
// the backstop when two starts race past the count: the loser's insert fails
// and it resumes the winner's in-progress attempt instead.
func (s *SQLStore) StartAttempt(ctx context.Context, examID, studentID string) (Submission, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Submission{}, err
	}
	defer tx.Rollback()

	e, err := s.getExam(ctx, tx, examID)
	if err != nil {
		return Submission{}, err
	}
	var submitted int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE exam_id=$1 AND student_id=$2 AND is_submitted=1`,
		examID, studentID).Scan(&submitted); err != nil {
		return Submission{}, err
	}
	v := CanStartAttempt(e, studentID, submitted, s.now())
	if !v.Allowed {
		return Submission{}, &PolicyError{Reason: v.Reason}
	}

	// Resume an abandoned attempt holding the same number.
	existing, err := scanSubmission(tx.QueryRowContext(ctx,
		`SELECT `+submissionCols+` FROM submissions
		 WHERE exam_id=$1 AND student_id=$2 AND attempt_number=$3 AND is_submitted=0`,
		examID, studentID, v.NextAttemptNumber))
	if err == nil {
		if cerr := tx.Commit(); cerr != nil {
			return Submission{}, cerr
		}
		return existing, nil
	}
	if !errors.Is(err, ErrSubmissionNotFound) {
		return Submission{}, err
	}

	sub := Submission{
		ID:            uuid.NewString(),
		ExamID:        examID,
		StudentID:     studentID,
		AttemptNumber: v.NextAttemptNumber,
		Answers:       []Answer{},
		StartTime:     s.now(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO submissions (id,exam_id,student_id,attempt_number,answers_json,start_time,is_submitted)
		 VALUES ($1,$2,$3,$4,'[]',$5,0)`,
		sub.ID, examID, studentID, sub.AttemptNumber, sub.StartTime.Unix()); err != nil {
		if isUniqueViolation(err) {
			// Lost the race; hand back the attempt the winner created.
			_ = tx.Rollback()
			return s.resumeInProgress(ctx, examID, studentID, v.NextAttemptNumber)
		}
		return Submission{}, err
	}
	if err := tx.Commit(); err != nil {
		return Submission{}, err
	}
	s.appendEvent(ctx, syncx.EventAttemptStarted, sub.ID, sub)
	return sub, nil
}

func (s *SQLStore) resumeInProgress(ctx context.Context, examID, studentID string, attemptNumber int) (Submission, error) {
	return scanSubmission(s.db.QueryRowContext(ctx,
		`SELECT `+submissionCols+` FROM submissions
		 WHERE exam_id=$1 AND student_id=$2 AND attempt_number=$3 AND is_submitted=0`,
		examID, studentID, attemptNumber))
}

func (s *SQLStore) RecordAnswer(ctx context.Context, submissionID, studentID, questionID string, resp grading.Response, timeTakenSec int) (Submission, error) {
	sub, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if sub.StudentID != studentID {
		return Submission{}, ErrNotOwner
	}
	q, err := s.GetQuestion(ctx, questionID)
	if err != nil {
		return Submission{}, err
	}
	if err := recordAnswer(s.eval, &sub, q, resp, timeTakenSec); err != nil {
		return Submission{}, err
	}
	buf, err := json.Marshal(sub.Answers)
	if err != nil {
		return Submission{}, err
	}
	// The is_submitted guard closes the window between the read above and a
	// racing finalize: answers never land on a submitted attempt.
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET answers_json=$1 WHERE id=$2 AND is_submitted=0`,
		string(buf), submissionID)
	if err != nil {
		return Submission{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Submission{}, ErrAlreadySubmitted
	}
	return s.GetSubmission(ctx, submissionID)
}

func (s *SQLStore) Finalize(ctx context.Context, submissionID, studentID string) (Submission, error) {
	return s.finalize(ctx, submissionID, studentID, false)
}

func (s *SQLStore) AutoFinalize(ctx context.Context, submissionID string) (Submission, error) {
	return s.finalize(ctx, submissionID, "", true)
}

func (s *SQLStore) finalize(ctx context.Context, submissionID, studentID string, auto bool) (Submission, error) {
	sub, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if !auto && sub.StudentID != studentID {
		return Submission{}, ErrNotOwner
	}
	if sub.IsSubmitted {
		return Submission{}, ErrAlreadySubmitted
	}
	e, err := s.getExam(ctx, s.db, sub.ExamID)
	if err != nil {
		return Submission{}, err
	}
	finalize(&sub, e, s.now(), auto)
	buf, err := json.Marshal(sub.Answers)
	if err != nil {
		return Submission{}, err
	}
	// Compare-and-swap on is_submitted: exactly one of a manual submit, a
	// retried submit and the expiry sweep may flip it.
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET is_submitted=1, auto_submitted=$1, answers_json=$2, end_time=$3,
			submitted_at=$3, time_taken_min=$4, total_marks=$5, marks_obtained=$6, percentage=$7,
			grade=$8, is_passed=$9, is_graded=$10
		 WHERE id=$11 AND is_submitted=0`,
		boolInt(auto), string(buf), sub.SubmittedAt.Unix(), sub.TimeTakenMin,
		sub.TotalMarks, sub.MarksObtained, sub.Percentage, sub.Grade,
		boolInt(sub.IsPassed), boolInt(sub.IsGraded), submissionID)
	if err != nil {
		return Submission{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Submission{}, ErrAlreadySubmitted
	}
	typ := syncx.EventAttemptSubmitted
	if auto {
		typ = syncx.EventAttemptAutoSubmitted
	}
	s.appendEvent(ctx, typ, sub.ID, sub)
	return sub, nil
}

func (s *SQLStore) GradeAnswer(ctx context.Context, submissionID, questionID string, marks float64, feedback, gradedBy string) (Submission, error) {
	sub, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	e, err := s.getExam(ctx, s.db, sub.ExamID)
	if err != nil {
		return Submission{}, err
	}
	if err := gradeAnswer(&sub, e, questionID, marks, feedback, gradedBy, s.now()); err != nil {
		return Submission{}, err
	}
	buf, err := json.Marshal(sub.Answers)
	if err != nil {
		return Submission{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE submissions SET answers_json=$1, marks_obtained=$2, percentage=$3, grade=$4,
			is_passed=$5, is_graded=$6, graded_by=$7, graded_at=$8
		 WHERE id=$9 AND is_submitted=1`,
		string(buf), sub.MarksObtained, sub.Percentage, sub.Grade,
		boolInt(sub.IsPassed), boolInt(sub.IsGraded), gradedBy, sub.GradedAt.Unix(), submissionID)
	if err != nil {
		return Submission{}, err
	}
	s.appendEvent(ctx, syncx.EventAnswerGraded, sub.ID, map[string]any{
		"question_id": questionID, "marks": marks, "graded_by": gradedBy,
	})
	return sub, nil
}

func (s *SQLStore) GetSubmission(ctx context.Context, id string) (Submission, error) {
	return scanSubmission(s.db.QueryRowContext(ctx, `SELECT `+submissionCols+` FROM submissions WHERE id=$1`, id))
}

func (s *SQLStore) ListSubmissions(ctx context.Context, opts SubmissionListOpts) ([]Submission, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	where := []string{}
	args := []any{}
	n := 0
	add := func(cond string, val any) {
		n++
		where = append(where, strings.Replace(cond, "?", placeholder(n), 1))
		args = append(args, val)
	}
	if opts.ExamID != "" {
		add("exam_id=?", opts.ExamID)
	}
	if opts.StudentID != "" {
		add("student_id=?", opts.StudentID)
	}
	if opts.Submitted != nil {
		add("is_submitted=?", boolInt(*opts.Submitted))
	}
	if opts.Graded != nil {
		add("is_graded=?", boolInt(*opts.Graded))
	}
	q := `SELECT ` + submissionCols + ` FROM submissions`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY start_time DESC, id LIMIT ` + placeholder(n+1) + ` OFFSET ` + placeholder(n+2)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListExpired(ctx context.Context, now time.Time) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColsPrefixed("s")+` FROM submissions s
		 JOIN exams e ON e.id = s.exam_id
		 WHERE s.is_submitted=0 AND e.duration_min > 0 AND s.start_time + e.duration_min*60 <= $1`,
		now.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) ExamStats(ctx context.Context, examID string) (ExamStats, error) {
	if _, err := scanExam(s.db.QueryRowContext(ctx, `SELECT `+examCols+` FROM exams WHERE id=$1`, examID)); err != nil {
		return ExamStats{}, err
	}
	var st ExamStats
	var avg, hi, lo sql.NullFloat64
	var passed int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(percentage),0), COALESCE(MAX(percentage),0), COALESCE(MIN(percentage),0),
			COALESCE(SUM(is_passed),0)
		 FROM submissions WHERE exam_id=$1 AND is_submitted=1`,
		examID).Scan(&st.TotalSubmissions, &avg, &hi, &lo, &passed)
	if err != nil {
		return ExamStats{}, err
	}
	st.AverageScore = avg.Float64
	st.HighestScore = hi.Float64
	st.LowestScore = lo.Float64
	if st.TotalSubmissions > 0 {
		st.PassRate = float64(passed) / float64(st.TotalSubmissions) * 100
	}
	return st, nil
}

func (s *SQLStore) appendEvent(ctx context.Context, typ, key string, payload any) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = s.events.Append(ctx, syncx.Event{Type: typ, Key: key, DataJSON: string(data)})
}

// --- row mapping ---

const questionCols = `id,text,type,subject,topic,difficulty,marks,negative_marks,options_json,correct_json,created_by,created_at`

const examCols = `id,title,description,subject,created_by,question_ids_json,total_marks,duration_min,passing_marks,start_date,end_date,settings_json,eligible_json,is_published,is_active,created_at`

const submissionCols = `id,exam_id,student_id,attempt_number,answers_json,start_time,end_time,submitted_at,time_taken_min,is_submitted,auto_submitted,total_marks,marks_obtained,percentage,grade,is_passed,is_graded,graded_by,graded_at`

func submissionColsPrefixed(alias string) string {
	cols := strings.Split(submissionCols, ",")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ",")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(r rowScanner) (Question, error) {
	var q Question
	var oj, cj string
	err := r.Scan(&q.ID, &q.Text, &q.Type, &q.Subject, &q.Topic, &q.Difficulty, &q.Marks, &q.NegativeMarks,
		&oj, &cj, &q.CreatedBy, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrQuestionNotFound
		}
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(cj), &q.CorrectAnswer); err != nil {
		return Question{}, err
	}
	return q, nil
}

func scanExam(r rowScanner) (Exam, error) {
	var e Exam
	var qj, sj, ej string
	var start, end int64
	var pub, act int
	err := r.Scan(&e.ID, &e.Title, &e.Description, &e.Subject, &e.CreatedBy, &qj, &e.TotalMarks,
		&e.DurationMin, &e.PassingMarks, &start, &end, &sj, &ej, &pub, &act, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	e.StartDate = time.Unix(start, 0)
	e.EndDate = time.Unix(end, 0)
	e.IsPublished = pub != 0
	e.IsActive = act != 0
	if err := json.Unmarshal([]byte(qj), &e.QuestionIDs); err != nil {
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(sj), &e.Settings); err != nil {
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(ej), &e.EligibleStudents); err != nil {
		return Exam{}, err
	}
	return e, nil
}

func scanSubmission(r rowScanner) (Submission, error) {
	var sub Submission
	var aj string
	var start int64
	var end, submittedAt, gradedAt sql.NullInt64
	var grade, gradedBy sql.NullString
	var isSub, autoSub, passed, graded int
	err := r.Scan(&sub.ID, &sub.ExamID, &sub.StudentID, &sub.AttemptNumber, &aj, &start,
		&end, &submittedAt, &sub.TimeTakenMin, &isSub, &autoSub,
		&sub.TotalMarks, &sub.MarksObtained, &sub.Percentage, &grade, &passed, &graded, &gradedBy, &gradedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, err
	}
	sub.StartTime = time.Unix(start, 0)
	if end.Valid {
		t := time.Unix(end.Int64, 0)
		sub.EndTime = &t
	}
	if submittedAt.Valid {
		t := time.Unix(submittedAt.Int64, 0)
		sub.SubmittedAt = &t
	}
	if gradedAt.Valid {
		t := time.Unix(gradedAt.Int64, 0)
		sub.GradedAt = &t
	}
	sub.Grade = grade.String
	sub.GradedBy = gradedBy.String
	sub.IsSubmitted = isSub != 0
	sub.AutoSubmitted = autoSub != 0
	sub.IsPassed = passed != 0
	sub.IsGraded = graded != 0
	if err := json.Unmarshal([]byte(aj), &sub.Answers); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value violates unique constraint") // postgres
}
