package course

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"makerspace/pkg/db"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// storedQuestion is the jsonb shape; unlike Question it keeps the answer.
type storedQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

func encodeQuestions(qs []Question) ([]byte, error) {
	out := make([]storedQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, storedQuestion(q))
	}
	return json.Marshal(out)
}

func decodeQuestions(b []byte) ([]Question, error) {
	var in []storedQuestion
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	out := make([]Question, 0, len(in))
	for _, q := range in {
		out = append(out, Question(q))
	}
	return out, nil
}

const courseColumns = `id, title, description, machine_id, created_at`

func scanCourse(row pgx.Row) (*Course, error) {
	var c Course
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.MachineID, &c.CreatedAt); err != nil {
		return nil, db.Translate(err)
	}
	return &c, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Course, error) {
	q := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	return scanCourse(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) List(ctx context.Context) ([]Course, error) {
	q := `SELECT ` + courseColumns + ` FROM courses ORDER BY (machine_id = 'safety-course') DESC, title ASC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repository) QuizForCourse(ctx context.Context, courseID string) (*Quiz, error) {
	const q = `
SELECT id, course_id, machine_id, passing_score::text, questions
FROM quizzes
WHERE course_id = $1
`
	var quiz Quiz
	var score string
	var raw []byte
	if err := r.db.QueryRow(ctx, q, courseID).Scan(&quiz.ID, &quiz.CourseID, &quiz.MachineID, &score, &raw); err != nil {
		return nil, db.Translate(err)
	}
	d, err := decimal.NewFromString(score)
	if err != nil {
		return nil, fmt.Errorf("passing score %q: %w", score, err)
	}
	quiz.PassingScore = d
	if quiz.Questions, err = decodeQuestions(raw); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Create stores a course and, when quiz is non-nil, its quiz.
func (r *Repository) Create(ctx context.Context, c *Course, quiz *Quiz) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const qc = `
INSERT INTO courses (id, title, description, machine_id)
VALUES ($1, $2, $3, $4)
RETURNING created_at
`
		if err := tx.QueryRow(ctx, qc, c.ID, c.Title, c.Description, c.MachineID).Scan(&c.CreatedAt); err != nil {
			return db.Translate(err)
		}
		if quiz == nil {
			return nil
		}
		if quiz.ID == "" {
			quiz.ID = uuid.NewString()
		}
		quiz.CourseID = c.ID
		quiz.MachineID = c.MachineID
		qs, err := encodeQuestions(quiz.Questions)
		if err != nil {
			return err
		}
		const qq = `
INSERT INTO quizzes (id, course_id, machine_id, passing_score, questions)
VALUES ($1, $2, $3, $4::numeric, $5::jsonb)
`
		_, err = tx.Exec(ctx, qq, quiz.ID, quiz.CourseID, quiz.MachineID, quiz.Threshold().String(), string(qs))
		return db.Translate(err)
	})
}

func (r *Repository) RecordAttempt(ctx context.Context, a *Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	const q = `
INSERT INTO quiz_attempts (id, user_id, quiz_id, score, passed, certified)
VALUES ($1, $2, $3, $4::numeric, $5, $6)
RETURNING submitted_at
`
	err := r.db.QueryRow(ctx, q, a.ID, a.UserID, a.QuizID, a.Score.StringFixed(ScoreScale), a.Passed, a.Certified).
		Scan(&a.SubmittedAt)
	return db.Translate(err)
}

func (r *Repository) AttemptsByUser(ctx context.Context, userID string) ([]Attempt, error) {
	const q = `
SELECT id, user_id, quiz_id, score::text, passed, certified, submitted_at
FROM quiz_attempts
WHERE user_id = $1
ORDER BY submitted_at DESC
`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var score string
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuizID, &score, &a.Passed, &a.Certified, &a.SubmittedAt); err != nil {
			return nil, err
		}
		if a.Score, err = decimal.NewFromString(score); err != nil {
			return nil, fmt.Errorf("attempt score %q: %w", score, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
