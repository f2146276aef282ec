package course

import (
	"time"

	"github.com/shopspring/decimal"
)

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MachineID   string    `json:"machineId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Question.Answer is the index of the correct option. It is never sent to
// clients.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"-"`
}

type Quiz struct {
	ID           string          `json:"id"`
	CourseID     string          `json:"courseId"`
	MachineID    string          `json:"machineId"`
	PassingScore decimal.Decimal `json:"passingScore"`
	Questions    []Question      `json:"questions"`
}

type Attempt struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	QuizID      string          `json:"quizId"`
	Score       decimal.Decimal `json:"score"`
	Passed      bool            `json:"passed"`
	Certified   bool            `json:"certified"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

// Detail is a course with its quiz, as shown to learners.
type Detail struct {
	Course
	Quiz *Quiz `json:"quiz,omitempty"`
}
