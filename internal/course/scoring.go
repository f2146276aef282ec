package course

import (
	"github.com/shopspring/decimal"

	"makerspace/internal/apperr"
)

const ScoreScale int32 = 2

var hundred = decimal.NewFromInt(100)

// DefaultPassingScore applies when a quiz has no threshold configured.
var DefaultPassingScore = decimal.NewFromInt(80)

// Score grades answers (question id -> chosen option index) as a percentage
// rounded half-up to two decimals. Unanswered questions count as wrong;
// answers to unknown questions are ignored.
func Score(q Quiz, answers map[string]int) (decimal.Decimal, error) {
	if len(q.Questions) == 0 {
		return decimal.Zero, apperr.Validation("QUIZ_EMPTY", "quiz has no questions")
	}
	correct := 0
	for _, qu := range q.Questions {
		if a, ok := answers[qu.ID]; ok && a == qu.Answer {
			correct++
		}
	}
	pct := decimal.NewFromInt(int64(correct)).Mul(hundred).Div(decimal.NewFromInt(int64(len(q.Questions))))
	return pct.Round(ScoreScale), nil
}

func (q Quiz) Threshold() decimal.Decimal {
	if q.PassingScore.LessThanOrEqual(decimal.Zero) || q.PassingScore.GreaterThan(hundred) {
		return DefaultPassingScore
	}
	return q.PassingScore
}

func (q Quiz) Passes(score decimal.Decimal) bool {
	return score.GreaterThanOrEqual(q.Threshold())
}

// ValidateQuiz checks that every question has options and a valid answer.
func ValidateQuiz(q Quiz) error {
	if len(q.Questions) == 0 {
		return apperr.Validation("QUIZ_EMPTY", "quiz has no questions")
	}
	seen := make(map[string]bool, len(q.Questions))
	for _, qu := range q.Questions {
		if qu.ID == "" || seen[qu.ID] {
			return apperr.Validation("QUIZ_QUESTION_ID_INVALID", "question ids must be unique and non-empty")
		}
		seen[qu.ID] = true
		if len(qu.Options) < 2 {
			return apperr.Validation("QUIZ_OPTIONS_INVALID", "each question needs at least two options")
		}
		if qu.Answer < 0 || qu.Answer >= len(qu.Options) {
			return apperr.Validation("QUIZ_ANSWER_INVALID", "answer index out of range")
		}
	}
	return nil
}
