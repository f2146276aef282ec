package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"makerspace/internal/apperr"
	"makerspace/internal/audit"
	"makerspace/internal/certification"
	"makerspace/internal/events"
	"makerspace/internal/user"
	"makerspace/pkg/metrics"
)

type Store interface {
	Get(ctx context.Context, id string) (*Course, error)
	List(ctx context.Context) ([]Course, error)
	QuizForCourse(ctx context.Context, courseID string) (*Quiz, error)
	RecordAttempt(ctx context.Context, a *Attempt) error
	AttemptsByUser(ctx context.Context, userID string) ([]Attempt, error)
}

type Users interface {
	Get(ctx context.Context, id string) (*user.User, error)
	GrantCertification(ctx context.Context, userID, machineID string) (*user.User, error)
}

type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

type Service struct {
	Courses Store
	Users   Users
	Audit   Auditor
	Events  *events.Emitter
	Metrics *metrics.Metrics
	Log     logrus.FieldLogger
}

// Outcome is the result of a quiz submission. RedirectTo names the course
// the user must take first when a passing attempt could not be certified.
type Outcome struct {
	Attempt    Attempt    `json:"attempt"`
	User       *user.User `json:"user,omitempty"`
	RedirectTo string     `json:"redirectTo,omitempty"`
}

func (s Service) List(ctx context.Context) ([]Course, error) {
	return s.Courses.List(ctx)
}

// Detail returns the course and its quiz. A course without a quiz is valid.
func (s Service) Detail(ctx context.Context, courseID string) (*Detail, error) {
	c, err := s.Courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	d := &Detail{Course: *c}
	q, err := s.Courses.QuizForCourse(ctx, courseID)
	switch {
	case err == nil:
		d.Quiz = q
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}
	return d, nil
}

func (s Service) Attempts(ctx context.Context, userID string) ([]Attempt, error) {
	return s.Courses.AttemptsByUser(ctx, userID)
}

// SubmitQuiz grades the answers and records the attempt. A pass grants the
// quiz's machine certification unless the safety course is missing, in
// which case the attempt is kept, nothing is granted and the returned error
// is certification.ErrSafetyCourseRequired.
func (s Service) SubmitQuiz(ctx context.Context, userID, courseID string, answers map[string]int) (*Outcome, error) {
	u, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Courses.Get(ctx, courseID); err != nil {
		return nil, err
	}
	quiz, err := s.Courses.QuizForCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("QUIZ_MISSING", "this course has no quiz")
		}
		return nil, err
	}
	score, err := Score(*quiz, answers)
	if err != nil {
		return nil, err
	}

	log := s.Log.WithFields(logrus.Fields{"user_id": u.ID, "quiz_id": quiz.ID, "machine_id": quiz.MachineID})
	attempt := Attempt{UserID: u.ID, QuizID: quiz.ID, Score: score, Passed: quiz.Passes(score)}
	out := &Outcome{User: u}

	alreadyHeld := u.HasCertification(quiz.MachineID)
	var grantErr error
	if attempt.Passed {
		grantErr = certification.CheckGrant(*u, quiz.MachineID)
		if grantErr == nil {
			granted, err := s.Users.GrantCertification(ctx, u.ID, quiz.MachineID)
			switch {
			case err == nil:
				attempt.Certified = true
				out.User = granted
			case errors.Is(err, apperr.ErrConflict):
				grantErr = certification.ErrSafetyCourseRequired
			default:
				return nil, fmt.Errorf("grant certification: %w", err)
			}
		}
		if grantErr != nil {
			out.RedirectTo = user.SafetyCourseID
			log.WithError(grantErr).Info("passing attempt not certified")
		}
	}

	if err := s.Courses.RecordAttempt(ctx, &attempt); err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	out.Attempt = attempt

	newGrant := attempt.Certified && !alreadyHeld
	s.observe(attempt, newGrant)
	s.Events.Emit(ctx, events.TopicQuizAttempted, u.ID, attempt)
	if newGrant {
		s.recordGrant(ctx, u.ID, u.ID, quiz.MachineID, "quiz")
	}
	log.WithFields(logrus.Fields{"score": score.String(), "passed": attempt.Passed, "certified": attempt.Certified}).Info("quiz submitted")

	if grantErr != nil {
		return out, grantErr
	}
	return out, nil
}

func (s Service) observe(a Attempt, newGrant bool) {
	if s.Metrics == nil {
		return
	}
	result := "failed"
	switch {
	case a.Certified:
		result = "certified"
	case a.Passed:
		result = "passed"
	}
	s.Metrics.QuizAttempts.WithLabelValues(result).Inc()
	if newGrant {
		s.Metrics.CertificationsGranted.Inc()
	}
}

func (s Service) recordGrant(ctx context.Context, actor, userID, machineID, via string) {
	meta := map[string]string{"machineId": machineID, "via": via}
	if s.Audit != nil {
		if err := s.Audit.Record(ctx, audit.Entry{
			Actor:      actor,
			Action:     "GRANT_CERTIFICATION",
			EntityType: "user",
			EntityID:   userID,
			Metadata:   meta,
		}); err != nil {
			s.Log.WithError(err).Warn("audit grant failed")
		}
	}
	s.Events.Emit(ctx, events.TopicCertificationGranted, actor, map[string]string{
		"userId": userID, "machineId": machineID, "via": via,
	})
}
