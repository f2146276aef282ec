package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"makerspace/internal/apperr"
	"makerspace/internal/course"
	"makerspace/internal/user"
)

type Courses struct{ s *Store }

func (r *Courses) Get(_ context.Context, id string) (*course.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, fmt.Errorf("course %s: %w", id, apperr.ErrNotFound)
	}
	return &c, nil
}

// List puts the safety course first, then sorts by title.
func (r *Courses) List(_ context.Context) ([]course.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]course.Course, 0, len(r.s.courses))
	for _, c := range r.s.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].MachineID == user.SafetyCourseID, out[j].MachineID == user.SafetyCourseID
		if si != sj {
			return si
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func (r *Courses) QuizForCourse(_ context.Context, courseID string) (*course.Quiz, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q, ok := r.s.quizzes[courseID]
	if !ok {
		return nil, fmt.Errorf("quiz for course %s: %w", courseID, apperr.ErrNotFound)
	}
	q.Questions = append([]course.Question(nil), q.Questions...)
	return &q, nil
}

func (r *Courses) Create(_ context.Context, c *course.Course, quiz *course.Quiz) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.courses[c.ID]; taken {
		return fmt.Errorf("course %s: %w", c.ID, apperr.ErrConflict)
	}
	if _, ok := r.s.machines[c.MachineID]; !ok {
		return fmt.Errorf("machine %s: %w", c.MachineID, apperr.ErrNotFound)
	}
	c.CreatedAt = r.s.now()
	r.s.courses[c.ID] = *c
	if quiz != nil {
		if quiz.ID == "" {
			quiz.ID = uuid.NewString()
		}
		quiz.CourseID = c.ID
		quiz.MachineID = c.MachineID
		quiz.PassingScore = quiz.Threshold()
		r.s.quizzes[c.ID] = *quiz
	}
	return nil
}

func (r *Courses) RecordAttempt(_ context.Context, a *course.Attempt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.SubmittedAt = r.s.now()
	r.s.attempts = append(r.s.attempts, *a)
	return nil
}

// AttemptsByUser returns newest first.
func (r *Courses) AttemptsByUser(_ context.Context, userID string) ([]course.Attempt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []course.Attempt{}
	for i := len(r.s.attempts) - 1; i >= 0; i-- {
		if r.s.attempts[i].UserID == userID {
			out = append(out, r.s.attempts[i])
		}
	}
	return out, nil
}
