// Package memory is an in-process implementation of every repository. It
// backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"sync"
	"time"

	"makerspace/internal/audit"
	"makerspace/internal/booking"
	"makerspace/internal/course"
	"makerspace/internal/machine"
	"makerspace/internal/user"
)

// Store holds all state behind one lock, so CreateChecked sees the machine
// and its bookings consistently.
type Store struct {
	mu sync.RWMutex

	users    map[string]user.User
	byEmail  map[string]string
	machines map[string]machine.Machine
	bookings map[string]booking.Booking
	courses  map[string]course.Course
	quizzes  map[string]course.Quiz // by course id
	attempts []course.Attempt
	audit    []audit.Entry

	now func() time.Time
	seq int64
}

func New() *Store {
	return &Store{
		users:    make(map[string]user.User),
		byEmail:  make(map[string]string),
		machines: make(map[string]machine.Machine),
		bookings: make(map[string]booking.Booking),
		courses:  make(map[string]course.Course),
		quizzes:  make(map[string]course.Quiz),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() *Users       { return &Users{s: s} }
func (s *Store) Machines() *Machines { return &Machines{s: s} }
func (s *Store) Bookings() *Bookings { return &Bookings{s: s} }
func (s *Store) Courses() *Courses   { return &Courses{s: s} }
func (s *Store) Audit() *Audit       { return &Audit{s: s} }

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
