// Package seed loads the demo catalogue. Loading is idempotent: entries that
// already exist are left untouched.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"makerspace/internal/apperr"
	"makerspace/internal/course"
	"makerspace/internal/machine"
	"makerspace/internal/user"
)

type Machines interface {
	Create(ctx context.Context, m *machine.Machine) error
}

type Courses interface {
	Create(ctx context.Context, c *course.Course, q *course.Quiz) error
}

type Users interface {
	Create(ctx context.Context, u *user.User) error
}

type Stores struct {
	Machines Machines
	Courses  Courses
	Users    Users
}

type Admin struct {
	Email    string
	Password string
}

func yesNo() []string { return []string{"yes", "no"} }

// Catalogue returns the demo machines with one course and quiz each.
func Catalogue() ([]machine.Machine, []course.Course, map[string]course.Quiz) {
	machines := []machine.Machine{
		{ID: user.SafetyCourseID, Name: "Workshop Safety", Category: machine.CategorySafety, RequiresCertification: true},
		{ID: "laser-cutter", Name: "Laser Cutter", Category: machine.CategoryMachine, RequiresCertification: true, Bookable: true},
		{ID: "cnc-router", Name: "CNC Router", Category: machine.CategoryMachine, RequiresCertification: true, Bookable: true},
		{ID: "3d-printer", Name: "3D Printer", Category: machine.CategoryMachine, RequiresCertification: true, Bookable: true},
		{ID: "soldering-station", Name: "Soldering Station", Category: machine.CategoryEquipment, RequiresCertification: false, Bookable: true},
	}
	courses := []course.Course{
		{ID: "safety-101", Title: "Workshop Safety Induction", Description: "Required before any machine course.", MachineID: user.SafetyCourseID},
		{ID: "laser-101", Title: "Laser Cutter Basics", Description: "Materials, focus and fire safety.", MachineID: "laser-cutter"},
		{ID: "cnc-101", Title: "CNC Router Basics", Description: "Workholding, feeds and speeds.", MachineID: "cnc-router"},
		{ID: "printing-101", Title: "3D Printing Basics", Description: "Slicing, bed adhesion and filament.", MachineID: "3d-printer"},
	}
	quizzes := map[string]course.Quiz{
		"safety-101": {PassingScore: decimal.NewFromInt(100), Questions: []course.Question{
			{ID: "exits", Prompt: "Do you know where the emergency exits are?", Options: yesNo(), Answer: 0},
			{ID: "alone", Prompt: "May you operate machines alone after hours?", Options: yesNo(), Answer: 1},
			{ID: "ppe", Prompt: "Is eye protection required in the workshop?", Options: yesNo(), Answer: 0},
		}},
		"laser-101": {PassingScore: decimal.NewFromInt(80), Questions: []course.Question{
			{ID: "pvc", Prompt: "Can PVC be cut on the laser?", Options: yesNo(), Answer: 1},
			{ID: "unattended", Prompt: "May a running job be left unattended?", Options: yesNo(), Answer: 1},
			{ID: "extract", Prompt: "Must the extractor run during a job?", Options: yesNo(), Answer: 0},
		}},
		"cnc-101": {PassingScore: decimal.NewFromInt(80), Questions: []course.Question{
			{ID: "clamp", Prompt: "Must stock be clamped before cutting?", Options: yesNo(), Answer: 0},
			{ID: "gloves", Prompt: "Should gloves be worn near the spindle?", Options: yesNo(), Answer: 1},
		}},
		"printing-101": {PassingScore: decimal.NewFromInt(50), Questions: []course.Question{
			{ID: "bed", Prompt: "Is the print bed hot during printing?", Options: yesNo(), Answer: 0},
			{ID: "nozzle", Prompt: "Can the nozzle be touched while printing?", Options: yesNo(), Answer: 1},
		}},
	}
	return machines, courses, quizzes
}

func ignoreExisting(err error) error {
	if errors.Is(err, apperr.ErrConflict) {
		return nil
	}
	return err
}

// Demo loads the catalogue and, when admin.Password is set, an admin
// account holding the safety course.
func Demo(ctx context.Context, st Stores, admin Admin, log logrus.FieldLogger) error {
	machines, courses, quizzes := Catalogue()
	for i := range machines {
		if err := ignoreExisting(st.Machines.Create(ctx, &machines[i])); err != nil {
			return fmt.Errorf("seed machine %s: %w", machines[i].ID, err)
		}
	}
	for i := range courses {
		var q *course.Quiz
		if quiz, ok := quizzes[courses[i].ID]; ok {
			q = &quiz
		}
		if err := ignoreExisting(st.Courses.Create(ctx, &courses[i], q)); err != nil {
			return fmt.Errorf("seed course %s: %w", courses[i].ID, err)
		}
	}

	if admin.Password == "" {
		log.Info("demo catalogue loaded; no admin password set, skipping admin account")
		return nil
	}
	hash, err := user.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	err = st.Users.Create(ctx, &user.User{
		Name:           "Admin",
		Email:          admin.Email,
		Role:           user.RoleAdmin,
		Certifications: []string{user.SafetyCourseID},
		PasswordHash:   hash,
		Active:         true,
	})
	if err := ignoreExisting(err); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.WithField("admin", admin.Email).Info("demo catalogue loaded")
	return nil
}
