package user

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// SafetyCourseID is the designated safety course / cabinet. Its certification
// gates every other certification.
const SafetyCourseID = "safety-course"

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	Certifications []string  `json:"certifications"`
	PasswordHash   string    `json:"-"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Patch is a partial profile update. Nil fields are left untouched.
type Patch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleStandard
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasCertification reports membership of id in the certification set.
// Blank entries never match.
func (u User) HasCertification(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	for _, c := range u.Certifications {
		if strings.TrimSpace(c) == id {
			return true
		}
	}
	return false
}

func (u User) HasSafetyCourse() bool {
	return u.HasCertification(SafetyCourseID)
}

// WithCertification returns the certification set with id appended once.
// Certifications are append-only; existing entries are kept in order.
func WithCertification(certs []string, id string) []string {
	for _, c := range certs {
		if c == id {
			return certs
		}
	}
	out := make([]string, 0, len(certs)+1)
	out = append(out, certs...)
	return append(out, id)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
