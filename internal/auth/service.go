package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"makerspace/internal/apperr"
	"makerspace/internal/user"
)

type Users interface {
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, id string, p user.Patch) (*user.User, error)
}

type Service struct {
	Users  Users
	Tokens *Tokens
	Log    logrus.FieldLogger
}

type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a standard, active account and signs it in. Roles are
// never taken from the request.
func (s Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("NAME_REQUIRED", "name is required")
	}
	email, err := validEmail(in.Email)
	if err != nil {
		return nil, err
	}
	hash, err := user.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Name:           name,
		Email:          email,
		Role:           user.RoleStandard,
		Certifications: []string{},
		PasswordHash:   hash,
		Active:         true,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Validation("EMAIL_TAKEN", "an account with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.Log.WithField("user_id", u.ID).Info("user registered")
	return s.session(u)
}

func (s Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthenticated)
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthenticated)
	}
	if !u.Active {
		return nil, fmt.Errorf("%w: account is deactivated", apperr.ErrUnauthorized)
	}
	return s.session(u)
}

// UpdateProfile changes name and email. Role and certifications are not
// editable here.
func (s Service) UpdateProfile(ctx context.Context, userID string, p user.Patch) (*user.User, error) {
	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		if n == "" {
			return nil, apperr.Validation("NAME_REQUIRED", "name must not be empty")
		}
		p.Name = &n
	}
	if p.Email != nil {
		e, err := validEmail(*p.Email)
		if err != nil {
			return nil, err
		}
		p.Email = &e
	}
	u, err := s.Users.Update(ctx, userID, p)
	if errors.Is(err, apperr.ErrConflict) {
		return nil, apperr.Validation("EMAIL_TAKEN", "an account with this email already exists")
	}
	return u, err
}

func (s Service) session(u *user.User) (*Session, error) {
	tok, exp, err := s.Tokens.Issue(*u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, ExpiresAt: exp, User: u}, nil
}

func validEmail(raw string) (string, error) {
	e := user.NormalizeEmail(raw)
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return "", apperr.Validation("EMAIL_INVALID", "email address is invalid")
	}
	return e, nil
}
