// Package auth provides the session collaborator: JWT-backed user sessions
// that gate chat persistence and rehydration.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

var (
	ErrAuthDisabled = errors.New("auth disabled")
	ErrInvalidToken = errors.New("invalid token")
)

// Session identifies an authenticated user for the duration of a UI session.
type Session struct {
	UserID string
	Email  string
	Name   string
}

// Service validates session tokens and resolves them to sessions.
type Service struct {
	jwt *JWTService
}

// Config configures the auth service.
type Config struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

// NewService constructs an auth service from static configuration.
// An empty secret disables auth entirely: no sessions are ever issued or
// validated, and every caller is treated as logged out.
func NewService(cfg Config) *Service {
	service := &Service{}
	if strings.TrimSpace(cfg.JWTSecret) != "" {
		service.jwt = NewJWTService(cfg.JWTSecret, cfg.TokenExpiry)
	}
	return service
}

// Enabled reports whether auth checks should run.
func (s *Service) Enabled() bool {
	return s != nil && s.jwt != nil
}

// IssueToken signs a session token for the given user.
func (s *Service) IssueToken(user *models.User) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}
	return s.jwt.Generate(user)
}

// Authenticate validates a session token and returns the session it carries.
func (s *Service) Authenticate(token string) (*Session, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}
	user, err := s.jwt.Validate(token)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: user.ID, Email: user.Email, Name: user.Name}, nil
}
