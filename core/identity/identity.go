// Package identity holds what the portal knows about the caller: a Session handed out by a Provider.
package identity

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDemoDisabled       = errors.New("demo login disabled")
)

// Session is the authenticated caller.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Provider authenticates credentials against an identity source.
type Provider interface {
	Authenticate(ctx context.Context, email, password string) (Session, error)
}

// DemoProvider hands out demo sessions without credentials.
type DemoProvider interface {
	QuickLogin(ctx context.Context, admin bool) (Session, error)
}

// ResolveRole returns RoleAdmin when the declared role says so or when email belongs to adminDomain
// (e.g. "@admin.school.ru"); otherwise declared, defaulting to RoleStudent.
func ResolveRole(declared Role, email, adminDomain string) Role {
	if declared == RoleAdmin {
		return RoleAdmin
	}
	if adminDomain != "" && strings.HasSuffix(strings.ToLower(email), strings.ToLower(adminDomain)) {
		return RoleAdmin
	}
	if declared == "" {
		return RoleStudent
	}
	return declared
}
