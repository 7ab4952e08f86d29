package usecase

import (
	"context"
	"errors"
	"io"

	"agrimarket/internal/domain/entity"
	apperrors "agrimarket/pkg/errors"
)

var ErrEmailTaken = errors.New("email already registered")

type SignInResult struct {
	UID          string
	IDToken      string
	RefreshToken string
}

// IdentityProvider is the external account service.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	IsEmailVerified(ctx context.Context, uid string) (bool, error)
	SendVerificationEmail(ctx context.Context, idToken string) error
	SendPasswordReset(ctx context.Context, email string) error
}

// Notifier pushes live events to a user's open connections.
type Notifier interface {
	Publish(userID, eventType string, data interface{})
}

// ReportArchiver keeps a copy of exported reports.
type ReportArchiver interface {
	UploadReport(ctx context.Context, owner string, report io.Reader) (string, error)
}

// Locker serializes work on one resource id within the process.
type Locker interface {
	Lock(key string) func()
}

// Session is the acting identity for one request. The zero value is an
// anonymous caller.
type Session struct {
	UserID string
	Role   entity.Role
}

func (s Session) Authenticated() bool {
	return s.UserID != ""
}

func (s Session) RequireConsumer() error {
	if !s.Authenticated() {
		return apperrors.Unauthorized("Please log in to continue", nil)
	}
	if s.Role != entity.RoleConsumer {
		return apperrors.Forbidden("Only consumers can do this", nil)
	}
	return nil
}

func (s Session) RequireFarmer() error {
	if !s.Authenticated() {
		return apperrors.Unauthorized("Please log in to continue", nil)
	}
	if s.Role != entity.RoleFarmer {
		return apperrors.Forbidden("Only farmers can do this", nil)
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, string, interface{}) {}

type noopLocker struct{}

func (noopLocker) Lock(string) func() { return func() {} }
