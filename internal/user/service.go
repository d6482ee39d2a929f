package user

import (
	"context"
	"convenios-dashboard/internal/auth"
	"convenios-dashboard/internal/convenio"
	"convenios-dashboard/internal/errors"
	"convenios-dashboard/internal/session"
	"strings"
	"time"

	"github.com/google/uuid"
)

const searchLimit = 20

// Service defines the interface for login and user lookup
type Service interface {
	Login(ctx context.Context, name string, role convenio.Role) (*Session, error)
	Logout(ctx context.Context, sessionID string) error
	SearchUsers(ctx context.Context, query string) ([]User, error)
}

// DefaultService implements Service
type DefaultService struct {
	repository UserRepository
	signer     *auth.Signer
	tables     session.Store
	now        func() time.Time
}

func NewService(repository UserRepository, signer *auth.Signer, tables session.Store) *DefaultService {
	return &DefaultService{
		repository: repository,
		signer:     signer,
		tables:     tables,
		now:        time.Now,
	}
}

// Login opens a new session for the self-reported name and role. Nothing is
// verified: the role only selects which capability the dashboard grants.
func (s *DefaultService) Login(ctx context.Context, name string, role convenio.Role) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.BadRequest("Name is required", nil)
	}
	if _, ok := convenio.ParseRole(string(role)); !ok {
		return nil, errors.BadRequest("Unknown role", nil)
	}

	now := s.now().UTC()
	if err := s.repository.Touch(ctx, &User{Name: name, Role: role, LastLoginAt: now}); err != nil {
		return nil, errors.Internal(err)
	}

	sessionID := uuid.NewString()
	token, err := s.signer.Generate(sessionID, name, role)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &Session{
		Token:     token,
		SessionID: sessionID,
		Name:      name,
		Role:      role,
		ExpiresAt: now.Add(s.signer.TTL()),
	}, nil
}

// Logout drops the session's table. The token stays valid until it
// expires but no longer has data behind it.
func (s *DefaultService) Logout(ctx context.Context, sessionID string) error {
	if err := s.tables.Delete(ctx, sessionID); err != nil {
		return errors.Internal(err)
	}
	return nil
}

func (s *DefaultService) SearchUsers(ctx context.Context, query string) ([]User, error) {
	users, err := s.repository.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return users, nil
}
