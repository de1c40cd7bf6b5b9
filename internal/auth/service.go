package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/auth/entity"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

// SessionTTL is how long a signed session stays valid.
const SessionTTL = 7 * 24 * time.Hour

// CredentialStore is the persistence the service needs. repo.CredentialRepo
// satisfies it.
type CredentialStore interface {
	Create(ctx context.Context, c *entity.Credential) error
	GetByEmail(ctx context.Context, email string) (*entity.Credential, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

// Session is a freshly issued token with the claims it carries.
type Session struct {
	Token  string
	Claims SessionClaims
}

// Service orchestrates register and login.
type Service struct {
	store       CredentialStore
	tokens      *TokenCodec
	hasher      PasswordHasher
	defaultRole string
	now         func() time.Time
	logger      *zap.SugaredLogger
	// compared against on unknown emails so both failure paths pay for a hash
	dummyHash string
}

type Option func(*Service)

func WithHasher(h PasswordHasher) Option { return func(s *Service) { s.hasher = h } }

func WithDefaultRole(role string) Option { return func(s *Service) { s.defaultRole = role } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithLogger(l *zap.SugaredLogger) Option { return func(s *Service) { s.logger = l } }

func NewService(store CredentialStore, tokens *TokenCodec, opts ...Option) (*Service, error) {
	s := &Service{
		store:       store,
		tokens:      tokens,
		hasher:      BcryptHasher{Cost: 12},
		defaultRole: "admin",
		now:         time.Now,
		logger:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	dummy, err := s.hasher.Hash("pitchfork-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", apperr.ErrValidation)
	}
	// a bare address only, no display name or angle brackets
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email", apperr.ErrValidation)
	}
	return nil
}

// Register stores a new credential with the default role. A second
// registration of the same address fails with apperr.ErrConflict.
func (s *Service) Register(ctx context.Context, email, password string) (*entity.Credential, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	c := &entity.Credential{
		ID:           utilities.NewKSUID(),
		Email:        email,
		PasswordHash: hash,
		Role:         s.defaultRole,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Infow("user registered", "id", c.ID, "email", c.Email)
	return c, nil
}

// Login checks the password and issues a session token. An unknown email
// and a wrong password return the same apperr.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperr.ErrValidation)
	}
	c, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.hasher.Verify(s.dummyHash, password)
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(c.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(c.PasswordHash) {
		if newHash, hErr := s.hasher.Hash(password); hErr == nil {
			if uErr := s.store.UpdatePassword(ctx, c.ID, newHash); uErr != nil {
				s.logger.Warnw("password rehash failed", "id", c.ID, "err", uErr)
			}
		}
	}

	claims := SessionClaims{
		Subject:   c.ID,
		Role:      c.Role,
		ExpiresAt: s.now().Add(SessionTTL).Truncate(time.Second),
	}
	token, err := s.tokens.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{Token: token, Claims: claims}, nil
}
