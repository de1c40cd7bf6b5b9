package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/auth/entity"
)

// memStore keeps credentials in memory, keyed by email.
type memStore struct {
	mu       sync.Mutex
	byEmail  map[string]entity.Credential
	rehashed map[string]string
	getErr   error
}

func newMemStore() *memStore {
	return &memStore{byEmail: map[string]entity.Credential{}, rehashed: map[string]string{}}
}

func (m *memStore) Create(_ context.Context, c *entity.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[c.Email]; ok {
		return apperr.ErrConflict
	}
	m.byEmail[c.Email] = *c
	return nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*entity.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.byEmail[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, c := range m.byEmail {
		if c.ID == id {
			c.PasswordHash = hash
			m.byEmail[email] = c
			m.rehashed[id] = hash
			return nil
		}
	}
	return apperr.ErrNotFound
}

func newTestService(t *testing.T, store CredentialStore, opts ...Option) (*Service, *TokenCodec) {
	t.Helper()
	codec, err := NewTokenCodec("s3cret", CodecClock(fixedClock(epoch)))
	require.NoError(t, err)
	opts = append([]Option{WithHasher(BcryptHasher{Cost: bcrypt.MinCost}), WithClock(fixedClock(epoch))}, opts...)
	svc, err := NewService(store, codec, opts...)
	require.NoError(t, err)
	return svc, codec
}

func TestRegisterAndLogin(t *testing.T) {
	store := newMemStore()
	svc, codec := newTestService(t, store)
	ctx := context.Background()

	c, err := svc.Register(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "admin", c.Role)
	assert.NotEqual(t, "pw1", c.PasswordHash)

	sess, err := svc.Login(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, sess.Claims.Subject)
	assert.Equal(t, "admin", sess.Claims.Role)
	assert.Equal(t, epoch.Add(7*24*time.Hour), sess.Claims.ExpiresAt)

	claims, err := codec.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, c.ID, claims.Subject)

	_, err = svc.Login(ctx, "alice@x.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestRegisterTwiceConflicts(t *testing.T) {
	svc, _ := newTestService(t, newMemStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@x.com", "pw")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "  BOB@x.com ", "other")
	assert.ErrorIs(t, err, apperr.ErrConflict, "emails are compared case-insensitively")
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t, newMemStore())
	cases := map[string][2]string{
		"no email":     {"", "pw"},
		"no password":  {"a@x.com", ""},
		"bad email":    {"not-an-email", "pw"},
		"display name": {"Bob <bob@x.com>", "pw"},
		"angle addr":   {"<bob@x.com>", "pw"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), in[0], in[1])
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t, newMemStore())
	ctx := context.Background()
	_, err := svc.Register(ctx, "carol@x.com", "pw1")
	require.NoError(t, err)

	_, wrongPw := svc.Login(ctx, "carol@x.com", "nope")
	_, unknown := svc.Login(ctx, "nobody@x.com", "pw1")
	require.Error(t, wrongPw)
	require.Error(t, unknown)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
	assert.Equal(t, "invalid_email_or_password", unknown.Error())
	assert.Equal(t, apperr.HTTPStatus(wrongPw), apperr.HTTPStatus(unknown))
}

func TestLoginPropagatesStorageErrors(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection reset")
	svc, _ := newTestService(t, store)

	_, err := svc.Login(context.Background(), "a@x.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrInvalidCredentials)
	assert.Equal(t, 500, apperr.HTTPStatus(err))
}

func TestLoginRehashesWeakPasswords(t *testing.T) {
	store := newMemStore()
	weak, err := BcryptHasher{Cost: bcrypt.MinCost}.Hash("pw1")
	require.NoError(t, err)
	store.byEmail["dave@x.com"] = entity.Credential{ID: "u-dave", Email: "dave@x.com", PasswordHash: weak, Role: "admin"}

	svc, _ := newTestService(t, store, WithHasher(BcryptHasher{Cost: bcrypt.MinCost + 1}))
	_, err = svc.Login(context.Background(), "dave@x.com", "pw1")
	require.NoError(t, err)

	newHash, ok := store.rehashed["u-dave"]
	require.True(t, ok)
	cost, err := bcrypt.Cost([]byte(newHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestDefaultRoleOption(t *testing.T) {
	svc, _ := newTestService(t, newMemStore(), WithDefaultRole("viewer"))
	c, err := svc.Register(context.Background(), "erin@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "viewer", c.Role)
}
