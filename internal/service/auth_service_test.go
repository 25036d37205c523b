package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/glossary-api/internal/models"
	"github.com/noah-isme/glossary-api/internal/repository"
	appErrors "github.com/noah-isme/glossary-api/pkg/errors"
)

type mockAdminRepo struct {
	admins map[string]*models.Admin
	err    error
}

func (m *mockAdminRepo) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if m.err != nil {
		return nil, m.err
	}
	admin, ok := m.admins[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return admin, nil
}

type memorySessions struct {
	sessions map[string]*models.Session
	saveErr  error
	findErr  error
}

func (m *memorySessions) Save(ctx context.Context, session *models.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.sessions == nil {
		m.sessions = make(map[string]*models.Session)
	}
	copy := *session
	m.sessions[session.ID] = &copy
	return nil
}

func (m *memorySessions) Find(ctx context.Context, id string) (*models.Session, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	session, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return session, nil
}

func (m *memorySessions) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *memorySessions, *recordingAudit) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	admins := &mockAdminRepo{admins: map[string]*models.Admin{
		"admin": {ID: 1, Username: "admin", PasswordHash: string(hash)},
	}}
	sessions := &memorySessions{}
	audit := &recordingAudit{}
	svc := NewAuthService(admins, sessions, audit, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "test-secret",
		SessionTTL: time.Hour,
		Issuer:     "glossary-test",
	})
	return svc, sessions, audit
}

func TestAuthServiceLoginIssuesSessionToken(t *testing.T) {
	svc, sessions, audit := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "admin", res.Username)
	require.Len(t, sessions.sessions, 1)
	assert.Len(t, audit.events, 1)

	session, err := svc.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), session.AdminID)

	status := svc.Status(context.Background(), res.Token)
	assert.True(t, status.Authenticated)
	assert.Equal(t, "admin", status.Username)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc, sessions, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "admin"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	assert.Empty(t, sessions.sessions)
}

func TestAuthServiceLoginSessionStoreFailure(t *testing.T) {
	svc, sessions, _ := newAuthFixture(t)
	sessions.saveErr = errors.New("redis down")

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRevokesSession(t *testing.T) {
	svc, sessions, _ := newAuthFixture(t)
	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), res.Token))
	assert.Empty(t, sessions.sessions)

	_, err = svc.Authenticate(context.Background(), res.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	assert.False(t, svc.Status(context.Background(), res.Token).Authenticated)

	assert.NoError(t, svc.Logout(context.Background(), ""))
	assert.NoError(t, svc.Logout(context.Background(), "garbage"))
}

func TestAuthServiceAuthenticateRejectsForeignTokens(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Authenticate(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), forged)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceAuthenticateExpiredToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Authenticate(context.Background(), res.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
