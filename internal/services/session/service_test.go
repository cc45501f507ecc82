package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/models"
	"github.com/HiFromAjay/checklistenserver/internal/storage/sessiondb"
)

const testSecret = "test-secret-key"

func newTestService(t *testing.T, stage string) (*Service, *sessiondb.Store) {
	t.Helper()
	store, err := sessiondb.NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := common.NewDefaultConfig()
	cfg.Stage = stage
	cfg.Auth.JWTSecret = testSecret
	cfg.Auth.TokenExpiry = "1h"
	cfg.Auth.CookiePrefix = "CHL"

	return NewService(cfg, store, common.NewSilentLogger()), store
}

func signTestJWT(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestCreate_SubjectFromJWT(t *testing.T) {
	svc, store := newTestService(t, common.StageDev)

	session, err := svc.Create(context.Background(), signTestJWT(t, "alice", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Subject)
	assert.NotEmpty(t, session.SessionID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	stored, err := store.Get(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Subject)
}

func TestCreate_SessionIDIndependentOfJWT(t *testing.T) {
	svc, _ := newTestService(t, common.StageDev)
	rawJWT := signTestJWT(t, "alice", time.Hour)

	s1, err := svc.Create(context.Background(), rawJWT)
	require.NoError(t, err)
	s2, err := svc.Create(context.Background(), rawJWT)
	require.NoError(t, err)

	assert.NotContains(t, rawJWT, s1.SessionID)
	assert.NotEqual(t, s1.SessionID, s2.SessionID)
}

func TestCreate_ExpiredJWT(t *testing.T) {
	svc, _ := newTestService(t, common.StageDev)

	_, err := svc.Create(context.Background(), signTestJWT(t, "alice", -time.Hour))
	assert.ErrorIs(t, err, models.ErrSessionExpired)
}

func TestCreate_GarbageJWT(t *testing.T) {
	svc, _ := newTestService(t, common.StageDev)

	_, err := svc.Create(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, models.ErrAuthentication)
}

func TestCreate_MissingSubject(t *testing.T) {
	svc, _ := newTestService(t, common.StageDev)

	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrAuthentication)
}

func TestInvalidate_Idempotent(t *testing.T) {
	svc, store := newTestService(t, common.StageDev)
	ctx := context.Background()

	session, err := svc.Create(ctx, signTestJWT(t, "alice", time.Hour))
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, session.SessionID))
	require.NoError(t, svc.Invalidate(ctx, session.SessionID))
	require.NoError(t, svc.Invalidate(ctx, ""))

	_, err = store.Get(ctx, session.SessionID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSessionCookie_DevStage(t *testing.T) {
	svc, _ := newTestService(t, common.StageDev)

	cookie := svc.SessionCookie("sess-abc")
	assert.Equal(t, "CHL_SESSIONID", cookie.Name)
	assert.Equal(t, "sess-abc", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, 3600, cookie.MaxAge)
}

func TestSessionCookie_ProdStage(t *testing.T) {
	svc, _ := newTestService(t, "prod")

	cookie := svc.SessionCookie("sess-abc")
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)
}

func TestInvalidatedCookie_Expires(t *testing.T) {
	svc, _ := newTestService(t, common.StageDev)

	cookie := svc.InvalidatedCookie()
	assert.Equal(t, "CHL_SESSIONID", cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}
