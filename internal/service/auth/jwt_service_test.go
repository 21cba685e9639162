package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestService(t *testing.T, now func() time.Time) JWTService {
	t.Helper()
	svc, err := NewJWTServiceWithClock(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 60,
	}, now)
	require.NoError(t, err)
	return svc
}

func TestNewJWTServiceValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 0})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 5})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	owner := uuid.New()

	svc := newTestService(t, func() time.Time { return issued })
	token, err := svc.GenerateToken(ctx, owner)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, owner, claims.OwnerID)
	assert.Equal(t, owner.String(), claims.Subject)
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	_, err = svc.GenerateToken(ctx, uuid.Nil)
	assert.ErrorIs(t, err, ErrMissingOwner)
}

func TestValidateTokenRejections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	owner := uuid.New()

	token, err := newTestService(t, func() time.Time { return issued }).GenerateToken(ctx, owner)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		now     time.Time
		wantErr error
	}{
		{name: "empty", token: "", now: issued, wantErr: ErrMissingToken},
		{name: "malformed", token: "not.a.token", now: issued, wantErr: ErrInvalidToken},
		{name: "tampered", token: token + "x", now: issued, wantErr: ErrInvalidToken},
		{name: "expired", token: token, now: issued.Add(2 * time.Hour), wantErr: ErrExpiredToken},
		{name: "within clock skew", token: token, now: issued.Add(61 * time.Minute)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			now := tt.now
			svc := newTestService(t, func() time.Time { return now })
			_, err := svc.ValidateToken(ctx, tt.token)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateTokenRejectsForeignSigner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	other, err := NewJWTService(config.AuthConfig{
		JWTSecret:            "another-secret-that-is-long-enough-too",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	token, err := other.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	_, err = newTestService(t, time.Now).ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRequiresOwnerClaim(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "someone",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newTestService(t, time.Now).ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrMissingOwner)
}

func TestValidateTokenRejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtCustomClaims{
		OwnerID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestService(t, time.Now).ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
