package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexora/account-api/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		Issuer:               "accounts",
		Audience:             "accounts",
		TokenLifetimeMinutes: 60,
	}
}

func newTestTokenService(t *testing.T, now func() time.Time) *hmacTokenService {
	t.Helper()
	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)
	impl := svc.(*hmacTokenService)
	if now != nil {
		impl.timeFunc = now
	}
	return impl
}

func TestNewTokenServiceRejectsShortSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = "short"
	_, err := NewTokenService(cfg)
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t, nil)
	accountID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(ctx, accountID, "a@x.com", []string{"user", "admin"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, []string{"user", "admin"}, claims.Roles)
	assert.Equal(t, accountID.String(), claims.Subject)
	assert.Equal(t, "accounts", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	clock := issuedAt
	svc := newTestTokenService(t, func() time.Time { return clock })

	token, _, err := svc.GenerateToken(ctx, uuid.New(), "a@x.com", nil)
	require.NoError(t, err)

	// Still valid one minute before the one hour window closes.
	clock = issuedAt.Add(59 * time.Minute)
	_, err = svc.ValidateToken(ctx, token)
	assert.NoError(t, err)

	// Invalid one minute after.
	clock = issuedAt.Add(61 * time.Minute)
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenRejectsTamperedToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t, nil)

	token, _, err := svc.GenerateToken(ctx, uuid.New(), "a@x.com", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t, nil)

	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "ffffffffffffffffffffffffffffffff"
	other, err := NewTokenService(otherCfg)
	require.NoError(t, err)

	token, _, err := other.GenerateToken(ctx, uuid.New(), "a@x.com", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	ctx := context.Background()

	otherCfg := testAuthConfig()
	otherCfg.Issuer = "someone-else"
	other, err := NewTokenService(otherCfg)
	require.NoError(t, err)

	token, _, err := other.GenerateToken(ctx, uuid.New(), "a@x.com", nil)
	require.NoError(t, err)

	svc := newTestTokenService(t, nil)
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	hasher := NewBcryptHasher(bcryptMinCostForTests)

	hashed, err := hasher.Hash("Abcdefg1")
	require.NoError(t, err)
	assert.NotEqual(t, "Abcdefg1", hashed)

	assert.NoError(t, hasher.Compare(hashed, "Abcdefg1"))
	assert.Error(t, hasher.Compare(hashed, "wrong-password"))
}

// bcrypt.MinCost keeps the hashing test fast.
const bcryptMinCostForTests = 4
