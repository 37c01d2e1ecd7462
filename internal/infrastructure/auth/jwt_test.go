package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qayed/backend/internal/infrastructure/config"
)

func jwtServiceForTest(accessTTL time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "unit-test-secret-at-least-32-chars!",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "cashflow-backend",
	})
}

func identityForTest() GenerateTokenInput {
	return GenerateTokenInput{
		CompanyID: uuid.New(),
		UserID:    uuid.New(),
		Username:  "treasury-admin",
	}
}

func TestGenerateTokenPair(t *testing.T) {
	svc := jwtServiceForTest(15 * time.Minute)

	pair, err := svc.GenerateTokenPair(identityForTest())
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt),
		"refresh token must outlive the access token")
}

func TestValidateAccessToken(t *testing.T) {
	svc := jwtServiceForTest(15 * time.Minute)
	input := identityForTest()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	t.Run("round trip keeps the identity", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		assert.Equal(t, input.CompanyID.String(), claims.CompanyID)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, input.Username, claims.Username)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
		assert.NotEmpty(t, claims.ID, "every token carries a JTI for revocation")
	})

	t.Run("refresh token is rejected as access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwtServiceForTest(-time.Hour)
		pair, err := expired.GenerateTokenPair(input)
		require.NoError(t, err)

		_, err = expired.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                 "a-completely-different-32char-key!!",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 7 * 24 * time.Hour,
			Issuer:                 "cashflow-backend",
		})
		_, err := other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateRefreshToken(t *testing.T) {
	svc := jwtServiceForTest(15 * time.Minute)
	pair, err := svc.GenerateTokenPair(identityForTest())
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestRefreshTokenPair(t *testing.T) {
	svc := jwtServiceForTest(15 * time.Minute)
	input := identityForTest()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	t.Run("issues a fresh pair with the same identity", func(t *testing.T) {
		fresh, err := svc.RefreshTokenPair(pair.RefreshToken)
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(fresh.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, input.CompanyID.String(), claims.CompanyID)
		assert.Equal(t, input.Username, claims.Username)
	})

	t.Run("access token cannot be exchanged", func(t *testing.T) {
		_, err := svc.RefreshTokenPair(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("garbage cannot be exchanged", func(t *testing.T) {
		_, err := svc.RefreshTokenPair("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaimsAccessors(t *testing.T) {
	svc := jwtServiceForTest(15 * time.Minute)
	input := identityForTest()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	companyID, err := claims.GetCompanyUUID()
	require.NoError(t, err)
	assert.Equal(t, input.CompanyID, companyID)

	userID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, userID)

	assert.False(t, claims.GetIssuedAtTime().IsZero())

	ttl := claims.GetRemainingTTL()
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 15*time.Minute)
}

func TestGetRemainingTTLExpired(t *testing.T) {
	claims := &Claims{}
	assert.Zero(t, claims.GetRemainingTTL(), "no expiry means no blacklist TTL")
}
