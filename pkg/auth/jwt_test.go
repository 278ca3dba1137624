package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-with-enough-entropy"

func newTestPair(t *testing.T) (*JWTGenerator, *JWTValidator) {
	t.Helper()
	gen, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey:  testSecret,
		Issuer:     "memoryhub",
		Audience:   []string{"memoryhub-api"},
		ExpiryTime: time.Hour,
	})
	require.NoError(t, err)

	val, err := NewJWTValidator(JWTConfig{
		SecretKey: testSecret,
		Issuer:    "memoryhub",
		Audience:  []string{"memoryhub-api"},
	})
	require.NoError(t, err)
	return gen, val
}

func TestJWT_RoundTrip(t *testing.T) {
	gen, val := newTestPair(t)

	token, err := gen.GenerateToken("user-1", "a@example.com")
	require.NoError(t, err)

	claims, err := val.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, time.Hour, gen.ExpiryTime())
}

func TestJWT_Rejections(t *testing.T) {
	gen, val := newTestPair(t)
	good, err := gen.GenerateToken("user-1", "a@example.com")
	require.NoError(t, err)

	other, err := NewJWTGenerator(JWTGeneratorConfig{SecretKey: "another-secret", Issuer: "memoryhub", Audience: []string{"memoryhub-api"}})
	require.NoError(t, err)
	forged, err := other.GenerateToken("user-1", "a@example.com")
	require.NoError(t, err)

	wrongAud, err := NewJWTGenerator(JWTGeneratorConfig{SecretKey: testSecret, Issuer: "memoryhub", Audience: []string{"elsewhere"}})
	require.NoError(t, err)
	wrongAudToken, err := wrongAud.GenerateToken("user-1", "a@example.com")
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "memoryhub",
			Audience:  []string{"memoryhub-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "missing", token: "Bearer ", want: ErrMissingToken},
		{name: "garbage", token: "not.a.token", want: ErrInvalidToken},
		{name: "wrong key", token: forged, want: ErrInvalidSignature},
		{name: "expired", token: expiredToken, want: ErrExpiredToken},
		{name: "wrong audience", token: wrongAudToken, want: ErrInvalidClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := val.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = val.ValidateToken(good)
	assert.NoError(t, err)
}

func TestJWT_ConfigErrors(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{SigningMethod: "HS256"})
	assert.Error(t, err)

	_, err = NewJWTValidator(JWTConfig{SigningMethod: "RS256"})
	assert.Error(t, err)

	_, err = NewJWTGenerator(JWTGeneratorConfig{SigningMethod: "ES512", SecretKey: "x"})
	assert.Error(t, err)

	gen, err := NewJWTGenerator(JWTGeneratorConfig{SecretKey: "x"})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, gen.ExpiryTime())
}

func TestUserContext(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.Error(t, err)

	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "u1", Email: "e"})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
}
