package auth

import (
	"testing"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func validClaims() Claims {
	return Claims{
		UserID: 42,
		Email:  "kunde@example.com",
		Role:   "CUSTOMER",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestParse_ValidToken(t *testing.T) {
	actor, err := Parse(signToken(t, validClaims(), testSecret), testSecret)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), actor.ID)
	assert.Equal(t, "kunde@example.com", actor.Email)
	assert.Equal(t, domain.RoleCustomer, actor.Role)
}

func TestParse_WrongSecret(t *testing.T) {
	_, err := Parse(signToken(t, validClaims(), "other-secret"), testSecret)

	assert.Equal(t, domain.CodeUnauthorized, domain.CodeOf(err))
}

func TestParse_ExpiredToken(t *testing.T) {
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	_, err := Parse(signToken(t, claims, testSecret), testSecret)

	assert.Equal(t, domain.CodeUnauthorized, domain.CodeOf(err))
}

func TestParse_UnknownRole(t *testing.T) {
	claims := validClaims()
	claims.Role = "ROOT"

	_, err := Parse(signToken(t, claims, testSecret), testSecret)

	assert.Equal(t, domain.CodeUnauthorized, domain.CodeOf(err))
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse("not-a-token", testSecret)

	assert.Equal(t, domain.CodeUnauthorized, domain.CodeOf(err))
}
