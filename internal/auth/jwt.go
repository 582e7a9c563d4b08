package auth

import (
	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Parse validates the token signature and expiry and returns the actor it
// carries.
func Parse(tokenString, secret string) (*domain.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.E(domain.CodeUnauthorized, "unexpected token signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.E(domain.CodeUnauthorized, "invalid or expired token")
	}

	role := domain.Role(claims.Role)
	switch role {
	case domain.RoleCustomer, domain.RoleManager, domain.RoleAdmin:
	default:
		return nil, domain.E(domain.CodeUnauthorized, "invalid or expired token")
	}

	return &domain.Actor{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  role,
	}, nil
}
