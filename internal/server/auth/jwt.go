// Package auth issues and verifies the portal's HS256 access tokens.
package auth

import (
	"errors"
	"time"

	"github.com/bomin1134/gb-ud-portal/internal/common"
	"github.com/bomin1134/gb-ud-portal/internal/directory"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the authenticated account so requests need no roster
// lookup.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string         `json:"uid"`
	Role     directory.Role `json:"role"`
	BranchID int            `json:"bid,omitempty"`
}

func (c *Claims) User() directory.User {
	return directory.User{ID: c.UserID, Role: c.Role, BranchID: c.BranchID}
}

func GenerateToken(u directory.User, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:   u.ID,
		Role:     u.Role,
		BranchID: u.BranchID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString and returns its claims. Expired tokens
// yield common.ErrTokenExpired, anything else unusable common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
