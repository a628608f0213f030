package middleware

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the JWT payload accepted by HMACValidator.
type tokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// HMACValidator returns a TokenValidator for HS256/384/512 tokens signed with
// secret. The user id falls back to the "sub" claim.
func HMACValidator(secret string) TokenValidator {
	key := []byte(secret)
	return func(token string) (*Claims, error) {
		var claims tokenClaims
		parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil {
			return nil, fmt.Errorf("parse token: %w", err)
		}
		if !parsed.Valid {
			return nil, errors.New("token is not valid")
		}

		userID := claims.UserID
		if userID == "" {
			userID = claims.Subject
		}
		return &Claims{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
	}
}
