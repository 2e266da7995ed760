package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminRole role claim required by the admin API
const AdminRole = "admin"

// AdminJWTClaims admin JWT claims
type AdminJWTClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AdminTokens issues and validates HS256 admin tokens
type AdminTokens struct {
	secret []byte
	issuer string
}

// NewAdminTokens creates the token helper. An empty secret is rejected so a
// misconfigured deployment cannot accept unsigned tokens.
func NewAdminTokens(secret, issuer string) (*AdminTokens, error) {
	if secret == "" {
		return nil, errors.New("admin JWT secret is empty")
	}
	return &AdminTokens{secret: []byte(secret), issuer: issuer}, nil
}

// GenerateAdminJWTToken signs an admin token for username valid for ttl
func (t *AdminTokens) GenerateAdminJWTToken(username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminJWTClaims{
		Username: username,
		Role:     AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.issuer,
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateAdminJWTToken parses and verifies tokenString
func (t *AdminTokens) ValidateAdminJWTToken(tokenString string) (*AdminJWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*AdminJWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
