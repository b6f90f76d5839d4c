package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/plcassist/backend/internal/models"
)

// DefaultTokenTTL is used when a token is requested without lifetime
const DefaultTokenTTL = 15 * time.Minute

// Claims is the payload of an access token
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// TokenGenerator handles JWT token generation and validation
type TokenGenerator struct {
	secret            []byte
	method            jwt.SigningMethod
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewTokenGenerator creates a new token generator.
// algorithm must name an HMAC signing method (HS256, HS384 or HS512).
func NewTokenGenerator(secret, algorithm string, accessExpiry time.Duration) (*TokenGenerator, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret cannot be empty")
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %q", algorithm)
	}

	return &TokenGenerator{
		secret:            []byte(secret),
		method:            method,
		accessTokenExpiry: accessExpiry,
		now:               time.Now,
	}, nil
}

// AccessTokenExpiry returns the lifetime used for login tokens
func (tg *TokenGenerator) AccessTokenExpiry() time.Duration {
	return tg.accessTokenExpiry
}

// GenerateAccessToken creates a token with the configured access token lifetime
func (tg *TokenGenerator) GenerateAccessToken(username string, role models.Role) (string, error) {
	return tg.GenerateToken(username, role, tg.accessTokenExpiry)
}

// GenerateToken creates a signed token for username and role which expires after ttl.
// A non-positive ttl means DefaultTokenTTL.
func (tg *TokenGenerator) GenerateToken(username string, role models.Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := tg.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(tg.method, claims)
	tokenString, err := token.SignedString(tg.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a token and returns the username and role it was issued for
func (tg *TokenGenerator) ValidateToken(tokenString string) (string, models.Role, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return tg.secret, nil
	},
		jwt.WithValidMethods([]string{tg.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tg.now),
	)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", "", models.ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", "", fmt.Errorf("%w: subject not found in token", models.ErrInvalidToken)
	}

	return claims.Subject, claims.Role, nil
}
