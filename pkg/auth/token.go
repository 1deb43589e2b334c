// Package auth verifies the HS256 bearer tokens issued by the identity
// service.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

const leeway = 30 * time.Second

var (
	signingMethod = jwt.SigningMethodHS256

	errMissingSecret = errors.New("jwt secret is required")
)

func newParser(cfg config.JWTConfig) *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	)
}

// ParseAccessToken verifies signature, issuer and expiry, then the
// storefront claims.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, errMissingSecret
	}
	claims := &AccessTokenClaims{}
	key := []byte(cfg.Secret)
	if _, err := newParser(cfg).ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return key, nil
	}); err != nil {
		return nil, err
	}
	return claims, nil
}

// MintAccessToken signs claims for local tooling and tests. Production
// tokens come from the identity service.
func MintAccessToken(cfg config.JWTConfig, now time.Time, ttl time.Duration, userID uuid.UUID, role enums.Role) (string, error) {
	switch {
	case cfg.Secret == "":
		return "", errMissingSecret
	case ttl <= 0:
		return "", errors.New("token ttl must be positive")
	}
	claims := AccessTokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    cfg.Issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}
