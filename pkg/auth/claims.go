package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

var errMissingUserID = errors.New("user_id claim required")

// AccessTokenClaims is the bearer token minted by the identity service.
// Customers carry their user id; admins carry role admin.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   enums.Role `json:"role"`
	Email  string     `json:"email,omitempty"`
	jwt.RegisteredClaims
}

var _ jwt.ClaimsValidator = AccessTokenClaims{}

// Validate runs after the registered-claim checks during parsing.
func (c AccessTokenClaims) Validate() error {
	if !c.Role.IsValid() {
		return fmt.Errorf("invalid role %q", c.Role)
	}
	if c.UserID == uuid.Nil {
		return errMissingUserID
	}
	return nil
}

// IsAdmin reports whether the token grants admin access.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == enums.RoleAdmin
}
