package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a JWT token. Only the user id is
// carried; handlers re-fetch the user when they need more.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"id"`
}
