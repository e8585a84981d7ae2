package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the standard JWT fields plus the user data embedded in
// every issued token. The registered ID (jti) holds the per-token UUID
// that keys the Redis revocation store.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}
