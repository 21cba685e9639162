package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and verifies bearer tokens.
type JWTService interface {
	// GenerateToken creates a signed token whose uid claim is ownerID.
	GenerateToken(ctx context.Context, ownerID uuid.UUID) (string, error)

	// ValidateToken verifies the signature and time claims of tokenString and
	// returns its claims. A token without a uid claim is rejected.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified content of a token.
type Claims struct {
	// OwnerID is the uid claim: the account every request is scoped to.
	OwnerID   uuid.UUID `json:"uid"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
