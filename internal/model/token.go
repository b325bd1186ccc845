package model

import "time"

// Cookie names are part of the public API contract.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

const TokenTypeRefresh = "refresh"

// TokenPayload is the signed content of an access token and, once verified,
// the resolved identity attached to a request.
type TokenPayload struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// TokenDescriptor is a minted token together with its lifetime, so callers
// setting cookies never hardcode durations.
type TokenDescriptor struct {
	Token       string `json:"token"`
	Type        string `json:"type"`
	ExpiresInMS int64  `json:"expiresInMS"`
}

type TokenPair struct {
	Access  TokenDescriptor
	Refresh TokenDescriptor
}

// RefreshToken is a stored, opaque refresh-token row. The value is only ever
// matched exactly and is valid while now < ExpiresAt.
type RefreshToken struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
