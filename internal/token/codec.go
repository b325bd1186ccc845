// Package token holds the access-token codec and the issuer that mints
// access/refresh pairs.
package token

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-community-api/internal/model"
)

// Reason classifies why a token failed verification. The codec never returns
// an error to its caller; it reports a reason and lets the middleware decide
// policy.
type Reason string

const (
	ReasonMalformed    Reason = "malformed"
	ReasonBadSignature Reason = "bad_signature"
	ReasonExpired      Reason = "expired"
	ReasonBadPayload   Reason = "bad_payload"
)

// Verification is the outcome of Codec.Verify: either a valid payload or an
// invalid reason, never both.
type Verification struct {
	Payload model.TokenPayload
	Reason  Reason
}

func (v Verification) Valid() bool {
	return v.Reason == ""
}

type accessClaims struct {
	ID   int64      `json:"id"`
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies access tokens with an HMAC secret held by the
// process. The secret is injected at construction, never read from globals.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token codec: signing secret is not configured")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Codec{secret: []byte(secret), ttl: ttl}, nil
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Sign produces a compact HS256 token carrying the payload plus issued-at and
// expiry claims.
func (c *Codec) Sign(payload model.TokenPayload) (string, error) {
	now := time.Now().UTC()
	claims := accessClaims{
		ID:   payload.ID,
		Role: payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Verify decodes and checks an access token. Failures are logged for
// observability and reported through the Verification reason; control flow is
// left to the caller.
func (c *Codec) Verify(tokenString string) Verification {
	if strings.TrimSpace(tokenString) == "" {
		return Verification{Reason: ReasonMalformed}
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		reason := ReasonMalformed
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			reason = ReasonExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			reason = ReasonBadSignature
		}
		slog.Warn("access token rejected", "reason", string(reason), "error", err.Error())
		return Verification{Reason: reason}
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		slog.Warn("access token rejected", "reason", string(ReasonMalformed))
		return Verification{Reason: ReasonMalformed}
	}

	if claims.ID < 1 {
		slog.Warn("access token payload rejected", "reason", string(ReasonBadPayload), "id", claims.ID)
		return Verification{Reason: ReasonBadPayload}
	}

	return Verification{Payload: model.TokenPayload{ID: claims.ID, Role: claims.Role}}
}
