package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"go-community-api/internal/model"
)

const (
	// refreshTokenBytes is the entropy of an opaque refresh-token value
	// before base64 encoding.
	refreshTokenBytes = 128

	bearerType = "Bearer"
)

// RefreshStore persists opaque refresh tokens. The issuer only ever writes.
type RefreshStore interface {
	Save(ctx context.Context, row model.RefreshToken) error
}

// Issuer mints (access, refresh) pairs for authenticated users and persists
// the refresh half.
type Issuer struct {
	codec      *Codec
	store      RefreshStore
	refreshTTL time.Duration
}

func NewIssuer(codec *Codec, store RefreshStore, refreshTTL time.Duration) *Issuer {
	if refreshTTL <= 0 {
		refreshTTL = 168 * time.Hour
	}

	return &Issuer{codec: codec, store: store, refreshTTL: refreshTTL}
}

// IssueTokens returns a fresh pair for the user and writes the refresh-token
// row to the store.
func (i *Issuer) IssueTokens(ctx context.Context, user model.User) (model.TokenPair, error) {
	access, err := i.IssueAccessToken(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	value, err := generateRefreshValue()
	if err != nil {
		return model.TokenPair{}, err
	}

	now := time.Now().UTC()
	row := model.RefreshToken{
		Token:     value,
		UserID:    user.ID,
		TokenType: model.TokenTypeRefresh,
		ExpiresAt: now.Add(i.refreshTTL),
		CreatedAt: now,
	}
	if err := i.store.Save(ctx, row); err != nil {
		return model.TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return model.TokenPair{
		Access: access,
		Refresh: model.TokenDescriptor{
			Token:       value,
			Type:        bearerType,
			ExpiresInMS: i.refreshTTL.Milliseconds(),
		},
	}, nil
}

// IssueAccessToken mints only the access half. Used when the session window
// must not be extended.
func (i *Issuer) IssueAccessToken(user model.User) (model.TokenDescriptor, error) {
	signed, err := i.codec.Sign(model.TokenPayload{ID: user.ID, Role: user.Role})
	if err != nil {
		return model.TokenDescriptor{}, err
	}

	return model.TokenDescriptor{
		Token:       signed,
		Type:        bearerType,
		ExpiresInMS: i.codec.TTL().Milliseconds(),
	}, nil
}

func generateRefreshValue() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}
