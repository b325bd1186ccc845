package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"go-community-api/internal/model"
	"go-community-api/internal/password"
	"go-community-api/internal/token"
	"go-community-api/pkg/apierror"
)

// UserStore is the user-lookup collaborator. The auth core consumes users
// read-only apart from registration.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	List(ctx context.Context, page int, limit int) ([]model.User, int, error)
}

// TokenStore is the refresh-token side of the store the service mutates.
// Consume must be atomic: of two concurrent calls with the same value exactly
// one receives the row.
type TokenStore interface {
	Consume(ctx context.Context, value string) (model.RefreshToken, error)
	DeleteByValue(ctx context.Context, value string) error
}

type AuthService struct {
	users  UserStore
	tokens TokenStore
	issuer *token.Issuer
}

func NewAuthService(users UserStore, tokens TokenStore, issuer *token.Issuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, issuer: issuer}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.PublicUser, error) {
	req.Pseudo = strings.TrimSpace(req.Pseudo)
	req.Email = strings.TrimSpace(req.Email)

	if req.Pseudo == "" {
		return model.PublicUser{}, apierror.BadRequest("pseudo is required", "pseudo")
	}
	if req.Email == "" {
		return model.PublicUser{}, apierror.BadRequest("email is required", "email")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return model.PublicUser{}, apierror.BadRequest("email is invalid", "email")
	}
	if len(req.Password) < 8 {
		return model.PublicUser{}, apierror.BadRequest("password must be at least 8 characters", "password")
	}
	if req.Password != req.Confirm {
		return model.PublicUser{}, apierror.BadRequest("password confirmation does not match", "confirm")
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return model.PublicUser{}, err
	}
	if exists {
		return model.PublicUser{}, model.ErrUserAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, model.User{
		Pseudo:   req.Pseudo,
		Email:    req.Email,
		Password: hash,
		Role:     model.RoleMember,
		Avatar:   strings.TrimSpace(req.Avatar),
	})
	if err != nil {
		return model.PublicUser{}, err
	}

	return created.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, email string, plainPassword string) (model.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	ok, err := password.Verify(plainPassword, user.Password)
	if err != nil || !ok {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	return s.issuer.IssueTokens(ctx, user)
}

// Refresh consumes the presented refresh-token value and, when it was live,
// mints a fresh pair. The consumed row is gone either way, so a second
// attempt with the same value fails and an expired row is cleaned up on
// sight.
func (s *AuthService) Refresh(ctx context.Context, refreshValue string) (model.TokenPair, error) {
	refreshValue = strings.TrimSpace(refreshValue)
	if refreshValue == "" {
		return model.TokenPair{}, model.ErrTokenNotFound
	}

	row, err := s.tokens.Consume(ctx, refreshValue)
	if err != nil {
		return model.TokenPair{}, err
	}

	if !row.ExpiresAt.After(time.Now().UTC()) {
		return model.TokenPair{}, model.ErrTokenExpired
	}

	user, err := s.users.FindByID(ctx, row.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, model.ErrTokenNotFound
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	return s.issuer.IssueTokens(ctx, user)
}

// Logout revokes the presented refresh token server-side. Best effort: the
// caller clears cookies and answers 204 no matter what happens here.
func (s *AuthService) Logout(ctx context.Context, refreshValue string) {
	refreshValue = strings.TrimSpace(refreshValue)
	if refreshValue == "" {
		return
	}

	if err := s.tokens.DeleteByValue(ctx, refreshValue); err != nil {
		slog.Warn("logout: revoke refresh token", "error", err.Error())
	}
}

func (s *AuthService) CurrentUser(ctx context.Context, id int64) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *AuthService) ListUsers(ctx context.Context, page int, limit int) ([]model.PublicUser, model.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, model.Meta{}, err
	}

	public := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	totalPages := (total + limit - 1) / limit
	return public, model.Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}, nil
}
