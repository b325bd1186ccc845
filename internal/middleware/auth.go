package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-community-api/internal/model"
	"go-community-api/internal/token"
)

type tokenVerifier interface {
	Verify(tokenString string) token.Verification
}

type contextKey string

const identityContextKey contextKey = "resolved_identity"

type AuthMiddleware struct {
	verifier tokenVerifier
}

func NewAuthMiddleware(verifier tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// VerifyToken reads the access token from the accessToken cookie and resolves
// the request identity. With validityRequired the request halts with 401 on
// any missing, invalid or identity-less token; without it the request
// proceeds anonymously, letting routes distinguish logged-in callers from
// visitors.
func (m *AuthMiddleware) VerifyToken(validityRequired bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ""
			if cookie, err := r.Cookie(model.AccessTokenCookie); err == nil {
				raw = strings.TrimSpace(cookie.Value)
			}

			var identity *model.TokenPayload
			if raw != "" {
				verification := m.verifier.Verify(raw)
				switch {
				case !verification.Valid():
					if validityRequired {
						writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
						return
					}
				case verification.Payload.ID >= 1:
					payload := verification.Payload
					identity = &payload
				}
			}

			// A token can verify yet decode to a payload that fails the
			// identity guard, so required-mode re-checks here.
			if identity == nil && validityRequired {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if identity != nil {
				r = r.WithContext(context.WithValue(r.Context(), identityContextKey, identity))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles authorizes the resolved identity against an allow-list. Must
// run after VerifyToken.
func (m *AuthMiddleware) RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if _, exists := allowed[identity.Role]; !exists {
				writeAuthError(w, http.StatusForbidden, "access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func IdentityFromContext(ctx context.Context) (*model.TokenPayload, bool) {
	identity, ok := ctx.Value(identityContextKey).(*model.TokenPayload)
	return identity, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	code := "UNAUTHORIZED"
	if status == http.StatusForbidden {
		code = "FORBIDDEN"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonEncode(w, model.ErrorResponse{
		Error: &model.APIError{Code: code, Message: message},
	})
}
