package handler

import (
	"net/http"
	"time"

	"go-community-api/internal/model"
)

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, pair model.TokenPair) {
	h.setTokenCookie(w, model.AccessTokenCookie, pair.Access)
	h.setTokenCookie(w, model.RefreshTokenCookie, pair.Refresh)
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, name string, descriptor model.TokenDescriptor) {
	ttl := time.Duration(descriptor.ExpiresInMS) * time.Millisecond
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    descriptor.Token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthCookies overwrites both token cookies with empty values expiring
// at the epoch, so clients drop their stored credentials.
func (h *AuthHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{model.AccessTokenCookie, model.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0).UTC(),
			HttpOnly: true,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
