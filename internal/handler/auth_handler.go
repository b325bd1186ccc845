package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go-community-api/internal/middleware"
	"go-community-api/internal/model"
	"go-community-api/internal/service"
	"go-community-api/pkg/apierror"
)

type AuthHandler struct {
	service      *service.AuthService
	cookieSecure bool
}

func NewAuthHandler(service *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{service: service, cookieSecure: cookieSecure}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.RegisterResponse{User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	pair, err := h.service.Login(r.Context(), strings.TrimSpace(payload.Email), payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, model.LoginResponse{AccessToken: pair.Access})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshValue := ""
	if cookie, err := r.Cookie(model.RefreshTokenCookie); err == nil {
		refreshValue = cookie.Value
	}

	pair, err := h.service.Refresh(r.Context(), refreshValue)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, model.LoginResponse{AccessToken: pair.Access})
}

// Logout always answers 204 and clears both cookies, even when the request
// carries no cookies or garbled ones. Server-side revocation is best effort.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(model.RefreshTokenCookie); err == nil {
		h.service.Logout(r.Context(), cookie.Value)
	}

	h.clearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the resolved identity, or an anonymous session when the
// soft-auth middleware resolved none.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, model.SessionResponse{
		Authenticated: ok,
		Identity:      identity,
	})
}
