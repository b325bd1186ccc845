package model

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error *APIError `json:"error"`
}

type RegisterResponse struct {
	User PublicUser `json:"user"`
}

type LoginResponse struct {
	AccessToken TokenDescriptor `json:"accessToken"`
}

type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	Identity      *TokenPayload `json:"identity,omitempty"`
}

type UserResponse struct {
	User PublicUser `json:"user"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type UserListResponse struct {
	Users []PublicUser `json:"users"`
	Meta  Meta         `json:"meta"`
}
