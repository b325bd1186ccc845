package model

import "time"

// Role is the closed set of roles a user can hold. Authorization checks are
// set-membership tests over this type, never raw string comparison.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	if !role.Valid() {
		return "", false
	}
	return role, true
}

type User struct {
	ID        int64     `json:"id"`
	Pseudo    string    `json:"pseudo"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUser is the user shape returned to API clients. It never carries the
// password hash.
type PublicUser struct {
	ID     int64  `json:"id"`
	Pseudo string `json:"pseudo"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:     u.ID,
		Pseudo: u.Pseudo,
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
	}
}
