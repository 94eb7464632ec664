package auth

import "time"

// Subject is what the codec needs to know about an account to issue a token.
type Subject struct {
	ID       string
	Username string
	Role     Role
}

// Identity is the caller derived from a verified token.
type Identity struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (i Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
