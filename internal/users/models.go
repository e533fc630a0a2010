package users

import "time"

type User struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Address      string         `json:"address,omitempty"`
	Metadata     map[string]any `json:"metadata"`
	IsAdmin      bool           `json:"is_admin"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func DefaultMetadata() map[string]any {
	return map[string]any{"is_admin": false}
}

// Roles as embedded in token claims.
func (u *User) Roles() []string {
	if u.IsAdmin {
		return []string{"admin"}
	}
	return nil
}
