package user

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleArtist = "artist"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose hash in JSON
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// Summary is the wire shape for an identity: everything except credentials.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Summary() Summary {
	return Summary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// blockedNames is a hard business rule, not a security control: these stage
// names may not be registered. Matching is exact after trimming and case
// folding.
var blockedNames = []string{
	"Eminem",
	"Dua Lipa",
	"Catriel",
	"Paco Amoroso",
}

func NameBlocked(name string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))

	for _, blocked := range blockedNames {
		if normalized == strings.ToLower(blocked) {
			return true
		}
	}

	return false
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleArtist
}
