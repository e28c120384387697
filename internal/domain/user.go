package domain

import (
	"regexp"
	"time"

	"gorm.io/datatypes"
)

// User is the durable account record. Everything else in this core is
// TTL-governed; users are never hard-deleted here (administrative concern).
// Password hashes live in the credential store, not on this record.
type User struct {
	Username   string         `json:"username" gorm:"primaryKey;size:30"`
	IsAdmin    bool           `json:"isAdmin" gorm:"not null;default:false"`
	Banned     bool           `json:"banned" gorm:"not null;default:false"`
	BanFlags   datatypes.JSON `json:"banFlags,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	LastActive time.Time      `json:"lastActive"`
}

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]{3,30}$`)

// ValidUsername reports whether name is an acceptable (already lowercased)
// username.
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// Password bounds: the minimum resists trivial guesses, the maximum bounds
// the cost of the slow hash (bcrypt truncates input at 72 bytes).
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

func ValidPassword(password string) bool {
	return len(password) >= MinPasswordLength && len(password) <= MaxPasswordLength
}
