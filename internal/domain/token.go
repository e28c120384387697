package domain

import "time"

// TokenInfo describes an active session token for display. The full token
// value is never exposed; Suffix is the last few characters only.
type TokenInfo struct {
	Suffix    string    `json:"suffix"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenValidation is the outcome of validating a (username, token) pair.
// Expired means the token authenticated through its rotation grace window
// rather than the active set.
type TokenValidation struct {
	Valid   bool `json:"valid"`
	Expired bool `json:"expired"`
}

// LastToken is the singular per-user grace slot: the most recently
// rotated-out token and when it was retired. Superseded by the next rotation.
type LastToken struct {
	Token     string    `json:"token"`
	RotatedAt time.Time `json:"rotatedAt"`
}
