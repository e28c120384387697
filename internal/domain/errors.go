package domain

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrInvalidUsername = errors.New("username must be 3-30 lowercase letters, digits, '_' or '-'")
	ErrPasswordLength  = errors.New("password must be between 8 and 72 characters")
	ErrInvalidRoomType = errors.New("room type must be public or private")
	ErrProfaneRoomName = errors.New("room name contains a blocked word")
	ErrEmptyRoomName   = errors.New("room name is required")
	ErrNoMembers       = errors.New("private room requires at least one member")
	ErrEmojiTooLong    = errors.New("emoji must be at most 8 characters")
)

// Auth errors. Missing inputs, an unknown/invalid token, and a token that
// expired outside its grace window are three distinct conditions and are
// never collapsed into one.
var (
	ErrMissingCredentials = errors.New("missing username or token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBanned             = errors.New("account is banned")
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrSessionNotFound  = errors.New("listen session not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrTokenCollision   = errors.New("generated token already exists")
	ErrForbidden        = errors.New("not permitted")
	ErrNotSessionMember = errors.New("user is not a member of this session")
	ErrNotDJ            = errors.New("only the current dj can do this")
	ErrSessionFull      = errors.New("listen session is full")
)

// RateLimitError reports a rejected attempt along with the seconds remaining
// until the counter window or block expires.
type RateLimitError struct {
	Scope        string
	ResetSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %ds", e.Scope, e.ResetSeconds)
}
