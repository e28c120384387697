package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dom/webdesk-core/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error        string `json:"error"`
	ResetSeconds int    `json:"resetSeconds,omitempty"`
}

// respondError maps the core's error taxonomy onto transport status codes.
// Anything unmapped is an internal store failure and stays opaque.
func respondError(w http.ResponseWriter, err error) {
	var rate *domain.RateLimitError
	if errors.As(err, &rate) {
		w.Header().Set("Retry-After", strconv.Itoa(rate.ResetSeconds))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:        "rate limit exceeded",
			ResetSeconds: rate.ResetSeconds,
		})
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrPasswordLength),
		errors.Is(err, domain.ErrInvalidRoomType),
		errors.Is(err, domain.ErrProfaneRoomName),
		errors.Is(err, domain.ErrEmptyRoomName),
		errors.Is(err, domain.ErrNoMembers),
		errors.Is(err, domain.ErrEmojiTooLong):
		status, message = http.StatusBadRequest, err.Error()

	case errors.Is(err, domain.ErrMissingCredentials),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, err.Error()

	case errors.Is(err, domain.ErrBanned),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrNotDJ),
		errors.Is(err, domain.ErrNotSessionMember):
		status, message = http.StatusForbidden, err.Error()

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		status, message = http.StatusNotFound, err.Error()

	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrSessionFull):
		status, message = http.StatusConflict, err.Error()
	}

	writeJSON(w, status, errorResponse{Error: message})
}

// clientIP extracts the caller address for rate-limit identity.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
