package domain

import "time"

type RoomType string

const (
	RoomTypePublic  RoomType = "public"
	RoomTypePrivate RoomType = "private"
)

// Room is a chat room record. UserCount is a cached aggregate recomputed
// from live presence markers; the markers are the truth and the count
// self-corrects on the next refresh.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      RoomType  `json:"type"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UserCount int       `json:"userCount"`

	// Members is fixed at creation for private rooms and empty for public
	// rooms. Usernames are lowercased.
	Members []string `json:"members,omitempty"`
}

// VisibleTo reports whether the room shows up in listings for username.
// Public rooms are visible to everyone; private rooms only to listed members.
func (r *Room) VisibleTo(username string) bool {
	if r.Type == RoomTypePublic {
		return true
	}
	for _, m := range r.Members {
		if m == username {
			return true
		}
	}
	return false
}
