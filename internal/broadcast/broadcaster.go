// Package broadcast publishes fire-and-forget notifications to interested
// subscribers. Delivery is not acknowledged; callers treat failures as
// logged, non-fatal.
package broadcast

import "context"

// Broadcaster is the outbound pub/sub contract.
type Broadcaster interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// Event is the wire envelope carried on a channel.
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Well-known channels. Per-room and per-session traffic goes on
// RoomChannel(id) / ListenChannel(id).
const LobbyChannel = "rooms"

func RoomChannel(roomID string) string { return "room:" + roomID }

func ListenChannel(sessionID string) string { return "listen:" + sessionID }
