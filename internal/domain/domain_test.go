package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dom/webdesk-core/internal/domain"
)

func TestValidUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     bool
	}{
		{name: "simple", username: "alice", want: true},
		{name: "digits and separators", username: "user_42-x", want: true},
		{name: "minimum length", username: "abc", want: true},
		{name: "maximum length", username: strings.Repeat("a", 30), want: true},
		{name: "too short", username: "ab", want: false},
		{name: "too long", username: strings.Repeat("a", 31), want: false},
		{name: "uppercase", username: "Alice", want: false},
		{name: "spaces", username: "a lice", want: false},
		{name: "symbols", username: "alice!", want: false},
		{name: "empty", username: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ValidUsername(tt.username))
		})
	}
}

func TestValidPassword(t *testing.T) {
	assert.False(t, domain.ValidPassword("short"))
	assert.True(t, domain.ValidPassword("12345678"))
	assert.True(t, domain.ValidPassword(strings.Repeat("x", domain.MaxPasswordLength)))
	// bcrypt ignores everything past 72 bytes, so longer inputs are rejected
	// rather than silently truncated.
	assert.False(t, domain.ValidPassword(strings.Repeat("x", domain.MaxPasswordLength+1)))
}

func TestRoomVisibleTo(t *testing.T) {
	public := &domain.Room{Type: domain.RoomTypePublic}
	assert.True(t, public.VisibleTo("anyone"))

	private := &domain.Room{
		Type:    domain.RoomTypePrivate,
		Members: []string{"alice", "bob"},
	}
	assert.True(t, private.VisibleTo("alice"))
	assert.True(t, private.VisibleTo("bob"))
	assert.False(t, private.VisibleTo("carol"))
}

func TestListenSessionMembers(t *testing.T) {
	s := &domain.ListenSession{Members: []string{"alice", "bob", "carol"}}

	assert.True(t, s.HasMember("bob"))
	assert.False(t, s.HasMember("dave"))

	assert.True(t, s.RemoveMember("bob"))
	assert.Equal(t, []string{"alice", "carol"}, s.Members)
	assert.False(t, s.RemoveMember("bob"))
}
