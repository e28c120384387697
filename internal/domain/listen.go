package domain

import "time"

// MaxListenMembers caps concurrent members per listen session, enforced at
// join time.
const MaxListenMembers = 10

// ListenSession is a short-lived shared-playback record. It expires 4 hours
// after the last touch; there is no explicit closing state, an early end
// simply deletes the record.
type ListenSession struct {
	ID         string    `json:"id"`
	Members    []string  `json:"members"`
	DJ         string    `json:"dj"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSyncAt time.Time `json:"lastSyncAt"`
}

// HasMember reports whether username is a current member.
func (s *ListenSession) HasMember(username string) bool {
	for _, m := range s.Members {
		if m == username {
			return true
		}
	}
	return false
}

// RemoveMember removes username from the member list, returning false if
// they were not a member.
func (s *ListenSession) RemoveMember(username string) bool {
	for i, m := range s.Members {
		if m == username {
			s.Members = append(s.Members[:i], s.Members[i+1:]...)
			return true
		}
	}
	return false
}
