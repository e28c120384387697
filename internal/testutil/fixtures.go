package testutil

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/dom/webdesk-core/internal/domain"
)

// UserBuilder creates test users with sensible defaults
type UserBuilder struct {
	username string
	isAdmin  bool
	banned   bool
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{username: "testuser"}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) AsAdmin() *UserBuilder {
	b.isAdmin = true
	return b
}

func (b *UserBuilder) Banned() *UserBuilder {
	b.banned = true
	return b
}

func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:   b.username,
		IsAdmin:    b.isAdmin,
		Banned:     b.banned,
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
