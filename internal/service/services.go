package service

import (
	"log/slog"

	"github.com/dom/webdesk-core/internal/broadcast"
	"github.com/dom/webdesk-core/internal/config"
	"github.com/dom/webdesk-core/internal/repository"
)

type Services struct {
	Auth   *AuthService
	Room   *RoomService
	Listen *ListenService
}

func NewServices(repos *repository.Repositories, broadcaster broadcast.Broadcaster, cfg *config.Config, logger *slog.Logger) *Services {
	hasher := NewBcryptHasher(cfg.BcryptCost)
	return &Services{
		Auth:   NewAuthService(repos, hasher, cfg, logger),
		Room:   NewRoomService(repos, broadcaster, logger),
		Listen: NewListenService(repos, broadcaster, logger),
	}
}
