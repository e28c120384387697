package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dom/webdesk-core/internal/config"
	"github.com/dom/webdesk-core/internal/domain"
	"github.com/dom/webdesk-core/internal/repository"
)

// Rate-limit scopes. Each endpoint shares the limiter logic under its own
// namespace with independent thresholds.
const (
	scopeRegister = "auth:register"
	scopeLogin    = "auth:login"
	scopeRefresh  = "auth:refresh"
)

type AuthService struct {
	userRepo  repository.UserRepository
	credRepo  repository.CredentialRepository
	tokenRepo repository.TokenRepository
	rateRepo  repository.RateLimitRepository
	hasher    PasswordHasher
	cfg       *config.Config
	logger    *slog.Logger
}

func NewAuthService(repos *repository.Repositories, hasher PasswordHasher, cfg *config.Config, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo:  repos.User,
		credRepo:  repos.Credential,
		tokenRepo: repos.Token,
		rateRepo:  repos.RateLimit,
		hasher:    hasher,
		cfg:       cfg,
		logger:    logger,
	}
}

type RegisterInput struct {
	Username string
	Password string
	IP       string
}

type LoginInput struct {
	Username string
	Password string
	IP       string

	// OldToken, when set, is rotated out with a grace window instead of
	// leaving the device's previous token dangling.
	OldToken string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	res, err := s.rateRepo.CheckAndEscalateBlock(ctx, scopeRegister, "ip", input.IP,
		s.cfg.RegisterBlockTTL, s.cfg.RegisterWindow, s.cfg.RegisterLimit)
	if err != nil {
		return nil, err
	}
	if !res.Allowed {
		return nil, &domain.RateLimitError{Scope: scopeRegister, ResetSeconds: res.ResetSeconds}
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	if !domain.ValidUsername(username) {
		return nil, domain.ErrInvalidUsername
	}
	if !domain.ValidPassword(input.Password) {
		return nil, domain.ErrPasswordLength
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:   username,
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.credRepo.SetHash(ctx, username, hash); err != nil {
		return nil, err
	}

	token, err := s.tokenRepo.Issue(ctx, username)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	res, err := s.rateRepo.CheckCounterLimit(ctx, scopeLogin, "ip", input.IP,
		s.cfg.LoginWindow, s.cfg.LoginLimit)
	if err != nil {
		return nil, err
	}
	if !res.Allowed {
		return nil, &domain.RateLimitError{Scope: scopeLogin, ResetSeconds: res.ResetSeconds}
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" || input.Password == "" {
		return nil, domain.ErrMissingCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Banned {
		return nil, domain.ErrBanned
	}

	hash, err := s.credRepo.GetHash(ctx, username)
	if err != nil {
		return nil, err
	}
	if hash == "" || !s.hasher.Verify(hash, input.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	var token string
	if input.OldToken != "" {
		token, err = s.tokenRepo.Rotate(ctx, username, input.OldToken)
		if errors.Is(err, domain.ErrInvalidToken) {
			// Stale client-side token; fall back to a fresh issue.
			token, err = s.tokenRepo.Issue(ctx, username)
		}
	} else {
		token, err = s.tokenRepo.Issue(ctx, username)
	}
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLastActive(ctx, username); err != nil {
		s.logger.Warn("failed to touch last active", "username", username, "error", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Refresh rotates the caller's token, gated per IP.
func (s *AuthService) Refresh(ctx context.Context, username, oldToken, ip string) (string, error) {
	res, err := s.rateRepo.CheckCounterLimit(ctx, scopeRefresh, "ip", ip,
		s.cfg.RefreshWindow, s.cfg.RefreshLimit)
	if err != nil {
		return "", err
	}
	if !res.Allowed {
		return "", &domain.RateLimitError{Scope: scopeRefresh, ResetSeconds: res.ResetSeconds}
	}

	return s.tokenRepo.Rotate(ctx, strings.ToLower(username), oldToken)
}

// Authenticate resolves a claimed (username, token) identity. With
// allowExpired, a just-rotated token still passes during its grace window
// and the result is marked Expired.
func (s *AuthService) Authenticate(ctx context.Context, username, token string, allowExpired bool) (domain.TokenValidation, error) {
	v, err := s.tokenRepo.Validate(ctx, strings.ToLower(username), token, allowExpired)
	if err != nil {
		return domain.TokenValidation{}, err
	}
	if !v.Valid {
		return v, domain.ErrInvalidToken
	}
	return v, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokenRepo.Delete(ctx, token)
}

func (s *AuthService) LogoutAll(ctx context.Context, username string) error {
	return s.tokenRepo.DeleteAllForUser(ctx, strings.ToLower(username))
}

func (s *AuthService) Sessions(ctx context.Context, username string) ([]domain.TokenInfo, error) {
	return s.tokenRepo.List(ctx, strings.ToLower(username))
}

// ChangePassword verifies the current password before overwriting the hash.
// Other devices keep their tokens; revocation is an explicit LogoutAll.
func (s *AuthService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	username = strings.ToLower(username)
	if !domain.ValidPassword(newPassword) {
		return domain.ErrPasswordLength
	}

	hash, err := s.credRepo.GetHash(ctx, username)
	if err != nil {
		return err
	}
	if hash == "" || !s.hasher.Verify(hash, oldPassword) {
		return domain.ErrInvalidCredentials
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.credRepo.SetHash(ctx, username, newHash)
}

func (s *AuthService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.GetByUsername(ctx, strings.ToLower(username))
}
