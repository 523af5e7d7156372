package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sellerctl/internal/domain"
)

// SmokeService verifies the bot schema by reading and writing a known user.
type SmokeService struct {
	users  domain.UserRepository
	logger *slog.Logger
}

// NewSmokeService creates a new SmokeService.
func NewSmokeService(users domain.UserRepository, logger *slog.Logger) *SmokeService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SmokeService{users: users, logger: logger}
}

// EnsureTestUser returns the smoke-test user, creating it when missing.
// created reports whether this call inserted it.
func (s *SmokeService) EnsureTestUser(ctx context.Context) (user *domain.User, created bool, err error) {
	user, err = s.users.GetByTelegramID(ctx, domain.SmokeUserTelegramID)
	if err == nil {
		s.logger.Debug("smoke user present", "id", user.ID)
		return user, false, nil
	}
	if !isNotFound(err) {
		return nil, false, fmt.Errorf("lookup smoke user: %w", err)
	}

	username, first, last, source := domain.SmokeUserUsername, domain.SmokeUserFirstName, domain.SmokeUserLastName, domain.SmokeUserSource
	user, err = s.users.Create(ctx, &domain.User{
		TelegramID: domain.SmokeUserTelegramID,
		Username:   &username,
		FirstName:  &first,
		LastName:   &last,
		Source:     &source,
	})
	if err != nil {
		// Another smoke run may have inserted it in between.
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			user, err = s.users.GetByTelegramID(ctx, domain.SmokeUserTelegramID)
			if err != nil {
				return nil, false, fmt.Errorf("reload smoke user: %w", err)
			}
			return user, false, nil
		}
		return nil, false, fmt.Errorf("create smoke user: %w", err)
	}
	s.logger.Info("smoke user created", "id", user.ID, "telegram_id", user.TelegramID)
	return user, true, nil
}
