// Package bootstrap implements the one-off operations that prepare a fresh
// bot database: the first admin and the smoke-test user.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sellerctl/internal/domain"
)

// AdminService creates and lists bot administrators.
type AdminService struct {
	repo   domain.AdminRepository
	logger *slog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(repo domain.AdminRepository, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AdminService{repo: repo, logger: logger}
}

// CreateFirstAdmin registers the Telegram user rawID with the given role
// (owner when empty). An existing admin is reported as a ConflictError and
// left untouched.
func (s *AdminService) CreateFirstAdmin(ctx context.Context, rawID, role string) (*domain.Admin, error) {
	id, err := domain.ParseTelegramID(rawID)
	if err != nil {
		return nil, err
	}
	r, err := domain.ParseAdminRole(role)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	switch {
	case err == nil:
		return nil, domain.ErrConflict("admin %d already exists with role %s", existing.TelegramID, existing.Role)
	case !isNotFound(err):
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.Admin{TelegramID: id, Role: r})
	if err != nil {
		return nil, err
	}
	s.logger.Info("admin created", "telegram_id", created.TelegramID, "role", created.Role)
	return created, nil
}

// List returns every admin.
func (s *AdminService) List(ctx context.Context) ([]domain.Admin, error) {
	return s.repo.List(ctx)
}

func isNotFound(err error) bool {
	var nf *domain.NotFoundError
	return errors.As(err, &nf)
}
