package repository

import (
	"context"
	"database/sql"
	"fmt"

	"sellerctl/internal/domain"
)

var _ domain.AdminRepository = (*AdminRepo)(nil)

// AdminRepo implements domain.AdminRepository against the bot database.
type AdminRepo struct {
	db *sql.DB
}

// NewAdminRepo creates a new AdminRepo.
func NewAdminRepo(db *sql.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

// Get returns the admin with the given Telegram ID.
func (r *AdminRepo) Get(ctx context.Context, telegramID int64) (*domain.Admin, error) {
	var a domain.Admin
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT telegram_id, role, created_at FROM admins WHERE telegram_id = $1`,
		telegramID).Scan(&a.TelegramID, &role, &a.CreatedAt)
	if err != nil {
		err = mapDBError(err)
		if _, ok := err.(*domain.NotFoundError); ok {
			return nil, domain.ErrNotFound("admin %d not found", telegramID)
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	a.Role = domain.AdminRole(role)
	return &a, nil
}

// Create inserts a new admin. A duplicate Telegram ID is a ConflictError.
func (r *AdminRepo) Create(ctx context.Context, a *domain.Admin) (*domain.Admin, error) {
	out := domain.Admin{TelegramID: a.TelegramID, Role: a.Role}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO admins (telegram_id, role) VALUES ($1, $2) RETURNING created_at`,
		a.TelegramID, string(a.Role)).Scan(&out.CreatedAt)
	if err != nil {
		err = mapDBError(err)
		if _, ok := err.(*domain.ConflictError); ok {
			return nil, domain.ErrConflict("admin %d already exists", a.TelegramID)
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return &out, nil
}

// List returns every admin ordered by creation time.
func (r *AdminRepo) List(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT telegram_id, role, created_at FROM admins ORDER BY created_at, telegram_id`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var admins []domain.Admin
	for rows.Next() {
		var a domain.Admin
		var role string
		if err := rows.Scan(&a.TelegramID, &role, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		a.Role = domain.AdminRole(role)
		admins = append(admins, a)
	}
	return admins, rows.Err()
}
