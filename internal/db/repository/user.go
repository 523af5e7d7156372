package repository

import (
	"context"
	"database/sql"
	"fmt"

	"sellerctl/internal/domain"
)

var _ domain.UserRepository = (*UserRepo)(nil)

// UserRepo implements domain.UserRepository against the bot database.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, telegram_id, username, first_name, last_name, source, funnel_stage, is_blocked, created_at, updated_at`

// GetByTelegramID returns the user with the given Telegram ID.
func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	u, err := scanUser(row)
	if err != nil {
		err = mapDBError(err)
		if _, ok := err.(*domain.NotFoundError); ok {
			return nil, domain.ErrNotFound("user %d not found", telegramID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Create inserts a new user; funnel stage defaults to "new".
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	stage := u.FunnelStage
	if stage == "" {
		stage = "new"
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (telegram_id, username, first_name, last_name, source, funnel_stage, is_blocked)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		u.TelegramID, nullString(u.Username), nullString(u.FirstName), nullString(u.LastName),
		nullString(u.Source), stage, u.IsBlocked)
	created, err := scanUser(row)
	if err != nil {
		err = mapDBError(err)
		if _, ok := err.(*domain.ConflictError); ok {
			return nil, domain.ErrConflict("user %d already exists", u.TelegramID)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var username, firstName, lastName, source sql.NullString
	if err := row.Scan(&u.ID, &u.TelegramID, &username, &firstName, &lastName,
		&source, &u.FunnelStage, &u.IsBlocked, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Username = ptrString(username)
	u.FirstName = ptrString(firstName)
	u.LastName = ptrString(lastName)
	u.Source = ptrString(source)
	return &u, nil
}
