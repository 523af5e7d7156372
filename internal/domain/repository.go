package domain

import "context"

// AdminRepository provides access to bot administrators.
type AdminRepository interface {
	Get(ctx context.Context, telegramID int64) (*Admin, error)
	Create(ctx context.Context, a *Admin) (*Admin, error)
	List(ctx context.Context) ([]Admin, error)
}

// UserRepository provides access to bot users.
type UserRepository interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
}

// LifecycleEventRepository stores the local lifecycle journal.
type LifecycleEventRepository interface {
	Record(ctx context.Context, e *LifecycleEvent) error
	List(ctx context.Context, limit int) ([]LifecycleEvent, error)
}
