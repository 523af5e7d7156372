// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"sync"

	"sellerctl/internal/domain"
)

// === Admin Repository Mock ===

// MockAdminRepo implements domain.AdminRepository for testing.
type MockAdminRepo struct {
	GetFn    func(ctx context.Context, telegramID int64) (*domain.Admin, error)
	CreateFn func(ctx context.Context, a *domain.Admin) (*domain.Admin, error)
	ListFn   func(ctx context.Context) ([]domain.Admin, error)
}

// Get implements the interface method for testing.
func (m *MockAdminRepo) Get(ctx context.Context, telegramID int64) (*domain.Admin, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, telegramID)
	}
	panic("unexpected call to MockAdminRepo.Get")
}

// Create implements the interface method for testing.
func (m *MockAdminRepo) Create(ctx context.Context, a *domain.Admin) (*domain.Admin, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	panic("unexpected call to MockAdminRepo.Create")
}

// List implements the interface method for testing.
func (m *MockAdminRepo) List(ctx context.Context) ([]domain.Admin, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	panic("unexpected call to MockAdminRepo.List")
}

// === User Repository Mock ===

// MockUserRepo implements domain.UserRepository for testing.
type MockUserRepo struct {
	GetByTelegramIDFn func(ctx context.Context, telegramID int64) (*domain.User, error)
	CreateFn          func(ctx context.Context, u *domain.User) (*domain.User, error)
}

// GetByTelegramID implements the interface method for testing.
func (m *MockUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	if m.GetByTelegramIDFn != nil {
		return m.GetByTelegramIDFn(ctx, telegramID)
	}
	panic("unexpected call to MockUserRepo.GetByTelegramID")
}

// Create implements the interface method for testing.
func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	panic("unexpected call to MockUserRepo.Create")
}

// === Lifecycle Event Repository Mock ===

// MockLifecycleEventRepo implements domain.LifecycleEventRepository for
// testing. Recorded events are collected in Events.
type MockLifecycleEventRepo struct {
	RecordFn func(ctx context.Context, e *domain.LifecycleEvent) error
	ListFn   func(ctx context.Context, limit int) ([]domain.LifecycleEvent, error)

	mu     sync.Mutex
	Events []domain.LifecycleEvent // collected events for assertions
}

// Record implements the interface method for testing.
func (m *MockLifecycleEventRepo) Record(ctx context.Context, e *domain.LifecycleEvent) error {
	if m.RecordFn != nil {
		if err := m.RecordFn(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, *e)
	return nil
}

// List implements the interface method for testing.
func (m *MockLifecycleEventRepo) List(ctx context.Context, limit int) ([]domain.LifecycleEvent, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LifecycleEvent, 0, len(m.Events))
	for i := len(m.Events) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.Events[i])
	}
	return out, nil
}
