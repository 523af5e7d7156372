package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "sellerctl/internal/db"
	"sellerctl/internal/domain"
)

func setupLifecycleEventRepo(t *testing.T) *LifecycleEventRepo {
	t.Helper()
	return NewLifecycleEventRepo(internaldb.OpenTestJournal(t))
}

func TestLifecycleEventRepo_RecordAndList(t *testing.T) {
	repo := setupLifecycleEventRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	errText := "pg_ctl: exit status 1"

	start := &domain.LifecycleEvent{
		Action:    domain.ActionStart,
		DataDir:   "/srv/pgdata",
		StartedAt: base,
		Duration:  1500 * time.Millisecond,
	}
	require.NoError(t, repo.Record(ctx, start))
	assert.NotEmpty(t, start.ID, "ID assigned on record")

	stop := &domain.LifecycleEvent{
		Action:    domain.ActionStop,
		DataDir:   "/srv/pgdata",
		ExitCode:  1,
		Error:     &errText,
		StartedAt: base.Add(time.Minute),
		Duration:  20 * time.Millisecond,
	}
	require.NoError(t, repo.Record(ctx, stop))

	events, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, stop.ID, events[0].ID, "newest first")
	assert.Equal(t, domain.ActionStop, events[0].Action)
	assert.Equal(t, 1, events[0].ExitCode)
	require.NotNil(t, events[0].Error)
	assert.Equal(t, errText, *events[0].Error)
	assert.False(t, events[0].Succeeded())

	assert.Equal(t, start.ID, events[1].ID)
	assert.Nil(t, events[1].Error)
	assert.Equal(t, 1500*time.Millisecond, events[1].Duration)
	assert.True(t, events[1].StartedAt.Equal(base))
	assert.True(t, events[1].Succeeded())
}

func TestLifecycleEventRepo_ListLimit(t *testing.T) {
	repo := setupLifecycleEventRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(ctx, &domain.LifecycleEvent{
			Action:    domain.ActionStatus,
			DataDir:   "/srv/pgdata",
			StartedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	events, err := repo.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[0].StartedAt.Equal(base.Add(4*time.Second)))

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestLifecycleEventRepo_RejectsUnknownAction(t *testing.T) {
	repo := setupLifecycleEventRepo(t)

	err := repo.Record(context.Background(), &domain.LifecycleEvent{
		Action:    "restart",
		DataDir:   "/srv/pgdata",
		StartedAt: time.Now(),
	})
	require.Error(t, err)
}

func TestLifecycleEventRepo_DuplicateID(t *testing.T) {
	repo := setupLifecycleEventRepo(t)
	ctx := context.Background()

	e := &domain.LifecycleEvent{ID: "fixed", Action: domain.ActionStart, DataDir: "/d", StartedAt: time.Now()}
	require.NoError(t, repo.Record(ctx, e))

	err := repo.Record(ctx, e)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
}
