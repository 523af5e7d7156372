package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellerctl/internal/domain"
	"sellerctl/internal/pgctl"
	"sellerctl/internal/testutil"
)

type fakeController struct {
	startErr  error
	stopErr   error
	status    pgctl.Status
	statusErr error
	calls     []string
}

func (f *fakeController) Start(context.Context) error {
	f.calls = append(f.calls, "start")
	return f.startErr
}

func (f *fakeController) Stop(context.Context) error {
	f.calls = append(f.calls, "stop")
	return f.stopErr
}

func (f *fakeController) Status(context.Context) (pgctl.Status, error) {
	f.calls = append(f.calls, "status")
	return f.status, f.statusErr
}

func (f *fakeController) Layout() pgctl.Layout {
	return pgctl.Layout{Root: "/opt/pg", DataDir: "/srv/pgdata"}
}

func newTestService(ctl ServerController, journal domain.LifecycleEventRepository) *Service {
	svc := NewService(ctl, journal, nil)
	tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(250 * time.Millisecond)
		return tick
	}
	return svc
}

func TestService_StartRecordsSuccess(t *testing.T) {
	ctl := &fakeController{}
	journal := &testutil.MockLifecycleEventRepo{}
	svc := newTestService(ctl, journal)

	require.NoError(t, svc.Start(context.Background()))

	assert.Equal(t, []string{"start"}, ctl.calls)
	require.Len(t, journal.Events, 1)
	e := journal.Events[0]
	assert.Equal(t, domain.ActionStart, e.Action)
	assert.Equal(t, "/srv/pgdata", e.DataDir)
	assert.Zero(t, e.ExitCode)
	assert.Nil(t, e.Error)
	assert.Equal(t, 250*time.Millisecond, e.Duration)
}

func TestService_StopPropagatesToolExit(t *testing.T) {
	toolErr := &pgctl.ExitError{Command: "pg_ctl stop", Code: 1}
	ctl := &fakeController{stopErr: toolErr}
	journal := &testutil.MockLifecycleEventRepo{}
	svc := newTestService(ctl, journal)

	err := svc.Stop(context.Background())
	require.ErrorIs(t, err, toolErr)

	require.Len(t, journal.Events, 1)
	assert.Equal(t, domain.ActionStop, journal.Events[0].Action)
	assert.Equal(t, 1, journal.Events[0].ExitCode)
	require.NotNil(t, journal.Events[0].Error)
	assert.Contains(t, *journal.Events[0].Error, "exit status 1")
}

func TestService_PreflightFailureRecordsExitOne(t *testing.T) {
	ctl := &fakeController{startErr: fmt.Errorf("%w: /opt/pg", pgctl.ErrInstallationRoot)}
	journal := &testutil.MockLifecycleEventRepo{}

	err := newTestService(ctl, journal).Start(context.Background())
	require.ErrorIs(t, err, pgctl.ErrInstallationRoot)
	require.Len(t, journal.Events, 1)
	assert.Equal(t, 1, journal.Events[0].ExitCode)
}

func TestService_Status(t *testing.T) {
	tests := []struct {
		name     string
		status   pgctl.Status
		err      error
		wantCode int
		wantErr  bool
	}{
		{name: "running", status: pgctl.Status{Running: true}, wantCode: 0},
		{name: "not running", status: pgctl.Status{Running: false}, wantCode: 3},
		{name: "tool failure", err: &pgctl.ExitError{Command: "pg_ctl status", Code: 4}, wantCode: 4, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			journal := &testutil.MockLifecycleEventRepo{}
			svc := newTestService(&fakeController{status: tt.status, statusErr: tt.err}, journal)

			st, err := svc.Status(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.status.Running, st.Running)
			}
			require.Len(t, journal.Events, 1)
			assert.Equal(t, domain.ActionStatus, journal.Events[0].Action)
			assert.Equal(t, tt.wantCode, journal.Events[0].ExitCode)
		})
	}
}

func TestService_JournalFailureDoesNotChangeOutcome(t *testing.T) {
	journal := &testutil.MockLifecycleEventRepo{
		RecordFn: func(context.Context, *domain.LifecycleEvent) error {
			return errors.New("disk full")
		},
	}
	svc := newTestService(&fakeController{}, journal)
	require.NoError(t, svc.Start(context.Background()))

	toolErr := &pgctl.ExitError{Command: "pg_ctl stop", Code: 1}
	svc = newTestService(&fakeController{stopErr: toolErr}, journal)
	require.ErrorIs(t, svc.Stop(context.Background()), toolErr)
}

func TestService_CancelledContextStillJournals(t *testing.T) {
	var recordCtxErr error
	journal := &testutil.MockLifecycleEventRepo{
		RecordFn: func(ctx context.Context, _ *domain.LifecycleEvent) error {
			recordCtxErr = ctx.Err()
			return nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctl := &fakeController{startErr: context.Canceled}
	require.ErrorIs(t, newTestService(ctl, journal).Start(ctx), context.Canceled)
	assert.NoError(t, recordCtxErr)
	require.Len(t, journal.Events, 1)
}

func TestService_NilJournal(t *testing.T) {
	svc := newTestService(&fakeController{}, nil)
	require.NoError(t, svc.Start(context.Background()))

	_, err := svc.History(context.Background(), 10)
	require.ErrorIs(t, err, ErrNoJournal)
}

func TestService_History(t *testing.T) {
	journal := &testutil.MockLifecycleEventRepo{}
	svc := newTestService(&fakeController{}, journal)
	ctx := context.Background()

	require.NoError(t, svc.Start(ctx))
	require.NoError(t, svc.Stop(ctx))

	events, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.ActionStop, events[0].Action)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 7, ExitCode(fmt.Errorf("wrapped: %w", &pgctl.ExitError{Code: 7})))
}
