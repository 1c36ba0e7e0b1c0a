package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/agendasync/internal/logging"
	"github.com/dmitrijs2005/agendasync/internal/models"
)

type memRepo struct {
	mu    sync.Mutex
	s     models.SyncSchedule
	saves int
	err   error
}

func (m *memRepo) Load(context.Context) (models.SyncSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, m.err
}

func (m *memRepo) Save(_ context.Context, s models.SyncSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.s = s
	return m.err
}

type fakeRunner struct {
	res     models.SyncResult
	err     error
	panics  bool
	release chan struct{}
	started chan struct{}
	calls   int
}

func (f *fakeRunner) Run(context.Context) (models.SyncResult, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.panics {
		panic("selector exploded")
	}
	return f.res, f.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
	err    error
	// onNotify runs before the notification is recorded.
	onNotify func()
}

func (f *fakeNotifier) Notify(_ context.Context, title, body string) error {
	if f.onNotify != nil {
		f.onNotify()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	f.bodies = append(f.bodies, body)
	return f.err
}

type fakeTimer struct{ stopped bool }

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type armed struct {
	d time.Duration
	f func()
	t *fakeTimer
}

func newScheduler(repo *memRepo, r Runner, n *fakeNotifier, now time.Time) (*Scheduler, *[]armed) {
	s := New(repo, r, n, logging.NewNop())
	s.now = func() time.Time { return now }
	var timers []armed
	s.afterFunc = func(d time.Duration, f func()) stopper {
		t := &fakeTimer{}
		timers = append(timers, armed{d: d, f: f, t: t})
		return t
	}
	return s, &timers
}

func at(h, m int) time.Time {
	return time.Date(2025, 1, 10, h, m, 0, 0, time.UTC)
}

func TestNextSync(t *testing.T) {
	daily := models.SyncSchedule{Enabled: true, Frequency: models.FrequencyDaily, Time: "08:00"}
	weekly := models.SyncSchedule{Enabled: true, Frequency: models.FrequencyWeekly, Time: "08:00"}

	tests := []struct {
		name   string
		s      models.SyncSchedule
		now    time.Time
		want   time.Time
		wantOK bool
	}{
		{"daily after time rolls to tomorrow", daily, at(9, 0), time.Date(2025, 1, 11, 8, 0, 0, 0, time.UTC), true},
		{"daily before time fires today", daily, at(7, 0), at(8, 0), true},
		{"exactly at time rolls over", daily, at(8, 0), time.Date(2025, 1, 11, 8, 0, 0, 0, time.UTC), true},
		{"weekly after time adds a week", weekly, at(9, 0), time.Date(2025, 1, 17, 8, 0, 0, 0, time.UTC), true},
		{"weekly before time fires today", weekly, at(7, 0), at(8, 0), true},
		{"manual", models.SyncSchedule{Enabled: true, Frequency: models.FrequencyManual, Time: "08:00"}, at(7, 0), time.Time{}, false},
		{"disabled", models.SyncSchedule{Frequency: models.FrequencyDaily, Time: "08:00"}, at(7, 0), time.Time{}, false},
		{"bad time", models.SyncSchedule{Enabled: true, Frequency: models.FrequencyDaily, Time: "8am"}, at(7, 0), time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextSync(tt.s, tt.now)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestScheduleNext_ArmsAndPersists(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{s: models.SyncSchedule{Enabled: true, Frequency: models.FrequencyDaily, Time: "08:00"}}
	s, timers := newScheduler(repo, &fakeRunner{}, &fakeNotifier{}, at(9, 0))

	require.NoError(t, s.ScheduleNext(ctx))
	require.Len(t, *timers, 1)
	assert.Equal(t, 23*time.Hour, (*timers)[0].d)
	require.NotNil(t, repo.s.NextSync)
	assert.True(t, repo.s.NextSync.Equal(time.Date(2025, 1, 11, 8, 0, 0, 0, time.UTC)))

	// Re-arming replaces the previous timer.
	require.NoError(t, s.ScheduleNext(ctx))
	require.Len(t, *timers, 2)
	assert.True(t, (*timers)[0].t.stopped)
}

func TestScheduleNext_ManualClearsNextSync(t *testing.T) {
	next := at(8, 0)
	repo := &memRepo{s: models.SyncSchedule{Enabled: true, Frequency: models.FrequencyManual, Time: "08:00", NextSync: &next}}
	s, timers := newScheduler(repo, &fakeRunner{}, &fakeNotifier{}, at(7, 0))

	require.NoError(t, s.ScheduleNext(context.Background()))
	assert.Empty(t, *timers)
	assert.Nil(t, repo.s.NextSync)
}

func TestFire_RunsOnceAndRearms(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{s: models.SyncSchedule{Enabled: true, Frequency: models.FrequencyDaily, Time: "08:00"}}
	runner := &fakeRunner{res: models.SyncResult{Success: true, ExamsAdded: 2}}
	n := &fakeNotifier{}
	s, timers := newScheduler(repo, runner, n, at(7, 0))

	require.NoError(t, s.Start(ctx))
	require.Len(t, *timers, 1)
	assert.Equal(t, time.Hour, (*timers)[0].d)

	(*timers)[0].f()

	assert.Equal(t, 1, runner.calls)
	assert.Len(t, *timers, 2)
	require.NotNil(t, repo.s.LastSync)
	assert.Equal(t, []string{"Sync completed"}, n.titles)
	assert.Contains(t, n.bodies[0], "2 exams")

	s.Stop()
	assert.True(t, (*timers)[1].t.stopped)
	(*timers)[1].f()
	assert.Equal(t, 1, runner.calls)
}

func TestTriggerSync_ConcurrencyGuard(t *testing.T) {
	ctx := context.Background()
	next := at(8, 0)
	repo := &memRepo{s: models.SyncSchedule{Enabled: true, Frequency: models.FrequencyDaily, Time: "08:00", NextSync: &next}}
	runner := &fakeRunner{
		res:     models.SyncResult{Success: true},
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	n := &fakeNotifier{}
	s, _ := newScheduler(repo, runner, n, at(7, 0))

	done := make(chan models.SyncResult)
	go func() { done <- s.TriggerSync(ctx) }()
	<-runner.started
	assert.True(t, s.Running())

	busy := s.TriggerSync(ctx)
	assert.False(t, busy.Success)
	assert.Equal(t, "Sync already in progress", busy.Error)

	close(runner.release)
	first := <-done
	assert.True(t, first.Success)
	assert.False(t, s.Running())
	assert.Equal(t, 1, runner.calls)

	require.NotNil(t, repo.s.NextSync)
	assert.True(t, repo.s.NextSync.Equal(next))
}

func TestTriggerSync_NotifiesAfterReleasingGuard(t *testing.T) {
	repo := &memRepo{s: models.DefaultSchedule()}
	runner := &fakeRunner{res: models.SyncResult{Success: true}}
	n := &fakeNotifier{}
	s, _ := newScheduler(repo, runner, n, at(7, 0))

	var (
		runningDuringNotify bool
		nested              models.SyncResult
		notified            int
	)
	n.onNotify = func() {
		notified++
		if notified == 1 {
			runningDuringNotify = s.Running()
			nested = s.TriggerSync(context.Background())
		}
	}

	res := s.TriggerSync(context.Background())
	assert.True(t, res.Success)
	assert.False(t, runningDuringNotify)
	assert.True(t, nested.Success, "a sync requested while notifying is not rejected as busy")
	assert.Equal(t, 2, runner.calls)
	assert.Len(t, n.titles, 2)
}

func TestTriggerSync_FailureKeepsLastSync(t *testing.T) {
	repo := &memRepo{s: models.DefaultSchedule()}
	runner := &fakeRunner{res: models.Failed(errors.New("portal down")), err: errors.New("portal down")}
	n := &fakeNotifier{err: errors.New("mail down")}
	s, _ := newScheduler(repo, runner, n, at(7, 0))

	res := s.TriggerSync(context.Background())
	assert.False(t, res.Success)
	assert.Nil(t, repo.s.LastSync)
	assert.Equal(t, []string{"Sync failed"}, n.titles)
	assert.Contains(t, n.bodies[0], "portal down")

	last, ok := s.LastResult()
	require.True(t, ok)
	assert.Equal(t, res, last)
}

func TestTriggerSync_RecoversPanic(t *testing.T) {
	repo := &memRepo{s: models.DefaultSchedule()}
	n := &fakeNotifier{}
	s, _ := newScheduler(repo, &fakeRunner{panics: true}, n, at(7, 0))

	res := s.TriggerSync(context.Background())
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "selector exploded")
	assert.False(t, s.Running())
	assert.Len(t, n.titles, 1)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	last := at(6, 0)
	repo := &memRepo{s: models.SyncSchedule{Frequency: models.FrequencyDaily, Time: "07:00", LastSync: &last}}
	s, timers := newScheduler(repo, &fakeRunner{}, &fakeNotifier{}, at(7, 0))

	err := s.Update(ctx, models.SyncSchedule{Enabled: true, Frequency: "hourly", Time: "25:00"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frequency must be one of")
	assert.Zero(t, repo.saves)

	require.NoError(t, s.Update(ctx, models.SyncSchedule{Enabled: true, Frequency: models.FrequencyWeekly, Time: "08:30"}))
	assert.Equal(t, models.FrequencyWeekly, repo.s.Frequency)
	require.NotNil(t, repo.s.LastSync)
	assert.True(t, repo.s.LastSync.Equal(last))
	require.Len(t, *timers, 1)
	assert.Equal(t, 90*time.Minute, (*timers)[0].d)
}
