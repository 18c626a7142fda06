package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pix_checkout/internal/domain/entities"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

type recordingObserver struct {
	mu       sync.Mutex
	statuses []entities.PaymentStatus
	errs     []error
	skipped  []int
	outcomes []Outcome

	completed chan int
	skips     chan int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		completed: make(chan int, 1024),
		skips:     make(chan int, 1024),
	}
}

func (o *recordingObserver) CheckCompleted(_ string, attempt int, status entities.PaymentStatus, err error) {
	o.mu.Lock()
	o.statuses = append(o.statuses, status)
	o.errs = append(o.errs, err)
	o.mu.Unlock()
	o.completed <- attempt
}

func (o *recordingObserver) CheckSkipped(_ string, attempt int) {
	o.mu.Lock()
	o.skipped = append(o.skipped, attempt)
	o.mu.Unlock()
	o.skips <- attempt
}

func (o *recordingObserver) SessionFinished(_ string, outcome Outcome, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()
}

func (o *recordingObserver) waitCompleted(t *testing.T) int {
	t.Helper()
	select {
	case n := <-o.completed:
		return n
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for a completed check")
		return 0
	}
}

func (o *recordingObserver) waitSkipped(t *testing.T) int {
	t.Helper()
	select {
	case n := <-o.skips:
		return n
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for a skipped tick")
		return 0
	}
}

func (o *recordingObserver) errorCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, err := range o.errs {
		if err != nil {
			n++
		}
	}
	return n
}

func (o *recordingObserver) finished() []Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Outcome(nil), o.outcomes...)
}

func scriptedChecker(calls *atomic.Int32, script ...func() (entities.PaymentStatus, error)) StatusChecker {
	return CheckerFunc(func(ctx context.Context, paymentID string) (entities.PaymentStatus, error) {
		n := int(calls.Add(1))
		if n <= len(script) {
			return script[n-1]()
		}
		return script[len(script)-1]()
	})
}

func status(s entities.PaymentStatus) func() (entities.PaymentStatus, error) {
	return func() (entities.PaymentStatus, error) { return s, nil }
}

func failure(err error) func() (entities.PaymentStatus, error) {
	return func() (entities.PaymentStatus, error) { return "", err }
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(waitTimeout):
		t.Fatalf("session %s did not finish, state=%s", s.PaymentID(), s.State())
	}
}

// trackingClock is a fake clock that counts tickers and timers not yet stopped.
type trackingClock struct {
	clockwork.FakeClock
	live atomic.Int32
}

func newTrackingClock() *trackingClock {
	return &trackingClock{FakeClock: clockwork.NewFakeClock()}
}

func (c *trackingClock) NewTicker(d time.Duration) clockwork.Ticker {
	c.live.Add(1)
	return &trackedTicker{Ticker: c.FakeClock.NewTicker(d), live: &c.live}
}

func (c *trackingClock) NewTimer(d time.Duration) clockwork.Timer {
	c.live.Add(1)
	return &trackedTimer{Timer: c.FakeClock.NewTimer(d), live: &c.live}
}

type trackedTicker struct {
	clockwork.Ticker
	live *atomic.Int32
	once sync.Once
}

func (t *trackedTicker) Stop() {
	t.Ticker.Stop()
	t.once.Do(func() { t.live.Add(-1) })
}

type trackedTimer struct {
	clockwork.Timer
	live *atomic.Int32
	once sync.Once
}

func (t *trackedTimer) Stop() bool {
	stopped := t.Timer.Stop()
	t.once.Do(func() { t.live.Add(-1) })
	return stopped
}

// requireTimersReleased must be called after the session's Done channel closed.
func requireTimersReleased(t *testing.T, fc *trackingClock) {
	t.Helper()
	require.Zero(t, fc.live.Load(), "ticker or deadline timer still running after the session ended")
}

func TestTrackingClock_CountsLiveTimers(t *testing.T) {
	fc := newTrackingClock()
	ticker := fc.NewTicker(time.Second)
	timer := fc.NewTimer(time.Minute)
	require.EqualValues(t, 2, fc.live.Load())

	ticker.Stop()
	ticker.Stop()
	timer.Stop()
	requireTimersReleased(t, fc)
}

func TestSession_ApprovedOnThirdCheck(t *testing.T) {
	fc := newTrackingClock()
	start := fc.Now()
	obs := newRecordingObserver()

	var calls atomic.Int32
	checker := scriptedChecker(&calls,
		status(entities.PaymentStatusPending),
		status(entities.PaymentStatusPending),
		status(entities.PaymentStatusApproved),
	)

	var successes atomic.Int32
	var approvedAt time.Time
	s, err := New("123", checker, func() {
		successes.Add(1)
		approvedAt = fc.Now()
	}, WithClock(fc), WithObserver(obs))
	require.NoError(t, err)
	require.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, StatePolling, s.State())

	for i := 1; i <= 3; i++ {
		fc.Advance(DefaultInterval)
		require.Equal(t, i, obs.waitCompleted(t))
	}
	waitDone(t, s)

	require.EqualValues(t, 1, successes.Load())
	require.Equal(t, 9*time.Second, approvedAt.Sub(start))
	out, ok := s.Outcome()
	require.True(t, ok)
	require.Equal(t, OutcomeApproved, out)
	requireTimersReleased(t, fc)

	fc.Advance(time.Minute)
	require.EqualValues(t, 3, calls.Load(), "no checks may run after approval")
	require.Equal(t, []Outcome{OutcomeApproved}, obs.finished())
}

func TestSession_TimesOutWithoutCallback(t *testing.T) {
	fc := newTrackingClock()
	obs := newRecordingObserver()

	var calls atomic.Int32
	checker := scriptedChecker(&calls, status(entities.PaymentStatusPending))

	var successes atomic.Int32
	s, err := New("456", checker, func() { successes.Add(1) }, WithClock(fc), WithObserver(obs))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	checksBeforeDeadline := int(DefaultMaxDuration/DefaultInterval) - 1
	for i := 0; i < checksBeforeDeadline; i++ {
		fc.Advance(DefaultInterval)
		obs.waitCompleted(t)
	}
	require.Equal(t, StatePolling, s.State())

	fc.Advance(DefaultInterval)
	waitDone(t, s)

	require.Zero(t, successes.Load())
	require.Equal(t, StateTimedOut, s.State())
	require.GreaterOrEqual(t, fc.Since(s.StartedAt()), DefaultMaxDuration)
	requireTimersReleased(t, fc)

	fc.Advance(time.Minute)
	require.LessOrEqual(t, int(calls.Load()), checksBeforeDeadline+1, "no checks may start after the deadline")
}

func TestSession_CheckFailureDoesNotStopPolling(t *testing.T) {
	fc := newTrackingClock()
	obs := newRecordingObserver()

	var calls atomic.Int32
	checker := scriptedChecker(&calls,
		status(entities.PaymentStatusPending),
		failure(errors.New("network unreachable")),
		status(entities.PaymentStatusPending),
	)

	var successes atomic.Int32
	s, err := New("789", checker, func() { successes.Add(1) }, WithClock(fc), WithObserver(obs))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	for i := 0; i < 3; i++ {
		fc.Advance(DefaultInterval)
		obs.waitCompleted(t)
	}

	require.EqualValues(t, 3, calls.Load())
	require.Equal(t, 1, obs.errorCount())
	require.Zero(t, successes.Load())
	require.Equal(t, StatePolling, s.State())

	s.Cancel()
	waitDone(t, s)
	require.Equal(t, StateCancelled, s.State())
	requireTimersReleased(t, fc)
}

func TestSession_CallbackFiresOnce(t *testing.T) {
	fc := newTrackingClock()
	obs := newRecordingObserver()

	var calls atomic.Int32
	checker := scriptedChecker(&calls, status(entities.PaymentStatusApproved))

	var successes atomic.Int32
	s, err := New("1", checker, func() { successes.Add(1) }, WithClock(fc), WithObserver(obs))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	fc.Advance(DefaultInterval)
	waitDone(t, s)
	for i := 0; i < 5; i++ {
		fc.Advance(DefaultInterval)
	}

	require.EqualValues(t, 1, successes.Load())
	require.EqualValues(t, 1, calls.Load())
}

func TestSession_SkipsTickWhileCheckInFlight(t *testing.T) {
	fc := newTrackingClock()
	obs := newRecordingObserver()

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls atomic.Int32
	checker := CheckerFunc(func(ctx context.Context, _ string) (entities.PaymentStatus, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return entities.PaymentStatusApproved, nil
	})

	var successes atomic.Int32
	s, err := New("slow", checker, func() { successes.Add(1) }, WithClock(fc), WithObserver(obs))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	fc.Advance(DefaultInterval)
	select {
	case <-started:
	case <-time.After(waitTimeout):
		t.Fatalf("first check never started")
	}

	fc.Advance(DefaultInterval)
	require.Equal(t, 2, obs.waitSkipped(t))

	close(release)
	waitDone(t, s)

	require.EqualValues(t, 1, calls.Load())
	require.EqualValues(t, 1, successes.Load())
}

func TestSession_CancelReleasesInFlightCheck(t *testing.T) {
	fc := newTrackingClock()

	started := make(chan struct{}, 1)
	observedCancel := make(chan struct{})
	checker := CheckerFunc(func(ctx context.Context, _ string) (entities.PaymentStatus, error) {
		started <- struct{}{}
		<-ctx.Done()
		close(observedCancel)
		return "", ctx.Err()
	})

	var successes atomic.Int32
	s, err := New("cancel-me", checker, func() { successes.Add(1) }, WithClock(fc))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	fc.Advance(DefaultInterval)
	<-started
	s.Cancel()
	waitDone(t, s)

	select {
	case <-observedCancel:
	case <-time.After(waitTimeout):
		t.Fatalf("in-flight check did not observe cancellation")
	}
	require.Equal(t, StateCancelled, s.State())
	require.Zero(t, successes.Load())
	requireTimersReleased(t, fc)

	s.Cancel()
	require.Equal(t, StateCancelled, s.State())
}

func TestSession_ContextCancellation(t *testing.T) {
	fc := newTrackingClock()
	var calls atomic.Int32
	s, err := New("ctx", scriptedChecker(&calls, status(entities.PaymentStatusPending)), nil, WithClock(fc))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	out, err := s.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeCancelled, out)
}

func TestSession_CancelBeforeStart(t *testing.T) {
	obs := newRecordingObserver()
	var calls atomic.Int32
	s, err := New("idle", scriptedChecker(&calls, status(entities.PaymentStatusPending)), nil, WithObserver(obs))
	require.NoError(t, err)

	s.Cancel()
	waitDone(t, s)
	require.Equal(t, StateCancelled, s.State())
	require.ErrorIs(t, s.Start(context.Background()), ErrSessionStarted)
	require.Equal(t, []Outcome{OutcomeCancelled}, obs.finished())
}

func TestSession_StartTwice(t *testing.T) {
	fc := newTrackingClock()
	var calls atomic.Int32
	s, err := New("twice", scriptedChecker(&calls, status(entities.PaymentStatusPending)), nil, WithClock(fc))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	require.ErrorIs(t, s.Start(context.Background()), ErrSessionStarted)
	s.Cancel()
	waitDone(t, s)
}

func TestSession_WaitHonoursContext(t *testing.T) {
	fc := newTrackingClock()
	var calls atomic.Int32
	s, err := New("wait", scriptedChecker(&calls, status(entities.PaymentStatusPending)), nil, WithClock(fc))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer s.Cancel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_Validation(t *testing.T) {
	var calls atomic.Int32
	checker := scriptedChecker(&calls, status(entities.PaymentStatusPending))

	_, err := New("", checker, nil)
	require.ErrorIs(t, err, ErrEmptyPaymentID)

	_, err = New("1", nil, nil)
	require.ErrorIs(t, err, ErrNilChecker)

	_, err = New("1", checker, nil, WithInterval(0))
	require.ErrorIs(t, err, ErrInvalidInterval)

	_, err = New("1", checker, nil, WithMaxDuration(-time.Second))
	require.ErrorIs(t, err, ErrInvalidInterval)

	s, err := New("1", checker, nil, WithInterval(time.Second), WithMaxDuration(time.Minute))
	require.NoError(t, err)
	require.Equal(t, time.Second, s.Interval())
	require.Equal(t, time.Minute, s.MaxDuration())
	require.NotEmpty(t, s.ID())
}

func TestObservers_FanOut(t *testing.T) {
	a, b := newRecordingObserver(), newRecordingObserver()
	o := Observers(a, nil, b)

	o.CheckCompleted("1", 1, entities.PaymentStatusPending, nil)
	o.CheckSkipped("1", 2)
	o.SessionFinished("1", OutcomeTimedOut, time.Second)

	for _, rec := range []*recordingObserver{a, b} {
		require.Equal(t, 1, rec.waitCompleted(t))
		require.Equal(t, 2, rec.waitSkipped(t))
		require.Equal(t, []Outcome{OutcomeTimedOut}, rec.finished())
	}
}
