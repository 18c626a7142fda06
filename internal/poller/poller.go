// Package poller confirms a PIX payment by short polling its status.
//
// A Session checks the status of one payment at a fixed interval until the
// provider reports it approved, the maximum duration elapses, or the session
// is cancelled. The success callback runs at most once per session and every
// terminal path releases the ticker and the deadline timer.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"pix_checkout/internal/domain/entities"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	DefaultInterval    = 3 * time.Second
	DefaultMaxDuration = 10 * time.Minute
)

var (
	ErrEmptyPaymentID  = errors.New("poller: empty payment id")
	ErrNilChecker      = errors.New("poller: nil status checker")
	ErrInvalidInterval = errors.New("poller: interval and max duration must be positive")
	ErrSessionStarted  = errors.New("poller: session already started")
)

// StatusChecker fetches the current status of a payment.
type StatusChecker interface {
	CheckPayment(ctx context.Context, paymentID string) (entities.PaymentStatus, error)
}

// CheckerFunc adapts a function to StatusChecker.
type CheckerFunc func(ctx context.Context, paymentID string) (entities.PaymentStatus, error)

func (f CheckerFunc) CheckPayment(ctx context.Context, paymentID string) (entities.PaymentStatus, error) {
	return f(ctx, paymentID)
}

// State of a session. Approved, TimedOut and Cancelled are terminal.
type State string

const (
	StateIdle      State = "idle"
	StatePolling   State = "polling"
	StateApproved  State = "approved"
	StateTimedOut  State = "timed_out"
	StateCancelled State = "cancelled"
)

func (s State) Terminal() bool {
	return s == StateApproved || s == StateTimedOut || s == StateCancelled
}

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeApproved  Outcome = "approved"
	OutcomeTimedOut  Outcome = "timed_out"
	OutcomeCancelled Outcome = "cancelled"
)

type Option func(*Session)

func WithInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

func WithMaxDuration(d time.Duration) Option {
	return func(s *Session) { s.maxDuration = d }
}

func WithClock(c clockwork.Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is one confirmation poll for one payment.
type Session struct {
	id          string
	paymentID   string
	checker     StatusChecker
	onSuccess   func()
	interval    time.Duration
	maxDuration time.Duration
	clock       clockwork.Clock
	observer    Observer
	logger      *zap.Logger

	mu        sync.Mutex
	state     State
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

type checkResult struct {
	attempt int
	status  entities.PaymentStatus
	err     error
}

// New builds an idle session. onSuccess may be nil.
func New(paymentID string, checker StatusChecker, onSuccess func(), opts ...Option) (*Session, error) {
	if paymentID == "" {
		return nil, ErrEmptyPaymentID
	}
	if checker == nil {
		return nil, ErrNilChecker
	}
	s := &Session{
		id:          uuid.NewString(),
		paymentID:   paymentID,
		checker:     checker,
		onSuccess:   onSuccess,
		interval:    DefaultInterval,
		maxDuration: DefaultMaxDuration,
		clock:       clockwork.NewRealClock(),
		observer:    nopObserver{},
		logger:      zap.NewNop(),
		state:       StateIdle,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 || s.maxDuration <= 0 {
		return nil, ErrInvalidInterval
	}
	s.logger = s.logger.With(
		zap.String("component", "poller"),
		zap.String("session_id", s.id),
		zap.String("payment_id", paymentID),
	)
	return s, nil
}

// Start begins polling in a background goroutine. Cancelling ctx cancels the session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrSessionStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StatePolling
	s.startedAt = s.clock.Now()

	// Timers are armed before Start returns so that callers driving a fake
	// clock observe them immediately.
	ticker := s.clock.NewTicker(s.interval)
	deadline := s.clock.NewTimer(s.maxDuration)
	s.mu.Unlock()

	s.logger.Info("poll session started",
		zap.Duration("interval", s.interval),
		zap.Duration("max_duration", s.maxDuration),
	)
	go s.run(runCtx, ticker, deadline)
	return nil
}

// Cancel stops the session. It is a no-op on a terminal session.
func (s *Session) Cancel() {
	s.mu.Lock()
	switch {
	case s.state == StateIdle:
		s.state = StateCancelled
		close(s.done)
		s.mu.Unlock()
		s.observer.SessionFinished(s.paymentID, OutcomeCancelled, 0)
		return
	case s.cancel != nil:
		cancel := s.cancel
		s.mu.Unlock()
		cancel()
		return
	}
	s.mu.Unlock()
}

func (s *Session) run(ctx context.Context, ticker clockwork.Ticker, deadline clockwork.Timer) {
	release := func() {
		ticker.Stop()
		deadline.Stop()
	}

	results := make(chan checkResult, 1)
	inFlight := false
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			release()
			s.finish(OutcomeCancelled)
			return

		case <-deadline.Chan():
			release()
			s.finish(OutcomeTimedOut)
			return

		case <-ticker.Chan():
			attempt++
			if inFlight {
				s.logger.Debug("previous check still in flight, skipping tick", zap.Int("attempt", attempt))
				s.observer.CheckSkipped(s.paymentID, attempt)
				continue
			}
			inFlight = true
			go func(n int) {
				status, err := s.checker.CheckPayment(ctx, s.paymentID)
				results <- checkResult{attempt: n, status: status, err: err}
			}(attempt)

		case res := <-results:
			inFlight = false
			s.observer.CheckCompleted(s.paymentID, res.attempt, res.status, res.err)
			if res.err != nil {
				s.logger.Warn("status check failed", zap.Int("attempt", res.attempt), zap.Error(res.err))
				continue
			}
			if res.status != entities.PaymentStatusApproved {
				s.logger.Debug("payment not approved yet", zap.Int("attempt", res.attempt), zap.String("status", string(res.status)))
				continue
			}
			release()
			s.finish(OutcomeApproved)
			return
		}
	}
}

func (s *Session) finish(outcome Outcome) {
	s.mu.Lock()
	s.state = State(outcome)
	elapsed := s.clock.Since(s.startedAt)
	cancel := s.cancel
	s.mu.Unlock()

	// Releases the context of a check that may still be in flight.
	cancel()

	s.logger.Info("poll session finished", zap.String("outcome", string(outcome)), zap.Duration("elapsed", elapsed))
	s.observer.SessionFinished(s.paymentID, outcome, elapsed)
	if outcome == OutcomeApproved && s.onSuccess != nil {
		s.onSuccess()
	}
	close(s.done)
}

func (s *Session) ID() string { return s.id }

func (s *Session) PaymentID() string { return s.paymentID }

func (s *Session) Interval() time.Duration { return s.interval }

func (s *Session) MaxDuration() time.Duration { return s.maxDuration }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartedAt is the zero time until Start is called.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Done is closed once the session reaches a terminal state and its timers are released.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Outcome reports how the session ended; ok is false while it is still running.
func (s *Session) Outcome() (Outcome, bool) {
	st := s.State()
	if !st.Terminal() {
		return "", false
	}
	return Outcome(st), true
}

// Wait blocks until the session ends or ctx is done.
func (s *Session) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-s.done:
		out, _ := s.Outcome()
		return out, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
