package usecase

import (
	"context"
	"errors"
	"sync"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/infrastructure/logging"
	"pix_checkout/internal/poller"
	"pix_checkout/internal/usecase/interfaces"

	"go.uber.org/zap"
)

// ErrCheckoutCancelled is returned by Start when Cancel ran while the charge
// was being created.
var ErrCheckoutCancelled = errors.New("checkout cancelled")

// CheckoutUseCase runs one buyer's PIX checkout: it issues a charge, then
// waits for the confirmation poller to approve or expire it.
//
// Starting a new checkout supersedes the previous one; at most one poll
// session is active at any time.
type CheckoutUseCase struct {
	api      interfaces.IPixPaymentAPI
	watcher  *poller.Watcher
	checkout *entities.Checkout
	logger   *zap.Logger

	mu  sync.Mutex
	run *checkoutRun
	// pending cancels the charge creation in flight; attempt identifies it.
	pending context.CancelFunc
	attempt uint64
}

type checkoutRun struct {
	session *poller.Session
	// settled is closed after the session outcome has been applied to the checkout.
	settled chan struct{}
}

func NewCheckoutUseCase(api interfaces.IPixPaymentAPI, watcher *poller.Watcher, logger *zap.Logger) *CheckoutUseCase {
	if watcher == nil {
		watcher = poller.NewWatcher()
	}
	return &CheckoutUseCase{
		api:      api,
		watcher:  watcher,
		checkout: entities.NewCheckout(),
		logger:   logging.Component(logger, "checkout"),
	}
}

// Start creates the charge for intent and starts confirming it. On failure
// the checkout returns to idle and the error is handed back to the caller.
// The lock is not held during creation, so Cancel can abort a loading
// checkout; a second Start while loading fails with ErrInvalidCheckoutTransition.
func (u *CheckoutUseCase) Start(ctx context.Context, intent entities.PaymentIntent, opts ...poller.Option) (entities.PixCharge, error) {
	u.mu.Lock()
	u.stopLocked()
	if err := u.checkout.Begin(); err != nil {
		u.mu.Unlock()
		return entities.PixCharge{}, err
	}
	u.attempt++
	attempt := u.attempt
	createCtx, cancelCreate := context.WithCancel(ctx)
	u.pending = cancelCreate
	u.mu.Unlock()

	charge, err := u.api.CreatePixPayment(createCtx, intent)

	u.mu.Lock()
	defer u.mu.Unlock()
	cancelCreate()
	if u.attempt != attempt {
		u.logger.Info("checkout cancelled while loading")
		return entities.PixCharge{}, ErrCheckoutCancelled
	}
	u.pending = nil

	if err != nil {
		u.logger.Warn("charge creation failed", zap.Error(err))
		_ = u.checkout.Fail()
		return entities.PixCharge{}, err
	}
	if err := u.checkout.Issue(charge); err != nil {
		return entities.PixCharge{}, err
	}

	confirm := func() {
		if err := u.checkout.Confirm(); err != nil {
			u.logger.Warn("confirm rejected", zap.String("payment_id", charge.ID), zap.Error(err))
		}
	}
	session, err := u.watcher.Watch(ctx, charge.ID, poller.CheckerFunc(u.api.CheckPayment), confirm, opts...)
	if err != nil {
		_ = u.checkout.Cancel()
		return entities.PixCharge{}, err
	}

	run := &checkoutRun{session: session, settled: make(chan struct{})}
	u.run = run
	go u.follow(run)

	u.logger.Info("awaiting confirmation", zap.String("payment_id", charge.ID), zap.String("session_id", session.ID()))
	return charge, nil
}

func (u *CheckoutUseCase) follow(run *checkoutRun) {
	defer close(run.settled)
	<-run.session.Done()

	outcome, _ := run.session.Outcome()
	switch outcome {
	case poller.OutcomeTimedOut:
		_ = u.checkout.Expire()
	case poller.OutcomeCancelled:
		_ = u.checkout.Cancel()
	}
	u.logger.Info("checkout settled", zap.String("payment_id", run.session.PaymentID()), zap.String("outcome", string(outcome)), zap.String("state", string(u.checkout.State())))
}

// Wait blocks until the current checkout settles or ctx is done, and returns
// the resulting state.
func (u *CheckoutUseCase) Wait(ctx context.Context) (entities.CheckoutState, error) {
	u.mu.Lock()
	run := u.run
	u.mu.Unlock()

	if run == nil {
		return u.checkout.State(), nil
	}
	select {
	case <-run.settled:
		return u.checkout.State(), nil
	case <-ctx.Done():
		return u.checkout.State(), ctx.Err()
	}
}

// Cancel abandons the current checkout: it aborts a charge creation in
// flight or releases the poll session.
func (u *CheckoutUseCase) Cancel() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.pending != nil {
		u.pending()
		u.pending = nil
		u.attempt++
		_ = u.checkout.Cancel()
		return
	}
	u.stopLocked()
}

func (u *CheckoutUseCase) stopLocked() {
	if u.run == nil {
		return
	}
	u.watcher.Stop()
	<-u.run.settled
	u.run = nil
}

func (u *CheckoutUseCase) State() entities.CheckoutState {
	return u.checkout.State()
}

func (u *CheckoutUseCase) Charge() (entities.PixCharge, bool) {
	return u.checkout.Charge()
}
