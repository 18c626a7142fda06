package entities

import (
	"errors"
	"fmt"
	"sync"
)

var ErrInvalidCheckoutTransition = errors.New("invalid checkout transition")

// CheckoutState is the display state of a PIX checkout.
type CheckoutState string

const (
	CheckoutIdle                 CheckoutState = "idle"
	CheckoutLoading              CheckoutState = "loading"
	CheckoutAwaitingConfirmation CheckoutState = "awaiting_confirmation"
	CheckoutConfirmed            CheckoutState = "confirmed"
	CheckoutExpired              CheckoutState = "expired"
)

// Checkout tracks one buyer's way through a PIX payment.
//
// Transitions:
//   - Begin:   idle | expired | awaiting_confirmation -> loading
//   - Fail:    loading -> idle
//   - Issue:   loading -> awaiting_confirmation
//   - Confirm: awaiting_confirmation -> confirmed
//   - Expire:  awaiting_confirmation -> expired
//   - Cancel:  loading | awaiting_confirmation -> idle
//
// Confirmed is terminal. Checkout is safe for concurrent use.
type Checkout struct {
	mu     sync.Mutex
	state  CheckoutState
	charge *PixCharge
}

func NewCheckout() *Checkout {
	return &Checkout{state: CheckoutIdle}
}

func (c *Checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Charge returns the charge issued for the current attempt, if any.
func (c *Checkout) Charge() (PixCharge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.charge == nil {
		return PixCharge{}, false
	}
	return *c.charge, true
}

func (c *Checkout) Begin() error {
	return c.transition(CheckoutLoading, func() { c.charge = nil },
		CheckoutIdle, CheckoutExpired, CheckoutAwaitingConfirmation)
}

func (c *Checkout) Fail() error {
	return c.transition(CheckoutIdle, nil, CheckoutLoading)
}

func (c *Checkout) Issue(charge PixCharge) error {
	return c.transition(CheckoutAwaitingConfirmation, func() { c.charge = &charge }, CheckoutLoading)
}

func (c *Checkout) Confirm() error {
	return c.transition(CheckoutConfirmed, nil, CheckoutAwaitingConfirmation)
}

func (c *Checkout) Expire() error {
	return c.transition(CheckoutExpired, nil, CheckoutAwaitingConfirmation)
}

func (c *Checkout) Cancel() error {
	return c.transition(CheckoutIdle, func() { c.charge = nil }, CheckoutLoading, CheckoutAwaitingConfirmation)
}

func (c *Checkout) transition(to CheckoutState, apply func(), from ...CheckoutState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range from {
		if c.state == f {
			c.state = to
			if apply != nil {
				apply()
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidCheckoutTransition, c.state, to)
}
