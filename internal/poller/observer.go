package poller

import (
	"time"

	"pix_checkout/internal/domain/entities"
)

// Observer receives session events. Methods are called from the session
// goroutine and must not block.
type Observer interface {
	CheckCompleted(paymentID string, attempt int, status entities.PaymentStatus, err error)
	CheckSkipped(paymentID string, attempt int)
	SessionFinished(paymentID string, outcome Outcome, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) CheckCompleted(string, int, entities.PaymentStatus, error) {}
func (nopObserver) CheckSkipped(string, int)                                  {}
func (nopObserver) SessionFinished(string, Outcome, time.Duration)            {}

type multiObserver []Observer

// Observers fans events out to every non-nil observer, in order.
func Observers(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiObserver) CheckCompleted(paymentID string, attempt int, status entities.PaymentStatus, err error) {
	for _, o := range m {
		o.CheckCompleted(paymentID, attempt, status, err)
	}
}

func (m multiObserver) CheckSkipped(paymentID string, attempt int) {
	for _, o := range m {
		o.CheckSkipped(paymentID, attempt)
	}
}

func (m multiObserver) SessionFinished(paymentID string, outcome Outcome, elapsed time.Duration) {
	for _, o := range m {
		o.SessionFinished(paymentID, outcome, elapsed)
	}
}
