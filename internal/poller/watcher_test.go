package poller

import (
	"context"
	"sync/atomic"
	"testing"

	"pix_checkout/internal/domain/entities"

	"github.com/stretchr/testify/require"
)

func TestWatcher_SupersedesPreviousSession(t *testing.T) {
	fc := newTrackingClock()
	w := NewWatcher(WithClock(fc))

	var calls atomic.Int32
	checker := scriptedChecker(&calls, status(entities.PaymentStatusApproved))

	var firstSuccess, secondSuccess atomic.Int32
	first, err := w.Watch(context.Background(), "first", checker, func() { firstSuccess.Add(1) })
	require.NoError(t, err)

	second, err := w.Watch(context.Background(), "second", checker, func() { secondSuccess.Add(1) })
	require.NoError(t, err)

	require.Equal(t, StateCancelled, first.State(), "previous session must be released before the next starts")
	require.Same(t, second, w.Current())

	fc.Advance(DefaultInterval)
	waitDone(t, second)

	require.Zero(t, firstSuccess.Load())
	require.EqualValues(t, 1, secondSuccess.Load())
	require.EqualValues(t, 1, calls.Load())
}

func TestWatcher_Stop(t *testing.T) {
	fc := newTrackingClock()
	w := NewWatcher(WithClock(fc))

	var calls atomic.Int32
	s, err := w.Watch(context.Background(), "p", scriptedChecker(&calls, status(entities.PaymentStatusPending)), nil)
	require.NoError(t, err)

	w.Stop()
	require.Equal(t, StateCancelled, s.State())
	require.Nil(t, w.Current())
	requireTimersReleased(t, fc)

	w.Stop()
}

func TestWatcher_InvalidSessionKeepsCurrent(t *testing.T) {
	fc := newTrackingClock()
	w := NewWatcher(WithClock(fc))

	var calls atomic.Int32
	s, err := w.Watch(context.Background(), "p", scriptedChecker(&calls, status(entities.PaymentStatusPending)), nil)
	require.NoError(t, err)

	_, err = w.Watch(context.Background(), "", scriptedChecker(&calls, status(entities.PaymentStatusPending)), nil)
	require.ErrorIs(t, err, ErrEmptyPaymentID)
	require.Same(t, s, w.Current())
	require.Equal(t, StatePolling, s.State())

	w.Stop()
}
