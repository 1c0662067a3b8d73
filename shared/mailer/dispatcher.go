package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultTimeout     = 8 * time.Second
	DefaultMaxInFlight = 32
)

var (
	ErrTimeout          = errors.New("mail dispatch timed out")
	ErrTransportFailure = errors.New("mail transport failed")
	ErrDispatcherBusy   = errors.New("too many mail sends in flight")
)

// Dispatcher sends mail through a Transport and always returns within its timeout.
//
// The transport receives a context that is cancelled at the deadline. Transports
// that ignore it (the gomail Mailer cannot abort an open SMTP session) keep running
// in the background and their result is only logged. Such orphaned sends still hold
// one of maxInFlight slots until they finish, so their number is capped.
// When every slot is taken, Send makes no attempt at all and returns ErrDispatcherBusy.
type Dispatcher struct {
	transport Transport
	logger    *zerolog.Logger
	timeout   time.Duration
	slots     *semaphore.Weighted
	metrics   *dispatchMetrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithMaxInFlight overrides DefaultMaxInFlight.
func WithMaxInFlight(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.slots = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRegisterer registers the dispatcher metrics with reg.
func WithRegisterer(reg prometheus.Registerer) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics.register(reg)
	}
}

// NewDispatcher creates a Dispatcher on top of transport.
func NewDispatcher(transport Transport, logger *zerolog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		transport: transport,
		logger:    logger,
		timeout:   DefaultTimeout,
		slots:     semaphore.NewWeighted(DefaultMaxInFlight),
		metrics:   newDispatchMetrics(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Timeout returns the configured upper bound of a Send call.
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

// Send delivers email using the dispatcher's default timeout.
func (d *Dispatcher) Send(ctx context.Context, email Email) error {
	return d.SendWithTimeout(ctx, email, d.timeout)
}

// SendWithTimeout delivers email or fails with ErrTimeout once timeout elapses.
// Cancelling ctx does not abort the send; only the timeout does.
func (d *Dispatcher) SendWithTimeout(ctx context.Context, email Email, timeout time.Duration) error {
	if len(email.To) == 0 {
		return ErrNoRecipients
	}
	if timeout <= 0 {
		timeout = d.timeout
	}

	if !d.slots.TryAcquire(1) {
		d.metrics.observe(outcomeBusy, 0)
		return ErrDispatcherBusy
	}
	d.metrics.inFlight.Inc()

	start := time.Now()
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)

	// settled is claimed by whichever side decides the outcome first.
	var settled atomic.Bool
	done := make(chan error, 1)

	go func() {
		defer d.slots.Release(1)
		defer d.metrics.inFlight.Dec()
		defer cancel()

		err := d.transport.Send(sendCtx, email)
		if settled.CompareAndSwap(false, true) {
			done <- err
			return
		}

		elapsed := time.Since(start)
		if err != nil {
			d.metrics.observe(outcomeAbandonedFailed, elapsed)
			d.logger.Warn().Err(err).
				Strs("to", email.To).
				Dur("elapsed", elapsed).
				Msg("abandoned mail send failed")
			return
		}
		d.metrics.observe(outcomeAbandonedSent, elapsed)
		d.logger.Info().
			Strs("to", email.To).
			Dur("elapsed", elapsed).
			Msg("abandoned mail send completed after timeout")
	}()

	var err error
	select {
	case err = <-done:
	case <-sendCtx.Done():
		if settled.CompareAndSwap(false, true) {
			d.metrics.observe(outcomeTimeout, time.Since(start))
			return fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		// The transport finished at the deadline; its result wins.
		err = <-done
	}

	elapsed := time.Since(start)
	if errors.Is(err, context.DeadlineExceeded) {
		d.metrics.observe(outcomeTimeout, elapsed)
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	if err != nil {
		d.metrics.observe(outcomeFailed, elapsed)
		return fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}

	d.metrics.observe(outcomeSent, elapsed)
	return nil
}
