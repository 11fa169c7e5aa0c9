// Package notify delivers best-effort notifications about ledger events.
//
// Delivery never affects the outcome of the mutation that triggered it:
// failures are logged and swallowed by Dispatcher.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
)

// Message is one notification to one recipient.
type Message struct {
	Kind    string
	To      string
	ToName  string
	Subject string
	Body    string
}

// Notifier delivers a message.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Multi fans a message out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct {
	log *logging.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	n.log.WithContext(ctx).WithFields(map[string]interface{}{
		"kind":    msg.Kind,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("notification")
	return nil
}

// Dispatcher runs deliveries in the background.
type Dispatcher struct {
	notifier Notifier
	log      *logging.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. A nil notifier drops every message.
func NewDispatcher(n Notifier, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Default("notify")
	}
	return &Dispatcher{notifier: n, log: log, timeout: 30 * time.Second}
}

// Dispatch sends each message on its own goroutine and returns immediately.
// The caller's cancellation does not abort delivery; trace values are kept.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs ...Message) {
	if d == nil || d.notifier == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	for _, msg := range msgs {
		if msg.To == "" {
			continue
		}
		msg := msg
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			sendCtx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()
			if err := d.notifier.Notify(sendCtx, msg); err != nil {
				d.log.WithContext(base).WithError(err).WithFields(map[string]interface{}{
					"kind": msg.Kind,
					"to":   msg.To,
				}).Warn("notification delivery failed")
			}
		}()
	}
}

// Wait blocks until every dispatched delivery has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
