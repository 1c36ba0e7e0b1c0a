// Package notify delivers the one-line outcome of every sync run.
package notify

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/agendasync/internal/logging"
)

// Notifier sends a short message to the student.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// LogNotifier writes notifications to the log; it is the default channel
// and the one used in daemon mode without email configured.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, title, body string) error {
	n.log.Info(ctx, title, "notification", body)
	return nil
}

// Multi fans a notification out to every channel and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, title, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
