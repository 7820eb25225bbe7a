package alerting

import (
	"context"
	"fmt"
	"io"
)

// WriterNotifier prints alerts instead of delivering them.
type WriterNotifier struct {
	w io.Writer
}

// NewWriterNotifier builds a notifier writing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify writes the message text followed by a newline.
func (n *WriterNotifier) Notify(ctx context.Context, msg Message) error {
	if _, err := fmt.Fprintln(n.w, msg.Text); err != nil {
		return fmt.Errorf("write alert: %w", err)
	}
	return nil
}

var _ Notifier = (*WriterNotifier)(nil)
