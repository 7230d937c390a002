package ports

import "context"

// Sender emits a text message to a chat channel. Delivery is fire-and-forget
// from the caller's point of view; errors are reported but never retried.
type Sender interface {
	Send(ctx context.Context, channel string, text string) error
}
