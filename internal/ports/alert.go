package ports

import "context"

// SMSProvider delivers an alert message to a set of phone numbers. Send
// reports whether at least one message went out; transport errors are
// returned for logging but callers treat delivery as best effort.
type SMSProvider interface {
	Name() string
	Configured() bool
	Send(ctx context.Context, message string, numbers []string) (bool, error)
}
