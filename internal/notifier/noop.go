package notifier

import "context"

// NoOpProvider swallows messages. Used when no relay is configured so
// the rest of the system keeps working without mail.
type NoOpProvider struct{}

func (NoOpProvider) Send(ctx context.Context, msg Message) error { return nil }
