package dispatcher

import (
	"context"
	"time"
)

// Event is one editor command as it arrives from the input layer, e.g.
// ":TOKEN:MOVE:" with args ["P2", "400", "300"].
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time

	ctx context.Context
}

// NewEvent builds an event bound to ctx.
func NewEvent(ctx context.Context, command string, args ...string) Event {
	return Event{Command: command, Args: args, Timestamp: time.Now(), ctx: ctx}
}

// Context returns the event's context, never nil. Long running handlers
// such as playback stop when it is cancelled.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// Arg returns the i-th argument or "" when absent.
func (e Event) Arg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	return e.Args[i]
}
