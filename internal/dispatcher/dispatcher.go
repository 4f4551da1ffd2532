// Package dispatcher routes string commands from the input layer to the
// editor handlers registered for them.
package dispatcher

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var (
	// ErrClosed is returned when dispatching after Close.
	ErrClosed = errors.New("dispatcher closed")
	// ErrUnknownCommand is returned for commands with no handler.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrQueueFull is returned when a background command cannot be queued.
	ErrQueueFull = errors.New("command queue full")
)

// Queued is the result of a command handed to a background worker.
const Queued = "queued"

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures a command registration.
type Option func(*route)

// Buffered runs the handler on its own worker behind a queue of size
// events. Dispatch returns Queued right away.
func Buffered(size int) Option {
	return func(r *route) { r.queueSize = size }
}

// Blocking makes Dispatch wait for room in a full queue instead of failing
// with ErrQueueFull.
func Blocking() Option {
	return func(r *route) { r.blocking = true }
}

// Logged logs the start and outcome of every run.
func Logged() Option {
	return func(r *route) { r.logged = true }
}

// Usage documents the arguments of a command for help listings.
func Usage(text string) Option {
	return func(r *route) { r.usage = text }
}

type route struct {
	queueSize int
	blocking  bool
	logged    bool
	usage     string

	run   HandlerFunc
	queue chan Event
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	logger  Logger
	metrics *instruments

	mu      sync.RWMutex
	routes  map[string]*route
	closed  bool
	workers sync.WaitGroup
}

// New creates a Dispatcher logging through logger.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		logger: logger,
		routes: make(map[string]*route),
	}
	ins, err := newInstruments(d)
	if err != nil {
		return nil, err
	}
	d.metrics = ins
	return d, nil
}

// Register binds h to command. Registering a command twice replaces the
// earlier handler; its queued events still run. Registering after Close is
// a no-op.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	r := &route{}
	for _, opt := range opts {
		opt(r)
	}
	r.run = d.instrument(command, h, r.logged)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if old, ok := d.routes[command]; ok && old.queue != nil {
		close(old.queue)
	}
	if r.queueSize > 0 {
		r.queue = make(chan Event, r.queueSize)
		d.workers.Add(1)
		go d.work(r)
	}
	d.routes[command] = r
}

// Dispatch runs the handler of e.Command, or queues it for buffered
// commands.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil, ErrClosed
	}
	r, ok := d.routes[e.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if r.queue == nil {
		return r.run(e)
	}
	return d.enqueue(r, e)
}

// enqueue is called with the read lock held, so Close cannot close the
// queue underneath a blocked send.
func (d *Dispatcher) enqueue(r *route, e Event) (any, error) {
	if r.blocking {
		r.queue <- e
		return Queued, nil
	}
	select {
	case r.queue <- e:
		return Queued, nil
	default:
		d.metrics.rejected.Add(e.Context(), 1, commandAttr(e.Command))
		return nil, fmt.Errorf("%w: %s", ErrQueueFull, e.Command)
	}
}

func (d *Dispatcher) work(r *route) {
	defer d.workers.Done()
	for e := range r.queue {
		_, _ = r.run(e)
	}
}

// instrument wraps h with metrics and, when logged is set, debug logging.
func (d *Dispatcher) instrument(command string, h HandlerFunc, logged bool) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		if logged {
			d.logger.Debug("running command", "command", command, "args", len(e.Args))
		}

		result, err := h(e)
		d.metrics.record(e.Context(), command, err)

		switch {
		case err != nil && logged:
			d.logger.Error("command failed", "command", command, "duration", time.Since(start), "error", err)
		case logged:
			d.logger.Debug("command done", "command", command, "duration", time.Since(start))
		}
		return result, err
	}
}

// HasHandler reports whether command is registered.
func (d *Dispatcher) HasHandler(command string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.routes[command]
	return ok
}

// Commands returns the registered command names sorted.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.routes))
	for command := range d.routes {
		out = append(out, command)
	}
	slices.Sort(out)
	return out
}

// Usage returns the usage text registered for command.
func (d *Dispatcher) Usage(command string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if r, ok := d.routes[command]; ok {
		return r.usage
	}
	return ""
}

func (d *Dispatcher) backlog() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]int)
	for command, r := range d.routes {
		if r.queue != nil {
			out[command] = len(r.queue)
		}
	}
	return out
}

// Close stops accepting events and waits for queued commands to finish.
// It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, r := range d.routes {
		if r.queue != nil {
			close(r.queue)
		}
	}
	d.mu.Unlock()
	d.workers.Wait()
}
