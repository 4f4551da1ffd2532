package playback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nebrenner/basketball-play-author/internal/geo"
	"github.com/nebrenner/basketball-play-author/internal/queue"
	"github.com/nebrenner/basketball-play-author/pkg/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

const instrumentationName = "github.com/nebrenner/basketball-play-author/internal/playback"

// Handle is a live visual object that can be positioned.
type Handle interface {
	SetPosition(p core.Point)
}

// Resolver finds the handle registered for a token or the ball.
type Resolver interface {
	Resolve(id string) (Handle, bool)
}

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Runner animates steps. Moves inside a step run concurrently; steps run one
// after another.
type Runner struct {
	resolver Resolver
	clock    Clock
	interval time.Duration
	logger   *slog.Logger

	steps    metric.Int64Counter
	duration metric.Float64Histogram
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClock overrides the time source.
func WithClock(c Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// WithFrameInterval sets the time between interpolation ticks.
func WithFrameInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a Runner over resolver.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewRunner(resolver Resolver, opts ...RunnerOption) (*Runner, error) {
	r := &Runner{
		resolver: resolver,
		clock:    systemClock{},
		interval: 16 * time.Millisecond,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	m := otel.Meter(instrumentationName)
	var err error
	r.steps, err = m.Int64Counter(
		"playback.steps.completed",
		metric.WithDescription("Total playback steps animated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating steps counter: %w", err)
	}
	r.duration, err = m.Float64Histogram(
		"playback.step.duration",
		metric.WithDescription("Wall time spent animating a step"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating step duration histogram: %w", err)
	}
	return r, nil
}

// RunStep animates every move of step concurrently and returns once all of
// them have settled on their targets. Cancelling ctx does not interrupt a
// step already in flight.
func (r *Runner) RunStep(ctx context.Context, step Step) error {
	start := r.clock.Now()
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))

	for _, m := range step.Moves {
		h, ok := r.resolver.Resolve(m.ID)
		if !ok {
			r.logger.Debug("no handle registered, skipping move", "id", m.ID)
			continue
		}
		g.Go(func() error {
			r.tween(gctx, h, m, step.Duration)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("running step %s -> %s: %w", step.FromFrameID, step.ToFrameID, err)
	}

	r.steps.Add(ctx, 1)
	r.duration.Record(ctx, float64(r.clock.Now().Sub(start))/float64(time.Millisecond))
	return nil
}

// Run animates steps in order. ctx is checked before each step and after
// returns false to stop early. It returns how many steps completed.
func (r *Runner) Run(ctx context.Context, steps []Step, after func(Step) bool) (int, error) {
	q := queue.New[Step]()
	q.Push(steps...)

	done := 0
	for {
		step, ok := q.Pop()
		if !ok {
			return done, nil
		}
		if err := ctx.Err(); err != nil {
			r.skipped(q, step)
			return done, err
		}
		if err := r.RunStep(ctx, step); err != nil {
			return done, err
		}
		done++
		if after != nil && !after(step) {
			if next, ok := q.Pop(); ok {
				r.skipped(q, next)
			}
			return done, nil
		}
	}
}

// skipped logs the steps left unplayed, starting with next.
func (r *Runner) skipped(q *queue.Queue[Step], next Step) {
	rest := q.Drain()
	r.logger.Debug("playback stopped early",
		"next", next.ToFrameID,
		"skipped", len(rest)+1,
	)
}

func (r *Runner) tween(ctx context.Context, h Handle, m Move, d time.Duration) {
	h.SetPosition(m.From)
	if d <= 0 {
		h.SetPosition(m.To)
		return
	}

	var path []core.Point
	if m.Path != nil {
		path = geo.SanitizePath(m.Path, m.From, m.To)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	start := r.clock.Now()
	for {
		t := float64(r.clock.Now().Sub(start)) / float64(d)
		if t >= 1 {
			h.SetPosition(m.To)
			return
		}
		eased := geo.EaseInOut(t)
		if path != nil {
			h.SetPosition(geo.PointAt(path, eased))
		} else {
			h.SetPosition(geo.Lerp(m.From, m.To, eased))
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			h.SetPosition(m.To)
			return
		}
	}
}
