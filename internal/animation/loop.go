package animation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/chroma-core/internal/colour"
	"github.com/nerrad567/chroma-core/internal/light"
)

// Loop animates a single light through a cyclic gradient.
//
// Lifecycle: idle after construction, running after Start, stopped after
// Stop. Stop is synchronous (it joins the run goroutine) and idempotent.
// The colour walk survives failures: a tick that cannot reach the light
// keeps the cursor in place and retries after a fixed backoff.
type Loop struct {
	target  string
	applier ColourApplier
	logger  Logger

	mu       sync.Mutex
	gradient []colour.Colour
	cursor   int
	speed    time.Duration
	opts     light.ApplyOptions
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewLoop creates an animation loop for a single light. The loop is idle
// until Start is called. The gradient is copied; callers may reuse theirs.
func NewLoop(target string, gradient []colour.Colour, speed time.Duration, opts light.ApplyOptions, applier ColourApplier, logger Logger) *Loop {
	if logger == nil {
		logger = noopLogger{}
	}
	if speed <= 0 {
		speed = defaultSpeed
	}

	g := make([]colour.Colour, len(gradient))
	copy(g, gradient)

	return &Loop{
		target:   target,
		applier:  applier,
		logger:   logger,
		gradient: g,
		speed:    speed,
		opts:     opts,
	}
}

// Target returns the light this loop animates.
func (l *Loop) Target() string {
	return l.target
}

// Speed returns the current per-step delay.
func (l *Loop) Speed() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.speed
}

// ColourCount returns the gradient length.
func (l *Loop) ColourCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.gradient)
}

// Start spawns the run goroutine. Starting an already running loop or a
// loop with no colours is a logged no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		l.logger.Warn("animation already running", "target", l.target)
		return
	}
	if len(l.gradient) == 0 {
		l.logger.Warn("animation has no colours", "target", l.target)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	l.running = true

	go l.run(ctx)

	l.logger.Info("animation started",
		"target", l.target,
		"colours", len(l.gradient),
		"speed", l.speed,
	)
}

// Stop halts the loop and joins its goroutine. After Stop returns no
// further colour command will be published. Safe to call repeatedly and
// from multiple goroutines; only the first call does the work.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	cancel := l.cancel
	done := l.done
	l.mu.Unlock()

	cancel()
	<-done

	l.logger.Info("animation stopped", "target", l.target)
}

// IsRunning reports whether the run goroutine is alive. The flag flips
// before the goroutine is joined during Stop, so a false answer may be
// momentarily early but a true answer is never stale.
func (l *Loop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return false
	}
	select {
	case <-l.done:
		// Goroutine exited on its own (should not happen outside Stop,
		// but don't report a dead loop as running).
		return false
	default:
		return true
	}
}

// UpdateColours swaps the gradient and restarts the walk from its first
// colour on the next tick. An empty gradient is rejected and the current
// one kept.
func (l *Loop) UpdateColours(gradient []colour.Colour) {
	if len(gradient) == 0 {
		l.logger.Warn("ignoring empty colour update", "target", l.target)
		return
	}

	g := make([]colour.Colour, len(gradient))
	copy(g, gradient)

	l.mu.Lock()
	l.gradient = g
	l.cursor = 0
	l.mu.Unlock()

	l.logger.Debug("animation colours updated", "target", l.target, "colours", len(g))
}

// UpdateSpeed changes the per-step delay. The change applies from the next
// sleep; a sleep already in progress finishes at the old duration.
func (l *Loop) UpdateSpeed(speed time.Duration) {
	if speed <= 0 {
		l.logger.Warn("ignoring non-positive speed", "target", l.target, "speed", speed)
		return
	}

	l.mu.Lock()
	l.speed = speed
	l.mu.Unlock()

	l.logger.Debug("animation speed updated", "target", l.target, "speed", speed)
}

// run is the tick loop. It exits only when ctx is cancelled.
func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		l.mu.Lock()
		c := l.gradient[l.cursor]
		speed := l.speed
		opts := l.opts
		l.mu.Unlock()

		res := l.applyTick(ctx, c, opts)
		if !res.Success {
			l.logger.Warn("animation tick failed",
				"target", l.target,
				"colour", c.Hex(),
				"error_kind", string(res.ErrorKind),
				"error", res.ErrorMsg,
			)
			// Keep the cursor: the same colour is retried once the
			// backoff elapses. A failing light never kills the loop.
			if !sleepCtx(ctx, errorBackoff) {
				return
			}
			continue
		}

		l.mu.Lock()
		l.cursor = (l.cursor + 1) % len(l.gradient)
		l.mu.Unlock()

		if !sleepCtx(ctx, speed) {
			return
		}
	}
}

// applyTick runs one apply, converting a panicking applier into a failed
// result so a broken implementation cannot kill the loop.
func (l *Loop) applyTick(ctx context.Context, c colour.Colour, opts light.ApplyOptions) (res light.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = light.Result{
				LightID:   l.target,
				Success:   false,
				Colour:    c,
				ErrorKind: light.ErrorKindServiceCall,
				ErrorMsg:  fmt.Sprintf("panic in applier: %v", r),
			}
		}
	}()
	return l.applier.ApplyColour(ctx, l.target, c, opts)
}
