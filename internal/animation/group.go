package animation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/nerrad567/chroma-core/internal/colour"
	"github.com/nerrad567/chroma-core/internal/light"
)

// groupMember is one light inside a GroupLoop. The offset is the member's
// fixed displacement into the gradient cycle.
type groupMember struct {
	id     string
	offset int
}

// GroupLoop animates several lights from one gradient walk.
//
// Every member reads gradient[(cursor + offset) % len] each tick, with
// offsets assigned at construction:
//
//	offset[i] = i * len(gradient) / memberCount
//
// so two lights sit half a cycle apart, three a third apart, and so on.
// In synchronised mode the whole tick is one batch apply; in staggered
// mode each member's apply is delayed by a fresh random fraction of the
// tick window, so the lights change out of step while still walking the
// same cycle.
//
// Membership is live: a member removed mid-run stops receiving colours
// from the next tick, and the remaining members keep their offsets.
type GroupLoop struct {
	mode    Mode
	applier ColourApplier
	logger  Logger

	mu       sync.Mutex
	members  []groupMember
	gradient []colour.Colour
	cursor   int
	speed    time.Duration
	opts     light.ApplyOptions
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}

	// applyWG tracks staggered in-flight applies so Stop can wait for
	// them; no command may land after Stop returns.
	applyWG sync.WaitGroup

	// rng drives stagger jitter. Only touched from the run goroutine.
	rng *rand.Rand
}

// NewGroupLoop creates a group animation loop. Duplicate target IDs are
// dropped (first occurrence wins) before offsets are assigned. The loop is
// idle until Start is called.
func NewGroupLoop(targets []string, gradient []colour.Colour, speed time.Duration, mode Mode, opts light.ApplyOptions, applier ColourApplier, logger Logger) *GroupLoop {
	if logger == nil {
		logger = noopLogger{}
	}
	if speed <= 0 {
		speed = defaultSpeed
	}

	g := make([]colour.Colour, len(gradient))
	copy(g, gradient)

	seen := make(map[string]struct{}, len(targets))
	members := make([]groupMember, 0, len(targets))
	for _, id := range targets {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, groupMember{id: id})
	}
	for i := range members {
		members[i].offset = i * len(g) / len(members)
	}

	return &GroupLoop{
		mode:     mode,
		applier:  applier,
		logger:   logger,
		members:  members,
		gradient: g,
		speed:    speed,
		opts:     opts,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // jitter, not security
	}
}

// Mode returns the group's timing mode.
func (g *GroupLoop) Mode() Mode {
	return g.mode
}

// Speed returns the current per-step delay.
func (g *GroupLoop) Speed() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.speed
}

// ColourCount returns the gradient length.
func (g *GroupLoop) ColourCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.gradient)
}

// Targets returns a snapshot of the live member IDs in offset order.
func (g *GroupLoop) Targets() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]string, len(g.members))
	for i, m := range g.members {
		ids[i] = m.id
	}
	return ids
}

// Contains reports whether the light is a live member.
func (g *GroupLoop) Contains(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, m := range g.members {
		if m.id == id {
			return true
		}
	}
	return false
}

// RemoveTarget detaches a light from the group. The light stops receiving
// colours from the next tick; offsets of the remaining members are
// unchanged. Returns the number of members left.
func (g *GroupLoop) RemoveTarget(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, m := range g.members {
		if m.id == id {
			g.members = append(g.members[:i], g.members[i+1:]...)
			break
		}
	}
	return len(g.members)
}

// Start spawns the run goroutine. Starting an already running loop, or one
// with no colours or no members, is a logged no-op.
func (g *GroupLoop) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		g.logger.Warn("group animation already running")
		return
	}
	if len(g.gradient) == 0 {
		g.logger.Warn("group animation has no colours")
		return
	}
	if len(g.members) == 0 {
		g.logger.Warn("group animation has no members")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.done = make(chan struct{})
	g.running = true

	go g.run(ctx)

	g.logger.Info("group animation started",
		"mode", string(g.mode),
		"targets", len(g.members),
		"colours", len(g.gradient),
		"speed", g.speed,
	)
}

// Stop halts the loop, joins its goroutine, and waits for any staggered
// applies still in flight. Idempotent.
func (g *GroupLoop) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	cancel := g.cancel
	done := g.done
	g.mu.Unlock()

	cancel()
	<-done
	g.applyWG.Wait()

	g.logger.Info("group animation stopped", "mode", string(g.mode))
}

// IsRunning reports whether the run goroutine is alive.
func (g *GroupLoop) IsRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running {
		return false
	}
	select {
	case <-g.done:
		return false
	default:
		return true
	}
}

// UpdateColours swaps the gradient, restarts the walk, and re-spreads the
// member offsets over the new cycle length. An empty gradient is rejected.
func (g *GroupLoop) UpdateColours(gradient []colour.Colour) {
	if len(gradient) == 0 {
		g.logger.Warn("ignoring empty colour update for group")
		return
	}

	cpy := make([]colour.Colour, len(gradient))
	copy(cpy, gradient)

	g.mu.Lock()
	g.gradient = cpy
	g.cursor = 0
	for i := range g.members {
		g.members[i].offset = i * len(cpy) / len(g.members)
	}
	g.mu.Unlock()

	g.logger.Debug("group animation colours updated", "colours", len(cpy))
}

// UpdateSpeed changes the per-step delay from the next sleep onwards.
func (g *GroupLoop) UpdateSpeed(speed time.Duration) {
	if speed <= 0 {
		g.logger.Warn("ignoring non-positive group speed", "speed", speed)
		return
	}

	g.mu.Lock()
	g.speed = speed
	g.mu.Unlock()
}

// run is the tick loop. It exits only when ctx is cancelled.
func (g *GroupLoop) run(ctx context.Context) {
	defer close(g.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		g.mu.Lock()
		targets := make(map[string]colour.Colour, len(g.members))
		for _, m := range g.members {
			targets[m.id] = g.gradient[(g.cursor+m.offset)%len(g.gradient)]
		}
		speed := g.speed
		opts := g.opts
		mode := g.mode
		g.mu.Unlock()

		// All members detached: idle until the manager stops the loop.
		if len(targets) == 0 {
			if !sleepCtx(ctx, speed) {
				return
			}
			continue
		}

		if mode == ModeStaggered {
			g.tickStaggered(ctx, targets, speed, opts)
		} else if !g.tickSynchronised(ctx, targets, opts) {
			// Every member failed: keep the cursor and retry the same
			// colours after the backoff.
			if !sleepCtx(ctx, errorBackoff) {
				return
			}
			continue
		}

		g.mu.Lock()
		g.cursor = (g.cursor + 1) % len(g.gradient)
		g.mu.Unlock()

		if !sleepCtx(ctx, speed) {
			return
		}
	}
}

// tickSynchronised applies the whole tick as one batch. Returns false when
// every member failed.
func (g *GroupLoop) tickSynchronised(ctx context.Context, targets map[string]colour.Colour, opts light.ApplyOptions) bool {
	result := g.applyBatch(ctx, targets, opts)

	if result.AllFailed() {
		g.logger.Warn("group tick failed for all members",
			"targets", len(targets),
			"mode", string(g.mode),
		)
		return false
	}

	if failed := result.FailedLights(); len(failed) > 0 {
		for id, res := range failed {
			g.logger.Warn("group tick member failed",
				"light_id", id,
				"error_kind", string(res.ErrorKind),
				"error", res.ErrorMsg,
			)
		}
	}
	return true
}

// tickStaggered spawns one delayed apply per member, jittered across the
// tick window. The applies are tracked by applyWG so Stop can wait.
func (g *GroupLoop) tickStaggered(ctx context.Context, targets map[string]colour.Colour, speed time.Duration, opts light.ApplyOptions) {
	for id, c := range targets {
		delay := time.Duration(g.rng.Int63n(int64(speed)))

		g.applyWG.Add(1)
		go func(id string, c colour.Colour, delay time.Duration) {
			defer g.applyWG.Done()

			if !sleepCtx(ctx, delay) {
				return
			}
			res := g.applyOne(ctx, id, c, opts)
			if !res.Success {
				g.logger.Warn("staggered apply failed",
					"light_id", id,
					"error_kind", string(res.ErrorKind),
					"error", res.ErrorMsg,
				)
			}
		}(id, c, delay)
	}
}

// applyBatch runs one batch apply, converting a panicking applier into an
// all-failed result so a broken implementation cannot kill the loop.
func (g *GroupLoop) applyBatch(ctx context.Context, targets map[string]colour.Colour, opts light.ApplyOptions) (result light.ApplyColoursResult) {
	defer func() {
		if r := recover(); r != nil {
			result = light.ApplyColoursResult{Results: make(map[string]light.Result, len(targets))}
			for id, c := range targets {
				result.Results[id] = light.Result{
					LightID:   id,
					Success:   false,
					Colour:    c,
					ErrorKind: light.ErrorKindServiceCall,
					ErrorMsg:  fmt.Sprintf("panic in applier: %v", r),
				}
			}
		}
	}()
	return g.applier.ApplyColours(ctx, targets, opts)
}

// applyOne mirrors applyBatch for single staggered applies.
func (g *GroupLoop) applyOne(ctx context.Context, id string, c colour.Colour, opts light.ApplyOptions) (res light.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = light.Result{
				LightID:   id,
				Success:   false,
				Colour:    c,
				ErrorKind: light.ErrorKindServiceCall,
				ErrorMsg:  fmt.Sprintf("panic in applier: %v", r),
			}
		}
	}()
	return g.applier.ApplyColour(ctx, id, c, opts)
}
