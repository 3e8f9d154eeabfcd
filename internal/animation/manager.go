package animation

import (
	"sync"
	"time"

	"github.com/nerrad567/chroma-core/internal/colour"
	"github.com/nerrad567/chroma-core/internal/light"
)

// Manager owns every animation loop in the process and enforces the
// exclusivity rules:
//
//   - at most one loop per light, ever
//   - at most one group loop per process; starting a new group supersedes
//     the old one even when the two target sets are disjoint
//   - starting an individual animation on a group member detaches that
//     light from the group first
//   - stopping a group member stops the whole group
//
// All registry mutations hold one mutex, including across stop-then-start
// sequences, so no concurrent starter can interleave between the halves.
//
// Thread Safety: all methods are safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	loops      map[string]*Loop
	runIDs     map[string]string // individual run IDs by target
	group      *GroupLoop
	groupRunID string

	applier ColourApplier
	hub     WSHub
	logger  Logger
	metrics MetricsRecorder
}

// NewManager creates an animation manager.
//
// Parameters:
//   - applier: colour applier shared by all loops
//   - hub: WebSocket hub for lifecycle events (may be nil)
//   - logger: Logger instance (may be nil)
func NewManager(applier ColourApplier, hub WSHub, logger Logger) *Manager {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Manager{
		loops:   make(map[string]*Loop),
		runIDs:  make(map[string]string),
		applier: applier,
		hub:     hub,
		logger:  logger,
	}
}

// SetMetrics attaches an optional telemetry recorder.
func (m *Manager) SetMetrics(metrics MetricsRecorder) {
	m.metrics = metrics
}

// StartAnimation starts an individual animation on one light, replacing
// whatever animation currently drives it. If the light is a member of the
// running group it is detached from the group first; an existing
// individual loop is stopped synchronously before the new one starts.
func (m *Manager) StartAnimation(target string, gradient []colour.Colour, speed time.Duration, opts light.ApplyOptions) error {
	if target == "" {
		return ErrNoTargets
	}
	if len(gradient) == 0 {
		return ErrEmptyGradient
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Starting an individual animation claims the light for itself.
	m.detachFromGroupLocked(target)
	m.stopLoopLocked(target)

	loop := NewLoop(target, gradient, speed, opts, m.applier, m.logger)
	loop.Start()
	if !loop.IsRunning() {
		// Never record a loop that did not come up; IsAnimating must not
		// claim a dead loop.
		m.logger.Error("animation failed to start", "target", target)
		return ErrStartFailed
	}

	runID := newRunID()
	m.loops[target] = loop
	m.runIDs[target] = runID

	m.announceStarted(runID, ModeIndividual, []string{target}, loop.Speed(), loop.ColourCount())
	return nil
}

// StartSynchronisedAnimation starts a synchronised group animation across
// the given lights. Individual loops on those lights are stopped, and any
// existing group loop is superseded entirely.
func (m *Manager) StartSynchronisedAnimation(targets []string, gradient []colour.Colour, speed time.Duration, opts light.ApplyOptions) error {
	return m.startGroup(targets, gradient, speed, ModeSynchronised, opts)
}

// StartStaggeredAnimation starts a staggered group animation: the same
// gradient walk as synchronised mode, with each light's apply jittered
// inside the tick window.
func (m *Manager) StartStaggeredAnimation(targets []string, gradient []colour.Colour, speed time.Duration, opts light.ApplyOptions) error {
	return m.startGroup(targets, gradient, speed, ModeStaggered, opts)
}

func (m *Manager) startGroup(targets []string, gradient []colour.Colour, speed time.Duration, mode Mode, opts light.ApplyOptions) error {
	if len(targets) == 0 {
		return ErrNoTargets
	}
	if len(gradient) == 0 {
		return ErrEmptyGradient
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Individual loops on the named lights yield to the group.
	for _, target := range targets {
		m.stopLoopLocked(target)
	}

	// One group per process: the old group goes away even when the two
	// target sets are disjoint.
	m.stopGroupLocked()

	group := NewGroupLoop(targets, gradient, speed, mode, opts, m.applier, m.logger)
	group.Start()
	if !group.IsRunning() {
		m.logger.Error("group animation failed to start", "mode", string(mode))
		return ErrStartFailed
	}

	m.group = group
	m.groupRunID = newRunID()

	m.announceStarted(m.groupRunID, mode, group.Targets(), group.Speed(), group.ColourCount())
	return nil
}

// StopAnimation stops whatever animation drives the target. A group member
// stops the WHOLE group; an individual loop stops alone. Unknown targets
// are a no-op. Synchronous and idempotent.
func (m *Manager) StopAnimation(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.group != nil && m.group.Contains(target) {
		m.stopGroupLocked()
		return
	}
	m.stopLoopLocked(target)
}

// StopAll stops every running animation and blocks until all loop
// goroutines have exited.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for target := range m.loops {
		m.stopLoopLocked(target)
	}
	m.stopGroupLocked()
}

// IsAnimating reports whether the target currently has a running
// animation, individual or group.
func (m *Manager) IsAnimating(target string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.group != nil && m.group.Contains(target) && m.group.IsRunning() {
		return true
	}
	if loop, ok := m.loops[target]; ok {
		return loop.IsRunning()
	}
	return false
}

// UpdateAnimation pushes new colours and/or a new speed into the animation
// driving the target (the group, if the target is a member). Zero values
// leave the respective setting unchanged. Returns false when the target
// has no running animation.
func (m *Manager) UpdateAnimation(target string, gradient []colour.Colour, speed time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.group != nil && m.group.Contains(target) {
		if len(gradient) > 0 {
			m.group.UpdateColours(gradient)
		}
		if speed > 0 {
			m.group.UpdateSpeed(speed)
		}
		return true
	}

	if loop, ok := m.loops[target]; ok {
		if len(gradient) > 0 {
			loop.UpdateColours(gradient)
		}
		if speed > 0 {
			loop.UpdateSpeed(speed)
		}
		return true
	}
	return false
}

// Active returns a snapshot of the running animations.
func (m *Manager) Active() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	statuses := make([]Status, 0, len(m.loops)+1)
	for target, loop := range m.loops {
		if !loop.IsRunning() {
			continue
		}
		statuses = append(statuses, Status{
			RunID:   m.runIDs[target],
			Mode:    ModeIndividual,
			Targets: []string{target},
			SpeedMS: loop.Speed().Milliseconds(),
			Colours: loop.ColourCount(),
		})
	}
	if m.group != nil && m.group.IsRunning() {
		statuses = append(statuses, Status{
			RunID:   m.groupRunID,
			Mode:    m.group.Mode(),
			Targets: m.group.Targets(),
			SpeedMS: m.group.Speed().Milliseconds(),
			Colours: m.group.ColourCount(),
		})
	}
	return statuses
}

// AnimatedLightCount returns how many lights are currently animated.
func (m *Manager) AnimatedLightCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, loop := range m.loops {
		if loop.IsRunning() {
			count++
		}
	}
	if m.group != nil && m.group.IsRunning() {
		count += len(m.group.Targets())
	}
	return count
}

// ─── Locked Helpers ─────────────────────────────────────────────────────────

// detachFromGroupLocked removes the target from the running group,
// stopping the group entirely when it was the last member.
// Callers must hold m.mu.
func (m *Manager) detachFromGroupLocked(target string) {
	if m.group == nil || !m.group.Contains(target) {
		return
	}

	remaining := m.group.RemoveTarget(target)
	m.logger.Info("light detached from group animation",
		"target", target,
		"remaining", remaining,
	)
	if remaining == 0 {
		m.stopGroupLocked()
	}
}

// stopLoopLocked stops and forgets the individual loop for the target, if
// any. Callers must hold m.mu.
func (m *Manager) stopLoopLocked(target string) {
	loop, ok := m.loops[target]
	if !ok {
		return
	}

	loop.Stop()
	runID := m.runIDs[target]
	delete(m.loops, target)
	delete(m.runIDs, target)

	m.announceStopped(runID, ModeIndividual, []string{target})
}

// stopGroupLocked stops and forgets the group loop, if any.
// Callers must hold m.mu.
func (m *Manager) stopGroupLocked() {
	if m.group == nil {
		return
	}

	targets := m.group.Targets()
	mode := m.group.Mode()
	m.group.Stop()

	m.announceStopped(m.groupRunID, mode, targets)
	m.group = nil
	m.groupRunID = ""
}

// ─── Events & Telemetry ─────────────────────────────────────────────────────

func (m *Manager) announceStarted(runID string, mode Mode, targets []string, speed time.Duration, colours int) {
	m.logger.Info("animation run started",
		"run_id", runID,
		"mode", string(mode),
		"targets", len(targets),
	)
	if m.hub != nil {
		m.hub.Broadcast("animation.started", map[string]any{
			"run_id":   runID,
			"mode":     string(mode),
			"targets":  targets,
			"speed_ms": speed.Milliseconds(),
			"colours":  colours,
		})
	}
	if m.metrics != nil {
		m.metrics.RecordAnimation(runID, string(mode), len(targets), "started")
	}
}

func (m *Manager) announceStopped(runID string, mode Mode, targets []string) {
	m.logger.Info("animation run stopped",
		"run_id", runID,
		"mode", string(mode),
		"targets", len(targets),
	)
	if m.hub != nil {
		m.hub.Broadcast("animation.stopped", map[string]any{
			"run_id":  runID,
			"mode":    string(mode),
			"targets": targets,
		})
	}
	if m.metrics != nil {
		m.metrics.RecordAnimation(runID, string(mode), len(targets), "stopped")
	}
}
