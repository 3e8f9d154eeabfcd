package animation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/chroma-core/internal/colour"
	"github.com/nerrad567/chroma-core/internal/light"
)

// ColourApplier is the interface the loops use to push colours at lights.
// Implemented by *light.Applier.
type ColourApplier interface {
	// ApplyColour applies one colour to one light.
	ApplyColour(ctx context.Context, id string, c colour.Colour, opts light.ApplyOptions) light.Result

	// ApplyColours applies a colour per light in a single two-phase batch.
	ApplyColours(ctx context.Context, targets map[string]colour.Colour, opts light.ApplyOptions) light.ApplyColoursResult
}

// WSHub is the interface for broadcasting WebSocket events.
type WSHub interface {
	// Broadcast sends an event to all clients subscribed to the given channel.
	Broadcast(channel string, payload any)
}

// MetricsRecorder receives animation lifecycle telemetry. May be nil.
type MetricsRecorder interface {
	RecordAnimation(runID string, mode string, targets int, event string)
}

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Mode identifies how an animation distributes command timing.
type Mode string

// Mode constants.
const (
	// ModeIndividual is a single-light loop.
	ModeIndividual Mode = "individual"

	// ModeSynchronised applies every group member's colour in one batch
	// per tick. Members sit at fixed offsets around the gradient cycle.
	ModeSynchronised Mode = "synchronised"

	// ModeStaggered walks the same gradient with the same offsets, but
	// jitters each member's apply inside the tick window so the lights
	// change out of step with each other.
	ModeStaggered Mode = "staggered"
)

// Domain errors for the animation package.
var (
	// ErrNoTargets is returned when a start operation receives no lights.
	ErrNoTargets = errors.New("animation: no targets")

	// ErrEmptyGradient is returned when a start operation receives no colours.
	ErrEmptyGradient = errors.New("animation: empty gradient")

	// ErrStartFailed is returned when a loop did not reach the running state.
	ErrStartFailed = errors.New("animation: start failed")
)

// Status describes one running animation for the API and metrics.
type Status struct {
	RunID   string   `json:"run_id"`
	Mode    Mode     `json:"mode"`
	Targets []string `json:"targets"`
	SpeedMS int64    `json:"speed_ms"`
	Colours int      `json:"colours"`
}

// Timing constants.
const (
	// errorBackoff is how long a loop waits after a failed tick before
	// retrying the same colour.
	errorBackoff = time.Second

	// defaultSpeed is used when a loop is constructed with a
	// non-positive speed.
	defaultSpeed = time.Second
)

// newRunID creates a unique identifier for one animation run.
func newRunID() string {
	return uuid.New().String()
}

// sleepCtx sleeps for d unless ctx is cancelled first.
// Returns false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
