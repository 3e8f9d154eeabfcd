package light

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/chroma-core/internal/colour"
)

// MQTTClient is the interface for publishing colour commands to lights.
type MQTTClient interface {
	// Publish sends a message to the specified MQTT topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// StatusProvider resolves a light and its runtime state.
// Implemented by *Registry; tests substitute a stub.
type StatusProvider interface {
	GetLight(ctx context.Context, id string) (*Light, error)
}

// MetricsRecorder receives per-apply telemetry. May be nil.
type MetricsRecorder interface {
	RecordApply(lightID string, success bool, errorKind string)
}

// ApplyOptions carries the optional parameters of a colour command.
type ApplyOptions struct {
	// Transition is the fade duration the light should use. Zero omits
	// the field from the command.
	Transition time.Duration

	// Brightness in percent, 1-100. Zero leaves brightness unchanged.
	Brightness int
}

// deviceBrightness converts percent brightness to the 0-255 device scale,
// truncating rather than rounding.
func deviceBrightness(percent int) int {
	return (percent * 255) / 100
}

// Applier sends colour commands to lights with per-target failure
// accounting.
//
// Every apply is two-phase: an availability check (does the light exist,
// is it online, can it render colour) followed by the command publish.
// Batch applies check ALL targets before publishing to ANY, so one broken
// light never blocks its neighbours. Failures become typed Results rather
// than errors; the applier itself never panics outward.
//
// Thread Safety: all methods are safe for concurrent use.
type Applier struct {
	lights  StatusProvider
	mqtt    MQTTClient
	logger  Logger
	metrics MetricsRecorder
}

// NewApplier creates a colour applier.
//
// Parameters:
//   - lights: light lookup for availability checks (usually the Registry)
//   - mqtt: MQTT client for publishing commands
//   - logger: Logger instance (may be nil)
func NewApplier(lights StatusProvider, mqtt MQTTClient, logger Logger) *Applier {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Applier{
		lights: lights,
		mqtt:   mqtt,
		logger: logger,
	}
}

// SetMetrics attaches an optional telemetry recorder.
func (a *Applier) SetMetrics(metrics MetricsRecorder) {
	a.metrics = metrics
}

// CheckAvailability verifies that a light can receive a colour command
// right now. Returns nil when the light exists, is reported available, and
// supports a colour mode; otherwise one of ErrLightNotFound,
// ErrLightUnavailable, or ErrNoColourSupport.
func (a *Applier) CheckAvailability(ctx context.Context, id string) error {
	l, err := a.lights.GetLight(ctx, id)
	if err != nil {
		return err
	}
	if !l.State.Available() {
		return fmt.Errorf("%w: %s", ErrLightUnavailable, id)
	}
	if !l.SupportsColour() {
		return fmt.Errorf("%w: %s", ErrNoColourSupport, id)
	}
	return nil
}

// ApplyColour applies a colour to a single light: availability check, then
// command publish. The outcome is always a Result; a failed check or
// publish produces a failed Result, never an error.
func (a *Applier) ApplyColour(ctx context.Context, id string, c colour.Colour, opts ApplyOptions) Result {
	if err := a.CheckAvailability(ctx, id); err != nil {
		return a.recordFailure(id, c, err)
	}
	return a.applyUnchecked(id, c, opts)
}

// ApplyColours applies a colour per light in a single batch.
//
// Phase 1 checks availability of every target and records failures without
// aborting. Phase 2 publishes to the survivors only; publish failures are
// recorded per target. The result always carries one entry per requested
// target.
func (a *Applier) ApplyColours(ctx context.Context, targets map[string]colour.Colour, opts ApplyOptions) ApplyColoursResult {
	result := newApplyColoursResult(len(targets))

	// Phase 1: availability. Unavailable targets are excluded from phase 2
	// so no command is wasted on them.
	available := make(map[string]colour.Colour, len(targets))
	for id, c := range targets {
		if err := a.CheckAvailability(ctx, id); err != nil {
			result.record(a.recordFailure(id, c, err))
			continue
		}
		available[id] = c
	}

	// Phase 2: publish to the lights that passed.
	for id, c := range available {
		result.record(a.applyUnchecked(id, c, opts))
	}

	return result
}

// applyUnchecked publishes the colour command without re-checking
// availability. Callers must have checked already.
func (a *Applier) applyUnchecked(id string, c colour.Colour, opts ApplyOptions) Result {
	payload, err := buildCommandPayload(c, opts)
	if err != nil {
		// Marshal of a plain map cannot realistically fail; classified as a
		// service call failure if it somehow does.
		return a.recordFailure(id, c, fmt.Errorf("%w: %w", ErrServiceCallFailed, err))
	}

	topic := "chroma/command/light/" + id
	if pubErr := a.mqtt.Publish(topic, payload, 1, false); pubErr != nil {
		return a.recordFailure(id, c, fmt.Errorf("%w: %w", ErrServiceCallFailed, pubErr))
	}

	a.logger.Debug("colour applied", "light_id", id, "colour", c.Hex())
	if a.metrics != nil {
		a.metrics.RecordApply(id, true, "")
	}
	return successResult(id, c)
}

// recordFailure logs, counts, and wraps a failed apply into its Result.
func (a *Applier) recordFailure(id string, c colour.Colour, err error) Result {
	res := failureResult(id, c, err)
	a.logger.Warn("colour apply failed",
		"light_id", id,
		"colour", c.Hex(),
		"error_kind", string(res.ErrorKind),
		"error", err,
	)
	if a.metrics != nil {
		a.metrics.RecordApply(id, false, string(res.ErrorKind))
	}
	return res
}

// buildCommandPayload marshals the JSON command for a colour apply.
//
// The payload carries the colour both ways: hex RGB and hue/saturation, so
// HS-only lights need no conversion on their side. Keys follow the common
// smart-lighting wire convention.
func buildCommandPayload(c colour.Colour, opts ApplyOptions) ([]byte, error) {
	hue, sat := c.HS()
	cmd := map[string]any{
		"color": c.Hex(), //nolint:misspell // wire format uses American "color"
		"hs":    []float64{hue, sat},
	}
	if opts.Brightness > 0 {
		cmd["brightness"] = deviceBrightness(opts.Brightness)
	}
	if opts.Transition > 0 {
		cmd["transition_ms"] = opts.Transition.Milliseconds()
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("marshalling command: %w", err)
	}
	return payload, nil
}
