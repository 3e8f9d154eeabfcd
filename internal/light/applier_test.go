package light

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/chroma-core/internal/colour"
)

// ─── Mocks ──────────────────────────────────────────────────────────────────

// mockStatus serves canned lights for availability checks.
type mockStatus struct {
	lights map[string]*Light
}

func (m *mockStatus) GetLight(_ context.Context, id string) (*Light, error) {
	l, ok := m.lights[id]
	if !ok {
		return nil, ErrLightNotFound
	}
	return l.DeepCopy(), nil
}

// mockMQTT records published messages and can fail specific topics.
type mockMQTT struct {
	mu       sync.Mutex
	messages []publishedMessage
	failOn   map[string]bool
}

type publishedMessage struct {
	topic   string
	payload []byte
}

func (m *mockMQTT) Publish(topic string, payload []byte, _ byte, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[topic] {
		return errors.New("broker rejected publish")
	}
	m.messages = append(m.messages, publishedMessage{topic: topic, payload: payload})
	return nil
}

func (m *mockMQTT) getMessages() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishedMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func testLight(id string, available bool, modes ...ColourMode) *Light {
	return &Light{
		ID:          id,
		Name:        "Light " + id,
		Slug:        "light-" + id,
		ColourModes: modes,
		State:       State{"available": available},
	}
}

func setupApplier(t *testing.T, lights ...*Light) (*Applier, *mockMQTT) {
	t.Helper()

	status := &mockStatus{lights: make(map[string]*Light, len(lights))}
	for _, l := range lights {
		status.lights[l.ID] = l
	}
	broker := &mockMQTT{failOn: make(map[string]bool)}
	return NewApplier(status, broker, nil), broker
}

// ─── CheckAvailability ──────────────────────────────────────────────────────

func TestCheckAvailability(t *testing.T) {
	applier, _ := setupApplier(t,
		testLight("kitchen", true, ModeRGB),
		testLight("hall", false, ModeRGB),
		testLight("porch", true, ModeColourTemp, ModeBrightness),
		testLight("attic", true),
	)
	ctx := context.Background()

	t.Run("available colour light", func(t *testing.T) {
		if err := applier.CheckAvailability(ctx, "kitchen"); err != nil {
			t.Errorf("CheckAvailability() = %v, want nil", err)
		}
	})

	t.Run("unknown light", func(t *testing.T) {
		err := applier.CheckAvailability(ctx, "basement")
		if !errors.Is(err, ErrLightNotFound) {
			t.Errorf("CheckAvailability() = %v, want ErrLightNotFound", err)
		}
	})

	t.Run("offline light", func(t *testing.T) {
		err := applier.CheckAvailability(ctx, "hall")
		if !errors.Is(err, ErrLightUnavailable) {
			t.Errorf("CheckAvailability() = %v, want ErrLightUnavailable", err)
		}
	})

	t.Run("temperature-only light", func(t *testing.T) {
		err := applier.CheckAvailability(ctx, "porch")
		if !errors.Is(err, ErrNoColourSupport) {
			t.Errorf("CheckAvailability() = %v, want ErrNoColourSupport", err)
		}
	})

	t.Run("unknown modes assumed capable", func(t *testing.T) {
		if err := applier.CheckAvailability(ctx, "attic"); err != nil {
			t.Errorf("CheckAvailability() = %v, want nil", err)
		}
	})
}

// ─── ApplyColour ────────────────────────────────────────────────────────────

func TestApplyColourPublishesCommand(t *testing.T) {
	applier, broker := setupApplier(t, testLight("kitchen", true, ModeRGB))

	res := applier.ApplyColour(context.Background(), "kitchen", colour.Colour{R: 255}, ApplyOptions{})
	if !res.Success {
		t.Fatalf("ApplyColour() success = false, error: %s", res.ErrorMsg)
	}

	messages := broker.getMessages()
	if len(messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(messages))
	}
	if messages[0].topic != "chroma/command/light/kitchen" {
		t.Errorf("topic = %q, want %q", messages[0].topic, "chroma/command/light/kitchen")
	}

	var cmd map[string]any
	if err := json.Unmarshal(messages[0].payload, &cmd); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if cmd["color"] != "#ff0000" { //nolint:misspell // wire format key
		t.Errorf("payload color = %v, want #ff0000", cmd["color"])
	}
	hs, ok := cmd["hs"].([]any)
	if !ok || len(hs) != 2 {
		t.Fatalf("payload hs = %v, want [hue sat]", cmd["hs"])
	}
	if hs[0].(float64) != 0 || hs[1].(float64) != 100 {
		t.Errorf("payload hs = %v, want [0 100]", hs)
	}
	if _, present := cmd["brightness"]; present {
		t.Error("brightness present in payload, want omitted when unset")
	}
	if _, present := cmd["transition_ms"]; present {
		t.Error("transition_ms present in payload, want omitted when unset")
	}
}

func TestApplyColourOptions(t *testing.T) {
	applier, broker := setupApplier(t, testLight("kitchen", true, ModeRGB))

	opts := ApplyOptions{Brightness: 50, Transition: 400 * time.Millisecond}
	res := applier.ApplyColour(context.Background(), "kitchen", colour.Colour{G: 255}, opts)
	if !res.Success {
		t.Fatalf("ApplyColour() success = false, error: %s", res.ErrorMsg)
	}

	var cmd map[string]any
	if err := json.Unmarshal(broker.getMessages()[0].payload, &cmd); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	// 50% of 255 is 127.5; device scale truncates to 127.
	if got := cmd["brightness"].(float64); got != 127 {
		t.Errorf("payload brightness = %v, want 127", got)
	}
	if got := cmd["transition_ms"].(float64); got != 400 {
		t.Errorf("payload transition_ms = %v, want 400", got)
	}
}

func TestApplyColourFailuresAreResults(t *testing.T) {
	applier, broker := setupApplier(t,
		testLight("kitchen", true, ModeRGB),
		testLight("hall", false, ModeRGB),
	)
	broker.failOn["chroma/command/light/kitchen"] = true
	ctx := context.Background()

	t.Run("publish failure", func(t *testing.T) {
		res := applier.ApplyColour(ctx, "kitchen", colour.Colour{R: 255}, ApplyOptions{})
		if res.Success {
			t.Fatal("ApplyColour() success = true, want failure")
		}
		if res.ErrorKind != ErrorKindServiceCall {
			t.Errorf("ErrorKind = %q, want %q", res.ErrorKind, ErrorKindServiceCall)
		}
		if !strings.Contains(res.ErrorMsg, "broker rejected") {
			t.Errorf("ErrorMsg = %q, want broker error included", res.ErrorMsg)
		}
	})

	t.Run("unavailable light", func(t *testing.T) {
		res := applier.ApplyColour(ctx, "hall", colour.Colour{R: 255}, ApplyOptions{})
		if res.Success {
			t.Fatal("ApplyColour() success = true, want failure")
		}
		if res.ErrorKind != ErrorKindUnavailable {
			t.Errorf("ErrorKind = %q, want %q", res.ErrorKind, ErrorKindUnavailable)
		}
	})

	t.Run("unknown light", func(t *testing.T) {
		res := applier.ApplyColour(ctx, "basement", colour.Colour{R: 255}, ApplyOptions{})
		if res.ErrorKind != ErrorKindNotFound {
			t.Errorf("ErrorKind = %q, want %q", res.ErrorKind, ErrorKindNotFound)
		}
	})
}

// ─── ApplyColours ───────────────────────────────────────────────────────────

func TestApplyColoursTwoPhase(t *testing.T) {
	applier, broker := setupApplier(t,
		testLight("kitchen", true, ModeRGB),
		testLight("lounge", true, ModeHS),
		testLight("hall", false, ModeRGB),
	)

	targets := map[string]colour.Colour{
		"kitchen": {R: 255},
		"lounge":  {G: 255},
		"hall":    {B: 255},
	}
	result := applier.ApplyColours(context.Background(), targets, ApplyOptions{})

	// One result per requested target, regardless of outcome.
	if len(result.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(result.Results))
	}
	if got := result.SucceededCount(); got != 2 {
		t.Errorf("SucceededCount() = %d, want 2", got)
	}
	if got := result.FailedCount(); got != 1 {
		t.Errorf("FailedCount() = %d, want 1", got)
	}
	if !result.PartialFailure() {
		t.Error("PartialFailure() = false, want true")
	}

	// The offline light must receive no command at all.
	for _, msg := range broker.getMessages() {
		if msg.topic == "chroma/command/light/hall" {
			t.Error("command published to offline light")
		}
	}
	if got := len(broker.getMessages()); got != 2 {
		t.Errorf("published %d messages, want 2", got)
	}

	failed := result.FailedLights()
	if res, ok := failed["hall"]; !ok || res.ErrorKind != ErrorKindUnavailable {
		t.Errorf("FailedLights()[hall] = %+v, want unavailable failure", res)
	}

	applied := result.AppliedColours()
	if len(applied) != 2 {
		t.Errorf("len(AppliedColours()) = %d, want 2", len(applied))
	}
	if applied["kitchen"] != (colour.Colour{R: 255}) {
		t.Errorf("AppliedColours()[kitchen] = %v, want #ff0000", applied["kitchen"])
	}
}

func TestApplyColoursCountInvariant(t *testing.T) {
	applier, broker := setupApplier(t,
		testLight("a", true, ModeRGB),
		testLight("b", false, ModeRGB),
		testLight("c", true, ModeColourTemp),
	)
	broker.failOn["chroma/command/light/a"] = true

	targets := map[string]colour.Colour{
		"a": {R: 1}, "b": {R: 2}, "c": {R: 3}, "missing": {R: 4},
	}
	result := applier.ApplyColours(context.Background(), targets, ApplyOptions{})

	if got := result.SucceededCount() + result.FailedCount(); got != len(targets) {
		t.Errorf("SucceededCount()+FailedCount() = %d, want %d", got, len(targets))
	}
	if !result.AllFailed() {
		t.Error("AllFailed() = false, want true")
	}
	if result.AllSucceeded() {
		t.Error("AllSucceeded() = true, want false")
	}
}

func TestApplyColoursAllSucceed(t *testing.T) {
	applier, _ := setupApplier(t,
		testLight("a", true, ModeRGB),
		testLight("b", true, ModeRGB),
	)

	targets := map[string]colour.Colour{"a": {R: 1}, "b": {R: 2}}
	result := applier.ApplyColours(context.Background(), targets, ApplyOptions{})

	if !result.AllSucceeded() {
		t.Error("AllSucceeded() = false, want true")
	}
	if result.AllFailed() || result.PartialFailure() {
		t.Error("AllFailed/PartialFailure = true, want false")
	}
}

func TestApplyColoursEmptyBatch(t *testing.T) {
	applier, broker := setupApplier(t)

	result := applier.ApplyColours(context.Background(), nil, ApplyOptions{})
	if len(result.Results) != 0 {
		t.Errorf("len(Results) = %d, want 0", len(result.Results))
	}
	if result.AllFailed() {
		t.Error("AllFailed() = true for empty batch, want false")
	}
	if len(broker.getMessages()) != 0 {
		t.Error("empty batch published messages")
	}
}

// ─── Metrics ────────────────────────────────────────────────────────────────

type mockMetrics struct {
	mu      sync.Mutex
	applies []string
}

func (m *mockMetrics) RecordApply(lightID string, success bool, errorKind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applies = append(m.applies, lightID+":"+errorKind)
}

func TestApplierRecordsMetrics(t *testing.T) {
	applier, _ := setupApplier(t,
		testLight("a", true, ModeRGB),
		testLight("b", false, ModeRGB),
	)
	metrics := &mockMetrics{}
	applier.SetMetrics(metrics)

	applier.ApplyColours(context.Background(), map[string]colour.Colour{
		"a": {R: 1}, "b": {R: 2},
	}, ApplyOptions{})

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if len(metrics.applies) != 2 {
		t.Fatalf("recorded %d applies, want 2", len(metrics.applies))
	}
}
