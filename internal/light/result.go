package light

import (
	"errors"

	"github.com/nerrad567/chroma-core/internal/colour"
)

// ErrorKind classifies an apply failure for per-target accounting.
// Kinds mirror the sentinel errors in errors.go.
type ErrorKind string

// ErrorKind constants.
const (
	ErrorKindNone            ErrorKind = ""
	ErrorKindNotFound        ErrorKind = "not_found"
	ErrorKindUnavailable     ErrorKind = "unavailable"
	ErrorKindNoColourSupport ErrorKind = "no_colour_support"
	ErrorKindServiceCall     ErrorKind = "service_call_failed"
)

// classifyError maps an applier error to its kind. Unknown errors are
// treated as service call failures so they still land in a typed bucket.
func classifyError(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrLightNotFound):
		return ErrorKindNotFound
	case errors.Is(err, ErrLightUnavailable):
		return ErrorKindUnavailable
	case errors.Is(err, ErrNoColourSupport):
		return ErrorKindNoColourSupport
	default:
		return ErrorKindServiceCall
	}
}

// Result records the outcome of a colour apply for a single light.
// Failures are data, not exceptions: a Result with Success false carries
// the error kind and message instead of propagating an error up the stack.
type Result struct {
	LightID string        `json:"light_id"`
	Success bool          `json:"success"`
	Colour  colour.Colour `json:"colour"`

	// ErrorKind and ErrorMsg are empty on success.
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
}

// successResult builds the Result for a completed apply.
func successResult(id string, c colour.Colour) Result {
	return Result{LightID: id, Success: true, Colour: c}
}

// NewSuccessResult builds a successful Result for callers outside the
// applier that do their own per-target accounting.
func NewSuccessResult(id string, c colour.Colour) Result {
	return successResult(id, c)
}

// NewFailureResult builds a failed Result for callers outside the applier,
// classifying err the same way the applier does.
func NewFailureResult(id string, c colour.Colour, err error) Result {
	return failureResult(id, c, err)
}

// failureResult builds the Result for a failed apply, classifying err.
func failureResult(id string, c colour.Colour, err error) Result {
	return Result{
		LightID:   id,
		Success:   false,
		Colour:    c,
		ErrorKind: classifyError(err),
		ErrorMsg:  err.Error(),
	}
}

// ApplyColoursResult aggregates per-light outcomes for a batch apply.
// It always holds exactly one Result per requested target, so
// SucceededCount() + FailedCount() equals the number of targets asked for.
type ApplyColoursResult struct {
	Results map[string]Result `json:"results"`
}

// newApplyColoursResult allocates a result sized for n targets.
func newApplyColoursResult(n int) ApplyColoursResult {
	return ApplyColoursResult{Results: make(map[string]Result, n)}
}

// record stores one light's outcome.
func (r *ApplyColoursResult) record(res Result) {
	r.Results[res.LightID] = res
}

// SucceededCount returns the number of lights that accepted the colour.
func (r ApplyColoursResult) SucceededCount() int {
	count := 0
	for _, res := range r.Results {
		if res.Success {
			count++
		}
	}
	return count
}

// FailedCount returns the number of lights that did not.
func (r ApplyColoursResult) FailedCount() int {
	return len(r.Results) - r.SucceededCount()
}

// AllSucceeded reports whether no light failed.
func (r ApplyColoursResult) AllSucceeded() bool {
	return r.FailedCount() == 0
}

// AllFailed reports whether every light failed. False for an empty batch.
func (r ApplyColoursResult) AllFailed() bool {
	return len(r.Results) > 0 && r.SucceededCount() == 0
}

// PartialFailure reports whether the batch had both successes and failures.
func (r ApplyColoursResult) PartialFailure() bool {
	succeeded := r.SucceededCount()
	return succeeded > 0 && succeeded < len(r.Results)
}

// AppliedColours returns the colour each successful light received.
func (r ApplyColoursResult) AppliedColours() map[string]colour.Colour {
	applied := make(map[string]colour.Colour)
	for id, res := range r.Results {
		if res.Success {
			applied[id] = res.Colour
		}
	}
	return applied
}

// FailedLights returns the failed results by light ID.
func (r ApplyColoursResult) FailedLights() map[string]Result {
	failed := make(map[string]Result)
	for id, res := range r.Results {
		if !res.Success {
			failed[id] = res
		}
	}
	return failed
}
