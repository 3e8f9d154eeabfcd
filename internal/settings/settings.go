// Package settings holds the mutable runtime tuning for colour applies and
// animations: default brightness, animation speed, gradient resolution,
// group mode, and transition duration.
//
// Values are persisted in a SQLite key-value table. Each row remembers
// whether it came from the configuration file or from an explicit API
// override; config hot-reloads refresh the former and never touch the
// latter.
package settings

import (
	"errors"
	"fmt"
	"time"
)

// Setting keys. These are the row keys in the settings table and the field
// names accepted by the API.
const (
	KeyBrightness   = "brightness"
	KeySpeed        = "speed"
	KeyStepsBetween = "steps_between"
	KeyGroupMode    = "group_mode"
	KeyTransition   = "transition"
)

// Group mode values.
const (
	GroupModeSynchronised = "synchronised"
	GroupModeStaggered    = "staggered"
)

// ErrInvalidSetting is returned when a settings update fails validation.
var ErrInvalidSetting = errors.New("settings: invalid value")

// Settings is a snapshot of the runtime tuning values. Durations are kept
// in whole seconds, matching the configuration file.
type Settings struct {
	// Brightness is the default brightness percent (1-100).
	Brightness int `json:"brightness"`

	// Speed is the default per-step animation delay in seconds (1-60).
	Speed int `json:"speed"`

	// StepsBetween is the default gradient interpolation step count (1-20).
	StepsBetween int `json:"steps_between"`

	// GroupMode is the default group animation mode.
	GroupMode string `json:"group_mode"`

	// Transition is the default fade duration in seconds (0-60).
	Transition int `json:"transition"`
}

// SpeedDuration returns the animation speed as a Duration.
func (s Settings) SpeedDuration() time.Duration {
	return time.Duration(s.Speed) * time.Second
}

// TransitionDuration returns the transition as a Duration.
func (s Settings) TransitionDuration() time.Duration {
	return time.Duration(s.Transition) * time.Second
}

// Patch carries a partial settings update. Nil fields are left unchanged.
type Patch struct {
	Brightness   *int    `json:"brightness,omitempty"`
	Speed        *int    `json:"speed,omitempty"`
	StepsBetween *int    `json:"steps_between,omitempty"`
	GroupMode    *string `json:"group_mode,omitempty"`
	Transition   *int    `json:"transition,omitempty"`
}

// Validate checks every field present in the patch.
// Returns an error wrapping ErrInvalidSetting on the first failure.
func (p Patch) Validate() error {
	if p.Brightness != nil && (*p.Brightness < 1 || *p.Brightness > 100) {
		return fmt.Errorf("%w: brightness must be 1-100", ErrInvalidSetting)
	}
	if p.Speed != nil && (*p.Speed < 1 || *p.Speed > 60) {
		return fmt.Errorf("%w: speed must be 1-60 seconds", ErrInvalidSetting)
	}
	if p.StepsBetween != nil && (*p.StepsBetween < 1 || *p.StepsBetween > 20) {
		return fmt.Errorf("%w: steps_between must be 1-20", ErrInvalidSetting)
	}
	if p.GroupMode != nil && *p.GroupMode != GroupModeSynchronised && *p.GroupMode != GroupModeStaggered {
		return fmt.Errorf("%w: group_mode must be %q or %q", ErrInvalidSetting, GroupModeSynchronised, GroupModeStaggered)
	}
	if p.Transition != nil && (*p.Transition < 0 || *p.Transition > 60) {
		return fmt.Errorf("%w: transition must be 0-60 seconds", ErrInvalidSetting)
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Brightness == nil && p.Speed == nil && p.StepsBetween == nil &&
		p.GroupMode == nil && p.Transition == nil
}
