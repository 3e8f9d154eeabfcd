package palette

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/chroma-core/internal/animation"
	"github.com/nerrad567/chroma-core/internal/colour"
	"github.com/nerrad567/chroma-core/internal/light"
)

// Applier is the interface the service uses to push colours at lights.
// Implemented by *light.Applier.
type Applier interface {
	// CheckAvailability verifies that a light can receive a colour command.
	CheckAvailability(ctx context.Context, id string) error

	// ApplyColours applies a colour per light in a single two-phase batch.
	ApplyColours(ctx context.Context, targets map[string]colour.Colour, opts light.ApplyOptions) light.ApplyColoursResult
}

// Animator is the interface the service uses to run gradient animations.
// Implemented by *animation.Manager.
type Animator interface {
	StartAnimation(target string, gradient []colour.Colour, speed time.Duration, opts light.ApplyOptions) error
	StartSynchronisedAnimation(targets []string, gradient []colour.Colour, speed time.Duration, opts light.ApplyOptions) error
	StartStaggeredAnimation(targets []string, gradient []colour.Colour, speed time.Duration, opts light.ApplyOptions) error
}

// AnimateOptions carries the parameters of an animated palette apply.
type AnimateOptions struct {
	// Mode selects synchronised or staggered group timing. Empty defaults
	// to synchronised.
	Mode animation.Mode

	// Speed is the tick interval. Non-positive values fall back to the
	// animator's default.
	Speed time.Duration

	// StepsBetween is the gradient resolution between adjacent palette
	// colours. Values below 1 default to defaultStepsBetween.
	StepsBetween int

	// Apply carries brightness and transition for each colour command.
	Apply light.ApplyOptions
}

// defaultStepsBetween is the gradient resolution used when the caller
// does not specify one.
const defaultStepsBetween = 10

// Service orchestrates applying palettes to lights, statically or as
// animations. It resolves the palette, distributes colours across targets,
// and remembers which palette each light last received so the API can
// report it.
//
// Thread Safety: all methods are safe for concurrent use.
type Service struct {
	palettes *Registry
	applier  Applier
	animator Animator
	logger   Logger

	lastMu      sync.RWMutex
	lastApplied map[string]string // palette ID by light ID
}

// NewService creates a palette service.
//
// Parameters:
//   - palettes: palette registry for lookups
//   - applier: colour applier for static applies and pre-checks
//   - animator: animation manager for animated applies
//   - logger: Logger instance (may be nil)
func NewService(palettes *Registry, applier Applier, animator Animator, logger Logger) *Service {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Service{
		palettes:    palettes,
		applier:     applier,
		animator:    animator,
		logger:      logger,
		lastApplied: make(map[string]string),
	}
}

// ApplyStatic applies a palette to lights as a one-shot colour set.
// Colours are distributed by cycling the palette in target order: light i
// receives colours[i % len(colours)]. The whole set goes out as one
// two-phase batch; per-light failures land in the result, not in the error.
func (s *Service) ApplyStatic(ctx context.Context, paletteID string, lightIDs []string, opts light.ApplyOptions) (light.ApplyColoursResult, error) {
	if len(lightIDs) == 0 {
		return light.ApplyColoursResult{}, ErrNoTargets
	}

	p, err := s.palettes.GetPalette(ctx, paletteID)
	if err != nil {
		return light.ApplyColoursResult{}, err
	}
	if len(p.Colours) == 0 {
		return light.ApplyColoursResult{}, fmt.Errorf("%w: palette has no colours", ErrInvalidColours)
	}

	targets := make(map[string]colour.Colour, len(lightIDs))
	for i, id := range lightIDs {
		targets[id] = p.Colours[i%len(p.Colours)]
	}

	result := s.applier.ApplyColours(ctx, targets, opts)

	for id, res := range result.Results {
		if res.Success {
			s.rememberApplied(id, p.ID)
		}
	}

	s.logger.Info("palette applied",
		"palette_id", p.ID,
		"targets", len(lightIDs),
		"succeeded", result.SucceededCount(),
		"failed", result.FailedCount(),
	)
	return result, nil
}

// ApplyAnimated applies a palette to lights as a cycling gradient
// animation. The palette is expanded into a gradient, every target is
// pre-checked, and the available targets are handed to the animator in the
// requested mode. A single available target degenerates to an individual
// animation.
//
// Pre-check failures appear as failed entries in the result alongside
// successful starts; the error return is reserved for the palette lookup,
// an empty target list, and animator start failures.
func (s *Service) ApplyAnimated(ctx context.Context, paletteID string, lightIDs []string, opts AnimateOptions) (light.ApplyColoursResult, error) {
	if len(lightIDs) == 0 {
		return light.ApplyColoursResult{}, ErrNoTargets
	}

	p, err := s.palettes.GetPalette(ctx, paletteID)
	if err != nil {
		return light.ApplyColoursResult{}, err
	}

	steps := opts.StepsBetween
	if steps < 1 {
		steps = defaultStepsBetween
	}
	gradient := colour.BuildGradient(p.Colours, steps)
	if len(gradient) == 0 {
		return light.ApplyColoursResult{}, fmt.Errorf("%w: palette has no colours", ErrInvalidColours)
	}

	// Pre-check every target. Unavailable lights become failed results and
	// are excluded from the animation rather than aborting it.
	result := light.ApplyColoursResult{Results: make(map[string]light.Result, len(lightIDs))}
	available := make([]string, 0, len(lightIDs))
	for i, id := range lightIDs {
		// The colour this light would start the cycle at, for reporting.
		start := gradient[(i*len(gradient))/len(lightIDs)]
		if checkErr := s.applier.CheckAvailability(ctx, id); checkErr != nil {
			result.Results[id] = light.NewFailureResult(id, start, checkErr)
			continue
		}
		result.Results[id] = light.NewSuccessResult(id, start)
		available = append(available, id)
	}

	if len(available) == 0 {
		s.logger.Warn("animated palette apply found no available lights",
			"palette_id", p.ID,
			"targets", len(lightIDs),
		)
		return result, nil
	}

	if err := s.startAnimation(available, gradient, opts); err != nil {
		return result, err
	}

	for _, id := range available {
		s.rememberApplied(id, p.ID)
	}

	s.logger.Info("palette animation started",
		"palette_id", p.ID,
		"mode", string(s.effectiveMode(len(available), opts.Mode)),
		"targets", len(available),
		"skipped", len(lightIDs)-len(available),
	)
	return result, nil
}

// startAnimation dispatches to the animator in the requested mode.
func (s *Service) startAnimation(targets []string, gradient []colour.Colour, opts AnimateOptions) error {
	switch s.effectiveMode(len(targets), opts.Mode) {
	case animation.ModeIndividual:
		return s.animator.StartAnimation(targets[0], gradient, opts.Speed, opts.Apply)
	case animation.ModeStaggered:
		return s.animator.StartStaggeredAnimation(targets, gradient, opts.Speed, opts.Apply)
	default:
		return s.animator.StartSynchronisedAnimation(targets, gradient, opts.Speed, opts.Apply)
	}
}

// effectiveMode resolves the animation mode for a target count. A single
// target always runs as an individual loop regardless of the requested
// group mode.
func (s *Service) effectiveMode(targetCount int, requested animation.Mode) animation.Mode {
	if targetCount == 1 {
		return animation.ModeIndividual
	}
	if requested == "" {
		return animation.ModeSynchronised
	}
	return requested
}

// LastApplied returns the ID of the palette last applied to the light,
// or false when no palette has been applied this process lifetime.
func (s *Service) LastApplied(lightID string) (string, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	id, ok := s.lastApplied[lightID]
	return id, ok
}

// LastAppliedAll returns a snapshot of the last-applied palette per light.
func (s *Service) LastAppliedAll() map[string]string {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()

	snapshot := make(map[string]string, len(s.lastApplied))
	for lightID, paletteID := range s.lastApplied {
		snapshot[lightID] = paletteID
	}
	return snapshot
}

func (s *Service) rememberApplied(lightID, paletteID string) {
	s.lastMu.Lock()
	s.lastApplied[lightID] = paletteID
	s.lastMu.Unlock()
}
