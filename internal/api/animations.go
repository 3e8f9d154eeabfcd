package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/chroma-core/internal/animation"
	"github.com/nerrad567/chroma-core/internal/colour"
	"github.com/nerrad567/chroma-core/internal/palette"
)

// startAnimationRequest is the request body for animation starts.
//
// The gradient comes from either an explicit colour list or a stored palette
// (palette_id wins when both are set). Lights is only used by the group start
// endpoints. Speed is seconds per step; unset tuning fields fall back to the
// runtime settings.
type startAnimationRequest struct {
	Lights       []string `json:"lights,omitempty"`
	Colors       []string `json:"colors,omitempty"`
	PaletteID    string   `json:"palette_id,omitempty"`
	Speed        int      `json:"speed,omitempty"`
	StepsBetween int      `json:"steps_between,omitempty"`
	Brightness   int      `json:"brightness,omitempty"`
	Transition   int      `json:"transition,omitempty"`
}

// handleListAnimations returns every active animation run.
func (s *Server) handleListAnimations(w http.ResponseWriter, _ *http.Request) {
	if s.animations == nil {
		writeJSON(w, http.StatusOK, map[string]any{"animations": []animation.Status{}, "count": 0})
		return
	}

	active := s.animations.Active()
	writeJSON(w, http.StatusOK, map[string]any{"animations": active, "count": len(active)})
}

// handleGetAnimation reports whether a target is animating.
func (s *Server) handleGetAnimation(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "target")

	animating := s.animations != nil && s.animations.IsAnimating(target)
	writeJSON(w, http.StatusOK, map[string]any{
		"target":       target,
		"is_animating": animating,
	})
}

// handleStartAnimation starts an individual animation on one light.
func (s *Server) handleStartAnimation(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "target")

	if s.animations == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "animations unavailable")
		return
	}

	req, gradient, speed, ok := s.decodeAnimationStart(w, r)
	if !ok {
		return
	}

	err := s.animations.StartAnimation(target, gradient, speed, s.applyOptions(req.Brightness, req.Transition))
	if err != nil {
		writeAnimationStartError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"target":  target,
		"status":  "started",
		"colours": len(gradient),
	})
}

// handleStartSynchronised starts a synchronised group animation.
func (s *Server) handleStartSynchronised(w http.ResponseWriter, r *http.Request) {
	s.handleStartGroup(w, r, animation.ModeSynchronised)
}

// handleStartStaggered starts a staggered group animation.
func (s *Server) handleStartStaggered(w http.ResponseWriter, r *http.Request) {
	s.handleStartGroup(w, r, animation.ModeStaggered)
}

// handleStartGroup starts a group animation in the given mode.
func (s *Server) handleStartGroup(w http.ResponseWriter, r *http.Request, mode animation.Mode) {
	if s.animations == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "animations unavailable")
		return
	}

	req, gradient, speed, ok := s.decodeAnimationStart(w, r)
	if !ok {
		return
	}

	if len(req.Lights) == 0 {
		writeBadRequest(w, "lights must have at least one entry")
		return
	}

	opts := s.applyOptions(req.Brightness, req.Transition)

	var err error
	if mode == animation.ModeStaggered {
		err = s.animations.StartStaggeredAnimation(req.Lights, gradient, speed, opts)
	} else {
		err = s.animations.StartSynchronisedAnimation(req.Lights, gradient, speed, opts)
	}
	if err != nil {
		writeAnimationStartError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"targets": req.Lights,
		"mode":    mode,
		"status":  "started",
		"colours": len(gradient),
	})
}

// handleStopAnimation stops the animation on one target. Stopping a target
// that is not animating is a no-op.
func (s *Server) handleStopAnimation(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "target")

	if s.animations != nil {
		s.animations.StopAnimation(target)
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleStopAllAnimations stops every active animation.
func (s *Server) handleStopAllAnimations(w http.ResponseWriter, _ *http.Request) {
	if s.animations != nil {
		s.animations.StopAll()
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeAnimationStart parses a start request and resolves its gradient and
// speed. It writes the error response itself and returns ok false on failure.
func (s *Server) decodeAnimationStart(w http.ResponseWriter, r *http.Request) (startAnimationRequest, []colour.Colour, time.Duration, bool) {
	var req startAnimationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return req, nil, 0, false
	}

	snapshot := s.settingsSnapshot()

	stepsBetween := req.StepsBetween
	if stepsBetween <= 0 {
		stepsBetween = snapshot.StepsBetween
	}

	base, err := s.resolveColours(r.Context(), req)
	if err != nil {
		if errors.Is(err, palette.ErrPaletteNotFound) {
			writeNotFound(w, "palette not found")
		} else {
			writeBadRequest(w, err.Error())
		}
		return req, nil, 0, false
	}

	speed := req.Speed
	if speed <= 0 {
		speed = snapshot.Speed
	}

	return req, colour.BuildGradient(base, stepsBetween), time.Duration(speed) * time.Second, true
}

// resolveColours resolves the base colours for a start request from its
// palette reference or explicit colour list.
func (s *Server) resolveColours(ctx context.Context, req startAnimationRequest) ([]colour.Colour, error) {
	if req.PaletteID != "" {
		p, err := s.palettes.GetPalette(ctx, req.PaletteID)
		if err != nil {
			return nil, err
		}
		return p.Colours, nil
	}

	if len(req.Colors) == 0 {
		return nil, errors.New("colors or palette_id is required")
	}

	colours := make([]colour.Colour, 0, len(req.Colors))
	for _, hex := range req.Colors {
		c, err := colour.ParseHex(hex)
		if err != nil {
			return nil, errors.New("invalid color " + hex)
		}
		colours = append(colours, c)
	}
	return colours, nil
}

// writeAnimationStartError maps an animation manager start error to a response.
func writeAnimationStartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, animation.ErrNoTargets), errors.Is(err, animation.ErrEmptyGradient):
		writeBadRequest(w, err.Error())
	default:
		writeInternalError(w, "failed to start animation")
	}
}
