package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/chroma-core/internal/animation"
	"github.com/nerrad567/chroma-core/internal/palette"
	"github.com/nerrad567/chroma-core/internal/settings"
)

// handleListPalettes returns all palettes in display order.
func (s *Server) handleListPalettes(w http.ResponseWriter, r *http.Request) {
	palettes, err := s.palettes.ListPalettes(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list palettes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"palettes": palettes, "count": len(palettes)})
}

// handleGetPalette returns a single palette by ID.
func (s *Server) handleGetPalette(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.palettes.GetPalette(r.Context(), id)
	if err != nil {
		if errors.Is(err, palette.ErrPaletteNotFound) {
			writeNotFound(w, "palette not found")
			return
		}
		writeInternalError(w, "failed to get palette")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// handleCreatePalette creates a new palette.
func (s *Server) handleCreatePalette(w http.ResponseWriter, r *http.Request) {
	var p palette.Palette
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.palettes.CreatePalette(r.Context(), &p); err != nil {
		switch {
		case errors.Is(err, palette.ErrPaletteExists):
			writeConflict(w, "palette already exists")
		case isPaletteValidationError(err):
			writeBadRequest(w, err.Error())
		default:
			writeInternalError(w, "failed to create palette")
		}
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// handleUpdatePalette replaces a palette's definition.
func (s *Server) handleUpdatePalette(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.palettes.GetPalette(r.Context(), id)
	if err != nil {
		if errors.Is(err, palette.ErrPaletteNotFound) {
			writeNotFound(w, "palette not found")
			return
		}
		writeInternalError(w, "failed to get palette")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.ID = id // Ensure ID cannot be changed

	if err := s.palettes.UpdatePalette(r.Context(), existing); err != nil {
		switch {
		case errors.Is(err, palette.ErrPaletteExists):
			writeConflict(w, "palette name already in use")
		case isPaletteValidationError(err):
			writeBadRequest(w, err.Error())
		default:
			writeInternalError(w, "failed to update palette")
		}
		return
	}

	writeJSON(w, http.StatusOK, existing)
}

// handleDeletePalette removes a palette by ID.
func (s *Server) handleDeletePalette(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.palettes.DeletePalette(r.Context(), id); err != nil {
		if errors.Is(err, palette.ErrPaletteNotFound) {
			writeNotFound(w, "palette not found")
			return
		}
		writeInternalError(w, "failed to delete palette")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// applyPaletteRequest is the request body for POST /palettes/{id}/apply.
//
// An empty lights list targets every registered light. With animate false the
// palette colours are distributed once; with animate true a colour-cycling
// animation is started. Speed is seconds per step and transition is seconds;
// unset tuning fields fall back to the runtime settings.
type applyPaletteRequest struct {
	Lights       []string `json:"lights,omitempty"`
	Animate      bool     `json:"animate,omitempty"`
	Mode         string   `json:"mode,omitempty"`
	Speed        int      `json:"speed,omitempty"`
	StepsBetween int      `json:"steps_between,omitempty"`
	Brightness   int      `json:"brightness,omitempty"`
	Transition   int      `json:"transition,omitempty"`
}

// handleApplyPalette applies a palette to lights, statically or animated.
func (s *Server) handleApplyPalette(w http.ResponseWriter, r *http.Request) { //nolint:gocognit // apply pipeline: target resolution + mode selection + result mapping
	id := chi.URLParam(r, "id")

	if s.paletteSvc == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "palette applies unavailable")
		return
	}

	var req applyPaletteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	mode, ok := parseGroupMode(req.Mode)
	if !ok {
		writeBadRequest(w, "mode must be synchronized or staggered")
		return
	}

	targets := req.Lights
	if len(targets) == 0 {
		all, err := s.lights.ListLights(r.Context())
		if err != nil {
			writeInternalError(w, "failed to resolve targets")
			return
		}
		for _, l := range all {
			targets = append(targets, l.ID)
		}
	}
	if len(targets) == 0 {
		writeBadRequest(w, "no lights to apply to")
		return
	}

	var snapshot settings.Settings
	if s.settings != nil {
		snapshot = s.settings.Snapshot()
	}

	if !req.Animate {
		result, err := s.paletteSvc.ApplyStatic(r.Context(), id, targets, s.applyOptions(req.Brightness, req.Transition))
		if err != nil {
			if errors.Is(err, palette.ErrPaletteNotFound) {
				writeNotFound(w, "palette not found")
				return
			}
			writeInternalError(w, "failed to apply palette")
			return
		}

		s.broadcastPaletteApplied(id, targets, false)

		status := http.StatusOK
		if result.FailedCount() > 0 {
			status = http.StatusMultiStatus
		}
		writeJSON(w, status, map[string]any{
			"results":   result.Results,
			"succeeded": result.SucceededCount(),
			"failed":    result.FailedCount(),
		})
		return
	}

	speed := req.Speed
	if speed <= 0 {
		speed = snapshot.Speed
	}
	stepsBetween := req.StepsBetween
	if stepsBetween <= 0 {
		stepsBetween = snapshot.StepsBetween
	}
	if mode == "" && snapshot.GroupMode == settings.GroupModeStaggered {
		mode = animation.ModeStaggered
	}

	result, err := s.paletteSvc.ApplyAnimated(r.Context(), id, targets, palette.AnimateOptions{
		Mode:         mode,
		Speed:        time.Duration(speed) * time.Second,
		StepsBetween: stepsBetween,
		Apply:        s.applyOptions(req.Brightness, req.Transition),
	})
	if err != nil {
		if errors.Is(err, palette.ErrPaletteNotFound) {
			writeNotFound(w, "palette not found")
			return
		}
		writeInternalError(w, "failed to start palette animation")
		return
	}

	s.broadcastPaletteApplied(id, targets, true)

	// The animation runs in the background; unavailable targets are
	// reported, not fatal.
	writeJSON(w, http.StatusAccepted, map[string]any{
		"results":   result.Results,
		"succeeded": result.SucceededCount(),
		"failed":    result.FailedCount(),
	})
}

// broadcastPaletteApplied announces a palette apply to WebSocket clients.
func (s *Server) broadcastPaletteApplied(paletteID string, targets []string, animated bool) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast("palette.applied", map[string]any{
		"palette_id": paletteID,
		"lights":     targets,
		"animated":   animated,
	})
}

// parseGroupMode maps a request mode string to an animation mode.
// Both spellings are accepted on the wire; empty means "use the default".
func parseGroupMode(mode string) (animation.Mode, bool) {
	switch mode {
	case "":
		return "", true
	case "synchronized", "synchronised":
		return animation.ModeSynchronised, true
	case "staggered":
		return animation.ModeStaggered, true
	default:
		return "", false
	}
}
