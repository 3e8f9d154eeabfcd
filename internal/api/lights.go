package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/chroma-core/internal/colour"
	"github.com/nerrad567/chroma-core/internal/light"
)

// handleListLights returns all lights, with optional query filters.
//
// Query parameters:
//   - room: filter by room label
func (s *Server) handleListLights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if room := r.URL.Query().Get("room"); room != "" {
		lights, err := s.lights.GetLightsByRoom(ctx, room)
		if err != nil {
			writeInternalError(w, "failed to list lights")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"lights": lights, "count": len(lights)})
		return
	}

	lights, err := s.lights.ListLights(ctx)
	if err != nil {
		writeInternalError(w, "failed to list lights")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lights": lights, "count": len(lights)})
}

// handleGetLight returns a single light by ID.
func (s *Server) handleGetLight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	l, err := s.lights.GetLight(r.Context(), id)
	if err != nil {
		if errors.Is(err, light.ErrLightNotFound) {
			writeNotFound(w, "light not found")
			return
		}
		writeInternalError(w, "failed to get light")
		return
	}

	writeJSON(w, http.StatusOK, l)
}

// handleCreateLight creates a new light.
func (s *Server) handleCreateLight(w http.ResponseWriter, r *http.Request) {
	var l light.Light
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.lights.CreateLight(r.Context(), &l); err != nil {
		switch {
		case errors.Is(err, light.ErrLightExists):
			writeConflict(w, "light already exists")
		case isLightValidationError(err):
			writeBadRequest(w, err.Error())
		default:
			writeInternalError(w, "failed to create light")
		}
		return
	}

	writeJSON(w, http.StatusCreated, l)
}

// handleUpdateLight replaces a light's registration.
func (s *Server) handleUpdateLight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Get existing light
	existing, err := s.lights.GetLight(r.Context(), id)
	if err != nil {
		if errors.Is(err, light.ErrLightNotFound) {
			writeNotFound(w, "light not found")
			return
		}
		writeInternalError(w, "failed to get light")
		return
	}

	// Decode update onto the existing light
	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.ID = id // Ensure ID cannot be changed

	if err := s.lights.UpdateLight(r.Context(), existing); err != nil {
		switch {
		case errors.Is(err, light.ErrLightExists):
			writeConflict(w, "slug already in use")
		case isLightValidationError(err):
			writeBadRequest(w, err.Error())
		default:
			writeInternalError(w, "failed to update light")
		}
		return
	}

	writeJSON(w, http.StatusOK, existing)
}

// handleDeleteLight removes a light by ID.
func (s *Server) handleDeleteLight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.lights.DeleteLight(r.Context(), id); err != nil {
		if errors.Is(err, light.ErrLightNotFound) {
			writeNotFound(w, "light not found")
			return
		}
		writeInternalError(w, "failed to delete light")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleLightStats returns light registry statistics.
func (s *Server) handleLightStats(w http.ResponseWriter, _ *http.Request) {
	stats := s.lights.GetStats()
	writeJSON(w, http.StatusOK, stats)
}

// applyColourRequest is the request body for colour applies.
// Colour is hex RGB ("#rrggbb"); brightness is percent; transition is seconds.
type applyColourRequest struct {
	Color      string `json:"color"`
	Brightness int    `json:"brightness,omitempty"`
	Transition int    `json:"transition,omitempty"`
}

// applyColoursRequest is the request body for batch colour applies.
// Colors maps light ID to hex RGB.
type applyColoursRequest struct {
	Colors     map[string]string `json:"colors"`
	Brightness int               `json:"brightness,omitempty"`
	Transition int               `json:"transition,omitempty"`
}

// applyOptions converts request fields to apply options, falling back to the
// runtime settings store for unset values.
func (s *Server) applyOptions(brightness, transition int) light.ApplyOptions {
	opts := light.ApplyOptions{
		Brightness: brightness,
		Transition: time.Duration(transition) * time.Second,
	}
	if s.settings != nil {
		snapshot := s.settings.Snapshot()
		if opts.Brightness == 0 {
			opts.Brightness = snapshot.Brightness
		}
		if opts.Transition == 0 {
			opts.Transition = snapshot.TransitionDuration()
		}
	}
	return opts
}

// handleApplyColour applies a colour to a single light.
func (s *Server) handleApplyColour(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if s.applier == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "colour commands unavailable")
		return
	}

	var req applyColourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	c, err := colour.ParseHex(req.Color)
	if err != nil {
		writeBadRequest(w, "color must be hex RGB, e.g. #ff8800")
		return
	}

	result := s.applier.ApplyColour(r.Context(), id, c, s.applyOptions(req.Brightness, req.Transition))
	if !result.Success {
		switch result.ErrorKind {
		case light.ErrorKindNotFound:
			writeNotFound(w, "light not found")
		case light.ErrorKindUnavailable, light.ErrorKindNoColourSupport:
			writeJSON(w, http.StatusConflict, result)
		default:
			writeJSON(w, http.StatusBadGateway, result)
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleApplyColours applies colours to multiple lights in one batch.
func (s *Server) handleApplyColours(w http.ResponseWriter, r *http.Request) {
	if s.applier == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "colour commands unavailable")
		return
	}

	var req applyColoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Colors) == 0 {
		writeBadRequest(w, "colors must have at least one entry")
		return
	}

	targets := make(map[string]colour.Colour, len(req.Colors))
	for lightID, hex := range req.Colors {
		c, err := colour.ParseHex(hex)
		if err != nil {
			writeBadRequest(w, "invalid color for light "+lightID)
			return
		}
		targets[lightID] = c
	}

	result := s.applier.ApplyColours(r.Context(), targets, s.applyOptions(req.Brightness, req.Transition))

	status := http.StatusOK
	if result.FailedCount() > 0 {
		// Partial or total failure still carries per-light results
		status = http.StatusMultiStatus
	}

	writeJSON(w, status, map[string]any{
		"results":   result.Results,
		"succeeded": result.SucceededCount(),
		"failed":    result.FailedCount(),
	})
}
