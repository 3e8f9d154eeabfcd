package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/chroma-core/internal/settings"
)

// settingsSnapshot returns the current runtime settings, or zero values when
// the settings store is not wired (tests, degraded startup).
func (s *Server) settingsSnapshot() settings.Settings {
	if s.settings == nil {
		return settings.Settings{}
	}
	return s.settings.Snapshot()
}

// handleGetSettings returns the current runtime settings.
func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "settings unavailable")
		return
	}

	writeJSON(w, http.StatusOK, s.settings.Snapshot())
}

// handleUpdateSettings applies a partial settings update. Updated values are
// persisted as explicit overrides and survive config hot-reloads.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "settings unavailable")
		return
	}

	var patch settings.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if patch.IsEmpty() {
		writeBadRequest(w, "no settings to update")
		return
	}

	updated, err := s.settings.Update(r.Context(), patch)
	if err != nil {
		if errors.Is(err, settings.ErrInvalidSetting) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("settings update failed", "error", err)
		writeInternalError(w, "failed to update settings")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
