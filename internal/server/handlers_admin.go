package server

import (
	"fmt"
	"net/http"
	"strings"
)

// handleSystemKV reads or writes one runtime setting.
// GET/PUT /api/admin/kv/{key}. Secret-bearing values are masked on read.
func (s *Server) handleSystemKV(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/admin/kv/")
	if key == "" || strings.Contains(key, "/") {
		WriteError(w, http.StatusBadRequest, "key is required")
		return
	}

	kv := s.app.Storage.KV()

	switch r.Method {
	case http.MethodGet:
		value, err := kv.GetSystemKV(r.Context(), key)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Key '%s' not found", key))
			return
		}
		if strings.Contains(key, "api_key") || strings.Contains(key, "secret") {
			value = maskSecret(value)
		}
		WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})

	case http.MethodPut:
		var req struct {
			Value string `json:"value"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if err := kv.SetSystemKV(r.Context(), key, req.Value); err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("Failed to write system KV")
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to write key: %v", err))
			return
		}
		s.logger.Info().Str("key", key).Msg("System KV updated")
		WriteJSON(w, http.StatusOK, map[string]string{"key": key, "status": "ok"})

	default:
		w.Header().Set("Allow", "GET, PUT")
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
