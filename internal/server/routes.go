package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"aplus/internal/common"
)

// handleShutdown triggers a graceful server shutdown. Disabled in production.
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/glossary", s.handleGlossary)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Auth
	mux.HandleFunc("/api/auth/token", s.handleAuthToken)

	// Messages
	mux.HandleFunc("/api/messages/parse", s.handleMessageParse)
	mux.HandleFunc("/api/messages/pdf", s.handleMessagePDF)
	mux.HandleFunc("/api/messages/", s.routeMessages) // handles {id}, {id}/chart/{symbol}
	mux.HandleFunc("/api/messages", s.handleMessages)

	// Webhook ingest
	mux.HandleFunc("/api/webhooks/", s.handleWebhook)

	// Setups by ticker
	mux.HandleFunc("/api/setups/", s.handleTickerSetups)

	// Daily briefs
	mux.HandleFunc("/api/briefs/", s.handleBrief)

	// Live stream
	mux.HandleFunc("/api/ws/setups", s.handleSetupsWS)

	// Admin: runtime key-value settings
	mux.HandleFunc("/api/admin/kv/", s.handleSystemKV)
}

// routeMessages dispatches /api/messages/{id} and /api/messages/{id}/chart/{symbol}.
func (s *Server) routeMessages(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/messages/")
	if path == "" {
		s.handleMessages(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 3)
	switch {
	case len(parts) == 1:
		s.handleMessageGet(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "chart":
		s.handleMessageChart(w, r, parts[0], parts[2])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.CurrentVersion())
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	kv := s.app.Storage.KV()

	// Build runtime settings from system KV
	runtime := map[string]string{}
	for _, key := range []string{"gemini_api_key", "gemini_model"} {
		if val, err := kv.GetSystemKV(ctx, key); err == nil && val != "" {
			runtime[key] = val
		}
	}
	// Mask secrets
	for k, v := range runtime {
		if strings.Contains(k, "api_key") {
			runtime[k] = maskSecret(v)
		}
	}

	webhookSources := make([]string, 0, len(s.app.Config.Ingest.Webhooks))
	for _, wh := range s.app.Config.Ingest.Webhooks {
		webhookSources = append(webhookSources, wh.Source)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runtime_settings":  runtime,
		"environment":       s.app.Config.Environment,
		"storage_backend":   s.app.Config.Storage.Backend,
		"storage_path":      s.app.Config.Storage.Path,
		"default_source":    s.app.Config.Ingest.DefaultSource,
		"ingest_rate_limit": s.app.Config.Ingest.RateLimit,
		"webhook_sources":   webhookSources,
		"logging_level":     s.app.Config.Logging.Level,
		"auth_required":     s.app.Config.Auth.RequireToken,
		"gemini_configured": s.app.InsightClient != nil,
	})
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}
