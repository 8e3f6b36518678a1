package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"aplus/internal/models"
)

// tickerSetupView pairs a setup with the message it came from.
type tickerSetupView struct {
	MessageID string              `json:"message_id"`
	Date      string              `json:"date"`
	Source    string              `json:"source"`
	Setup     *models.TickerSetup `json:"setup"`
}

// handleTickerSetups lists recent setups for one symbol, newest first.
// GET /api/setups/{symbol}?limit=
func (s *Server) handleTickerSetups(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/api/setups/")
	if symbol == "" || strings.Contains(symbol, "/") {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	symbol = strings.ToUpper(symbol)

	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := parseInt(l); err == nil && v > 0 {
			limit = v
		}
	}

	messages, err := s.app.SetupService.ListByTicker(r.Context(), symbol, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("Failed to list setups")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list setups: %v", err))
		return
	}

	setups := make([]tickerSetupView, 0, len(messages))
	for _, msg := range messages {
		if setup := msg.Setup(symbol); setup != nil {
			setups = append(setups, tickerSetupView{
				MessageID: msg.ID,
				Date:      msg.DateKey(),
				Source:    msg.Source,
				Setup:     setup,
			})
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"setups": setups,
		"count":  len(setups),
	})
}

// handleBrief returns the aggregated brief for a calendar date.
// GET /api/briefs/{date}?insight=true, where date is YYYY-MM-DD or "today".
func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	dateStr := strings.TrimPrefix(r.URL.Path, "/api/briefs/")
	if dateStr == "" || strings.Contains(dateStr, "/") {
		WriteError(w, http.StatusBadRequest, "date is required (YYYY-MM-DD)")
		return
	}

	var date time.Time
	if dateStr == "today" {
		date = time.Now().UTC()
	} else {
		var err error
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid date '%s': expected YYYY-MM-DD", dateStr))
			return
		}
	}

	withInsight := r.URL.Query().Get("insight") == "true"

	brief, err := s.app.BriefService.DailyBrief(r.Context(), date, withInsight)
	if err != nil {
		s.logger.Error().Err(err).Str("date", dateStr).Msg("Failed to generate brief")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate brief: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, brief)
}

// handleSetupsWS upgrades the connection to a websocket subscribed to the
// live setup stream.
func (s *Server) handleSetupsWS(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if s.app.Hub == nil {
		WriteError(w, http.StatusServiceUnavailable, "Setup stream not available")
		return
	}

	s.app.Hub.ServeWS(w, r)
}
