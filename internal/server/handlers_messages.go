package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/tidwall/gjson"

	"aplus/internal/interfaces"
)

// maxPDFBytes caps uploaded PDF size.
const maxPDFBytes = 10 << 20 // 10MB

// maxPDFTextChars caps extracted PDF text before it enters extraction.
const maxPDFTextChars = 50000

// ingestRequest is the body of POST /api/messages and /api/messages/parse.
type ingestRequest struct {
	RawText string `json:"raw_text"`
	Source  string `json:"source,omitempty"`
	Date    string `json:"date,omitempty"`
}

// resolveIngest applies source and date defaults to an ingest request.
func (s *Server) resolveIngest(req *ingestRequest) (string, time.Time, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = s.app.Config.Ingest.DefaultSource
	}
	if req.Date == "" {
		return source, time.Now().UTC(), nil
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return "", time.Time{}, err
	}
	return source, date, nil
}

// parseDate accepts RFC3339 timestamps or bare 2006-01-02 dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s': expected RFC3339 or YYYY-MM-DD", value)
	}
	return t, nil
}

// handleMessages routes /api/messages: POST ingests an alert, GET lists
// stored messages.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleMessageIngest(w, r)
	case http.MethodGet:
		s.handleMessageList(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleMessageIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RawText) == "" {
		WriteError(w, http.StatusBadRequest, "raw_text is required")
		return
	}

	source, date, err := s.resolveIngest(&req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := s.app.SetupService.Ingest(r.Context(), req.RawText, source, date)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to ingest message")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to ingest message: %v", err))
		return
	}

	WriteJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleMessageList(w http.ResponseWriter, r *http.Request) {
	filter := interfaces.MessageFilter{
		Source: r.URL.Query().Get("source"),
	}
	if d := r.URL.Query().Get("date"); d != "" {
		date, err := parseDate(d)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Date = date
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := parseInt(l); err == nil && v > 0 {
			filter.Limit = v
		}
	}

	messages, err := s.app.SetupService.ListMessages(r.Context(), filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list messages")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list messages: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// handleMessageParse extracts without persisting. Useful for previewing what
// a raw alert yields before committing it.
func (s *Server) handleMessageParse(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ingestRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RawText) == "" {
		WriteError(w, http.StatusBadRequest, "raw_text is required")
		return
	}

	source, date, err := s.resolveIngest(&req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, s.app.SetupService.Parse(req.RawText, source, date))
}

// handleMessagePDF ingests a PDF body, extracting its plain text first.
// Source and date arrive as query parameters since the body is the document.
func (s *Server) handleMessagePDF(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxPDFBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read PDF body: "+err.Error())
		return
	}
	if len(data) == 0 {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return
	}

	text, err := extractPDFText(data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse PDF: %v", err))
		return
	}
	if strings.TrimSpace(text) == "" {
		WriteError(w, http.StatusUnprocessableEntity, "PDF contains no extractable text")
		return
	}

	req := ingestRequest{
		Source: r.URL.Query().Get("source"),
		Date:   r.URL.Query().Get("date"),
	}
	source, date, err := s.resolveIngest(&req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := s.app.SetupService.Ingest(r.Context(), text, source, date)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to ingest PDF message")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to ingest message: %v", err))
		return
	}

	WriteJSON(w, http.StatusCreated, msg)
}

// extractPDFText pulls plain text from each page of a PDF document.
// Unreadable pages are skipped rather than failing the whole document.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := sb.String()
	if len(text) > maxPDFTextChars {
		text = text[:maxPDFTextChars]
	}
	return text, nil
}

// handleWebhook ingests a platform webhook. The path segment selects a
// configured payload mapping: POST /api/webhooks/{source}.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	source := strings.TrimPrefix(r.URL.Path, "/api/webhooks/")
	if source == "" || strings.Contains(source, "/") {
		WriteError(w, http.StatusNotFound, "Unknown webhook source")
		return
	}

	mapping := s.app.Config.Ingest.Webhook(source)
	if mapping == nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("No webhook mapping configured for source '%s'", source))
		return
	}

	body := http.MaxBytesReader(w, r.Body, 1<<20)
	payload, err := io.ReadAll(body)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read webhook body: "+err.Error())
		return
	}
	if !gjson.ValidBytes(payload) {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	content := gjson.GetBytes(payload, mapping.ContentPath)
	if !content.Exists() || strings.TrimSpace(content.String()) == "" {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Webhook payload missing content at '%s'", mapping.ContentPath))
		return
	}

	// A malformed timestamp falls back to now rather than rejecting the
	// alert; the text is worth more than its envelope.
	date := time.Now().UTC()
	if mapping.DatePath != "" {
		if ts := gjson.GetBytes(payload, mapping.DatePath); ts.Exists() {
			if parsed, err := parseDate(ts.String()); err == nil {
				date = parsed
			}
		}
	}

	msg, err := s.app.SetupService.Ingest(r.Context(), content.String(), source, date)
	if err != nil {
		s.logger.Error().Err(err).Str("source", source).Msg("Failed to ingest webhook message")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to ingest message: %v", err))
		return
	}

	WriteJSON(w, http.StatusCreated, msg)
}

// handleMessageGet returns one stored message by ID.
func (s *Server) handleMessageGet(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	msg, err := s.app.SetupService.GetMessage(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Message not found: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, msg)
}

// handleMessageChart renders a PNG of one symbol's levels from a stored message.
func (s *Server) handleMessageChart(w http.ResponseWriter, r *http.Request, id, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	msg, err := s.app.SetupService.GetMessage(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Message not found: %v", err))
		return
	}

	png, err := s.app.BriefService.RenderLevelsChart(msg, symbol)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Chart unavailable: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
