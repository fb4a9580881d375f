package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/lightcmd/internal/extract"
	"github.com/dokzlo13/lightcmd/internal/intent"
	"github.com/dokzlo13/lightcmd/internal/ledger"
	"github.com/dokzlo13/lightcmd/internal/router"
)

const (
	maxBodyBytes        = 1 << 20
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	data, err := readObject(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := s.dispatch(r, ledger.SourceControl, data)
	writeJSON(w, out.Status, out.Body)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	text, ok := readText(w, r)
	if !ok {
		return
	}

	result, err := s.extractor.Extract(r.Context(), text)
	if err != nil {
		status, body := extractionFailure(err)
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, result.Data)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	text, ok := readText(w, r)
	if !ok {
		return
	}

	result, err := s.extractor.Extract(r.Context(), text)
	if err != nil {
		status, body := extractionFailure(err)
		s.record(r, ledger.Entry{
			Source:  ledger.SourceExecute,
			Status:  status,
			Payload: map[string]any{"text": text},
			Error:   fmt.Sprint(body["error"]),
		})
		writeJSON(w, status, body)
		return
	}

	out := s.dispatch(r, ledger.SourceExecute, result.Data)
	if out.Status == http.StatusBadRequest && out.Error() == "Unknown intent" {
		out.Body["parsed_data"] = result.Data
	}
	writeJSON(w, out.Status, out.Body)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "History is disabled")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := s.history.Recent(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read command history")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// dispatch decodes and routes one intent object and records the outcome.
func (s *Server) dispatch(r *http.Request, source ledger.Source, data map[string]any) router.Outcome {
	kind, _ := data["intent"].(string)

	in, err := intent.Decode(data)
	if err != nil {
		log.Debug().Err(err).Msg("Undecodable intent")
	}
	// A nil intent routes to the unknown-intent outcome.
	out := s.router.Route(r.Context(), in)

	s.record(r, ledger.Entry{
		Source:  source,
		Intent:  kind,
		Status:  out.Status,
		Payload: data,
		Error:   out.Error(),
	})
	return out
}

func (s *Server) record(r *http.Request, e ledger.Entry) {
	e.RequestID = RequestIDFromContext(r.Context())
	s.bus.Publish(ledger.CommandEvent(e))
}

// extractionFailure maps an extractor error to a response.
func extractionFailure(err error) (int, map[string]any) {
	body := map[string]any{"error": err.Error()}

	var exErr *extract.ExtractionError
	if errors.As(err, &exErr) {
		body["error"] = exErr.Err.Error()
		if exErr.RawContent != "" {
			body["raw_content"] = exErr.RawContent
		} else if exErr.RawResponse != "" {
			body["raw_response"] = exErr.RawResponse
		}
	}
	return http.StatusInternalServerError, body
}

// readObject decodes the request body as a JSON object.
func readObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if data == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return data, nil
}

// readText extracts the "text" field, writing the error response itself
// when it is missing.
func readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	data, err := readObject(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return "", false
	}

	text, _ := data["text"].(string)
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "Missing 'text' field")
		return "", false
	}
	return text, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
