package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/adil-khursheed/mysterymessage/internal/session"
	"github.com/adil-khursheed/mysterymessage/internal/suggest"
)

type providerErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// handleSuggestMessages streams the completion as plain text. The first
// fragment is read before anything is written so that a provider failure
// still gets a proper error response.
func (s *Server) handleSuggestMessages(w http.ResponseWriter, r *http.Request, _ session.Identity) {
	stream, err := s.suggester.Suggest(r.Context())
	if err != nil {
		s.writeSuggestError(w, r, err)
		return
	}
	defer stream.Close()

	chunk, err := stream.Recv()
	done := errors.Is(err, io.EOF)
	if err != nil && !done {
		s.writeSuggestError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	for !done {
		if chunk != "" {
			if _, err := io.WriteString(w, chunk); err != nil {
				s.metrics.RecordSuggestion("interrupted")
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		chunk, err = stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Warn(r.Context(), "suggestion stream interrupted", "error", err)
			s.metrics.RecordSuggestion("interrupted")
			return
		}
	}
	s.metrics.RecordSuggestion("ok")
}

func (s *Server) writeSuggestError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *suggest.ProviderError
	if errors.As(err, &pe) {
		s.logger.Warn(r.Context(), "suggestion provider error", "name", pe.Name, "error", err)
		s.metrics.RecordSuggestion("provider_error")
		writeJSON(w, http.StatusInternalServerError, providerErrorResponse{Name: pe.Name, Message: pe.Message})
		return
	}
	if errors.Is(err, context.Canceled) {
		s.metrics.RecordSuggestion("canceled")
		return
	}
	s.logger.Error(r.Context(), "an unexpected error occurred", "error", err)
	s.metrics.RecordSuggestion("error")
	writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
}
