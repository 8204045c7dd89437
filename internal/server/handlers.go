package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jward/cppdriver/internal/protocol"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	meta := s.proc.Metadata()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":          "ok",
		"driver":          meta.Driver,
		"language":        meta.Language,
		"languageVersion": meta.LanguageVersion,
	})
}

// handleParse answers one request object. The HTTP status mirrors the
// envelope: 200 for ok, 422 for a recoverable failure, 500 for a fatal one.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "read request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp := s.proc.Process(r.Context(), body)
	out, err := resp.Encode()
	if err != nil {
		s.log.Error("encode response", "err", err)
		jsonError(w, "encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode(resp.Status))
	w.Write(append(out, '\n'))
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "document cache disabled", http.StatusNotFound)
		return
	}
	st, err := s.store.Stats()
	if err != nil {
		s.log.Error("cache stats", "err", err)
		jsonError(w, "cache stats unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents":   st.Documents,
		"files":       st.Files,
		"bytes":       st.Bytes,
		"fingerprint": st.Fingerprint,
	})
}

func statusCode(st protocol.Status) int {
	switch st {
	case protocol.StatusOK:
		return http.StatusOK
	case protocol.StatusError:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
