package server

import (
	"encoding/json"
	"net/http"
)

// handleCueStream streams cue commands to the capture client as one JSON
// object per line. The connection stays open until the client goes away.
func (s *Server) handleCueStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	commands, cancel := s.cues.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case cmd := <-commands:
			if err := enc.Encode(cmd); err != nil {
				s.log.Debug("cue stream write failed, dropping subscriber", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
