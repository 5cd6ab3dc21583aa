package httpapi

import (
	"encoding/json"
	"net/http"
)

// handleMessageStream serves the live query as server-sent events. Every
// event carries the complete ordered message list: the current one on
// connect, then one per append.
func (s *Server) handleMessageStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	snapshots := s.store.SubscribeMessages(r.Context())

	for snapshot := range snapshots {
		data, err := json.Marshal(snapshot)
		if err != nil {
			s.log.Error(r.Context(), "failed to marshal snapshot", "error", err)
			continue
		}

		if _, err := w.Write([]byte("event: snapshot\ndata: ")); err != nil {
			return
		}
		if _, err := w.Write(data); err != nil {
			return
		}
		if _, err := w.Write([]byte("\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}
