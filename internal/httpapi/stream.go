package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adil-khursheed/mysterymessage/internal/session"
)

const streamKeepAlive = 15 * time.Second

// handleMessageStream pushes inbox changes for the signed-in account as
// server-sent events.
func (s *Server) handleMessageStream(w http.ResponseWriter, r *http.Request, id session.Identity) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch := s.bus.Subscribe(id.AccountID)
	defer s.bus.Unsubscribe(ch)

	_, _ = fmt.Fprintf(w, "event: hello\ndata: {}\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			b, _ := json.Marshal(ev)
			_, _ = fmt.Fprintf(w, "event: update\ndata: %s\n\n", b)
			flusher.Flush()
		}
	}
}
