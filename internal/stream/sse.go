package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrFlushUnsupported is returned when the ResponseWriter cannot stream.
var ErrFlushUnsupported = errors.New("stream: response writer does not support flushing")

// SSE writes frames as server-sent events.
type SSE struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// NewSSE writes the event-stream headers and status to w.
func NewSSE(w http.ResponseWriter) *SSE {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	return &SSE{w: w, rc: http.NewResponseController(w)}
}

// Send writes one `data: <json>` record and flushes it.
func (s *SSE) Send(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		if errors.Is(err, http.ErrNotSupported) {
			return ErrFlushUnsupported
		}
		return fmt.Errorf("stream: %w", err)
	}
	return nil
}
