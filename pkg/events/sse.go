package events

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ServeSSE drains the stream onto w as Server-Sent Events until the terminal
// event has been delivered. Each event is one data frame carrying the JSON
// encoding of the Event. The stream is always drained to completion so the
// producer never blocks, even when the client has gone away.
func ServeSSE(w http.ResponseWriter, s *Stream) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	var writeErr error
	for event := range s.Events() {
		if writeErr != nil {
			continue
		}

		payload, err := json.Marshal(event)
		if err != nil {
			writeErr = fmt.Errorf("encode event: %w", err)
			continue
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			writeErr = fmt.Errorf("write event: %w", err)
			continue
		}
		flusher.Flush()
	}

	return writeErr
}
