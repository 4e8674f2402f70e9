package events_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vmaretto/sigillo/pkg/events"
)

func TestServeSSE(t *testing.T) {
	s := events.NewStream(8)
	s.Progress(10, "acquiring candidate image", nil)
	s.Progress(60, "candidate references selected", nil)
	s.Complete(map[string]string{"result": "conforme"})

	rec := httptest.NewRecorder()
	if err := events.ServeSSE(rec, s); err != nil {
		t.Fatalf("ServeSSE() error = %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %s, want text/event-stream", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %s, want no-cache", cc)
	}

	frames := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	if len(frames) != 3 {
		t.Fatalf("received %d frames, want 3", len(frames))
	}

	var last events.Event
	for i, frame := range frames {
		payload, ok := strings.CutPrefix(frame, "data: ")
		if !ok {
			t.Fatalf("frame %d missing data prefix: %q", i, frame)
		}
		if err := json.Unmarshal([]byte(payload), &last); err != nil {
			t.Fatalf("frame %d is not valid JSON: %v", i, err)
		}
	}

	if last.Type != events.TypeComplete {
		t.Errorf("final frame type = %s, want complete", last.Type)
	}
	if last.Progress != 100 {
		t.Errorf("final frame progress = %d, want 100", last.Progress)
	}
}
