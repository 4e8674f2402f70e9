package events_test

import (
	"testing"

	"github.com/vmaretto/sigillo/pkg/events"
)

func collect(s *events.Stream) []events.Event {
	var out []events.Event
	for {
		select {
		case e, ok := <-s.Events():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestStreamProgress(t *testing.T) {
	t.Run("emits events in order", func(t *testing.T) {
		s := events.NewStream(8)
		s.Progress(10, "starting", nil)
		s.Progress(50, "halfway", nil)

		got := collect(s)
		if len(got) != 2 {
			t.Fatalf("collected %d events, want 2", len(got))
		}
		if got[0].Progress != 10 || got[1].Progress != 50 {
			t.Errorf("progress = %d/%d, want 10/50", got[0].Progress, got[1].Progress)
		}
		if got[0].Message != "starting" {
			t.Errorf("message = %s, want starting", got[0].Message)
		}
	})

	t.Run("raises regressing percentages", func(t *testing.T) {
		s := events.NewStream(8)
		s.Progress(60, "later stage", nil)
		s.Progress(45, "out of order", nil)

		got := collect(s)
		if len(got) != 2 {
			t.Fatalf("collected %d events, want 2", len(got))
		}
		if got[1].Progress != 60 {
			t.Errorf("regressing progress = %d, want raised to 60", got[1].Progress)
		}
	})
}

func TestStreamTerminal(t *testing.T) {
	t.Run("complete closes the stream", func(t *testing.T) {
		s := events.NewStream(8)
		s.Complete(map[string]string{"result": "conforme"})

		if !s.Terminated() {
			t.Error("Terminated() = false after Complete")
		}

		e, ok := <-s.Events()
		if !ok {
			t.Fatal("terminal event missing")
		}
		if e.Type != events.TypeComplete {
			t.Errorf("event type = %s, want complete", e.Type)
		}
		if e.Progress != 100 {
			t.Errorf("terminal progress = %d, want 100", e.Progress)
		}

		if _, ok := <-s.Events(); ok {
			t.Error("stream still open after terminal event")
		}
	})

	t.Run("fail closes the stream", func(t *testing.T) {
		s := events.NewStream(8)
		s.Fail("verification failed")

		e, ok := <-s.Events()
		if !ok {
			t.Fatal("terminal event missing")
		}
		if e.Type != events.TypeError {
			t.Errorf("event type = %s, want error", e.Type)
		}
		if e.Message != "verification failed" {
			t.Errorf("message = %s, want verification failed", e.Message)
		}
	})

	t.Run("exactly one terminal event", func(t *testing.T) {
		s := events.NewStream(8)
		s.Complete(nil)
		s.Fail("late failure")
		s.Complete(nil)

		got := collect(s)
		if len(got) != 1 {
			t.Fatalf("collected %d events, want 1", len(got))
		}
		if got[0].Type != events.TypeComplete {
			t.Errorf("event type = %s, want complete", got[0].Type)
		}
	})

	t.Run("progress after terminal is dropped", func(t *testing.T) {
		s := events.NewStream(8)
		s.Progress(30, "working", nil)
		s.Fail("budget exceeded")
		s.Progress(95, "too late", nil)

		got := collect(s)
		if len(got) != 2 {
			t.Fatalf("collected %d events, want 2", len(got))
		}
		if got[1].Type != events.TypeError {
			t.Errorf("last event type = %s, want error", got[1].Type)
		}
	})
}
