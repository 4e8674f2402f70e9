package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vmaretto/sigillo/internal/labels"
	"github.com/vmaretto/sigillo/internal/safefetch"
	"github.com/vmaretto/sigillo/internal/scoring"
	"github.com/vmaretto/sigillo/pkg/events"
	"github.com/vmaretto/sigillo/pkg/lifecycle"
	"github.com/vmaretto/sigillo/pkg/pagination"
	"github.com/vmaretto/sigillo/pkg/storage"
)

var candidateImage = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0xCD}, 128)...)

type fakeScoring struct {
	extractText   func(ctx context.Context, image []byte, mimeType string) (string, error)
	analyze       func(ctx context.Context, text string) (*scoring.ConformityReport, error)
	compareText   func(ctx context.Context, text string, ref scoring.ReferenceDescriptor) (*scoring.TextualComparison, error)
	compareImages func(ctx context.Context, candidate, reference scoring.Image) (*scoring.VisualComparison, error)
}

func (f *fakeScoring) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if f.extractText == nil {
		return "OLIO EXTRAVERGINE DI OLIVA DOP", nil
	}
	return f.extractText(ctx, image, mimeType)
}

func (f *fakeScoring) AnalyzeConformity(ctx context.Context, text string) (*scoring.ConformityReport, error) {
	if f.analyze == nil {
		return &scoring.ConformityReport{Result: "conforme", Violations: []string{}}, nil
	}
	return f.analyze(ctx, text)
}

func (f *fakeScoring) CompareText(ctx context.Context, text string, ref scoring.ReferenceDescriptor) (*scoring.TextualComparison, error) {
	return f.compareText(ctx, text, ref)
}

func (f *fakeScoring) CompareImages(ctx context.Context, candidate, reference scoring.Image) (*scoring.VisualComparison, error) {
	return f.compareImages(ctx, candidate, reference)
}

type fakeLabels struct {
	active []labels.Label
	err    error
}

func (f *fakeLabels) Handler(maxUploadSize int64) *labels.Handler { return nil }

func (f *fakeLabels) List(ctx context.Context, page pagination.PageRequest, filters labels.Filters) (*pagination.PageResult[labels.Label], error) {
	return nil, nil
}

func (f *fakeLabels) Find(ctx context.Context, id uuid.UUID) (*labels.Label, error) {
	return nil, labels.ErrNotFound
}

func (f *fakeLabels) Active(ctx context.Context) ([]labels.Label, error) {
	return f.active, f.err
}

func (f *fakeLabels) Create(ctx context.Context, cmd labels.CreateCommand) (*labels.Label, error) {
	return nil, nil
}

func (f *fakeLabels) SetActive(ctx context.Context, id uuid.UUID, active bool) (*labels.Label, error) {
	return nil, nil
}

func (f *fakeLabels) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type fakeStorage struct {
	blobs    map[string][]byte
	fetchErr error
}

func (f *fakeStorage) Start(lc *lifecycle.Coordinator) error { return nil }

func (f *fakeStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if f.blobs == nil {
		f.blobs = make(map[string][]byte)
	}
	f.blobs[key] = data
	return nil
}

func (f *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := f.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) Fetch(ctx context.Context, key string) ([]byte, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.blobs[key]
	return ok, nil
}

func pipelineRuntime(t *testing.T, client scoring.Client, refs []labels.Label, store storage.System) *Runtime {
	t.Helper()
	return &Runtime{
		Scoring: client,
		Labels:  &fakeLabels{active: refs},
		Storage: store,
		Fetcher: safefetch.New(10 << 20),
		Config:  testConfig(t),
		Logger:  discardLogger(),
	}
}

func activeRef(id, name, imageKey string) labels.Label {
	return labels.Label{
		ID:          uuid.MustParse(id),
		Name:        name,
		Producer:    "Frantoio " + name,
		Designation: labels.DesignationDOP,
		Region:      "Toscana",
		ImageKey:    imageKey,
		Active:      true,
	}
}

// stepClock returns a clock that reports the given offsets from a fixed
// base on successive calls, repeating the last offset once exhausted.
func stepClock(offsets ...time.Duration) func() time.Time {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	i := 0
	return func() time.Time {
		d := offsets[len(offsets)-1]
		if i < len(offsets) {
			d = offsets[i]
			i++
		}
		return base.Add(d)
	}
}

func drainEvents(s *events.Stream) []events.Event {
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

func TestExecuteConforme(t *testing.T) {
	refA := activeRef("00000000-0000-0000-0000-0000000000aa", "A", "labels/a/front.png")
	refB := activeRef("00000000-0000-0000-0000-0000000000bb", "B", "labels/b/front.png")

	client := &fakeScoring{
		compareText: func(ctx context.Context, text string, ref scoring.ReferenceDescriptor) (*scoring.TextualComparison, error) {
			if ref.Name == "A" {
				return &scoring.TextualComparison{MatchScore: 96}, nil
			}
			return &scoring.TextualComparison{MatchScore: 40}, nil
		},
		compareImages: func(ctx context.Context, candidate, reference scoring.Image) (*scoring.VisualComparison, error) {
			return &scoring.VisualComparison{
				Similarity: 98,
				Verdict:    scoring.VerdictIdentical,
			}, nil
		},
	}

	store := &fakeStorage{blobs: map[string][]byte{
		"labels/a/front.png": candidateImage,
		"labels/b/front.png": candidateImage,
	}}

	rt := pipelineRuntime(t, client, []labels.Label{refA, refB}, store)
	stream := events.NewStream(32)

	outcome, err := Execute(context.Background(), rt, Request{Image: candidateImage}, stream)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if outcome.Result != ResultConforme {
		t.Errorf("Result = %s, want conforme", outcome.Result)
	}
	if outcome.MatchPercent != 97 {
		t.Errorf("MatchPercent = %d, want 97", outcome.MatchPercent)
	}
	if outcome.BestLabelID == nil || *outcome.BestLabelID != refA.ID {
		t.Errorf("BestLabelID = %v, want %s", outcome.BestLabelID, refA.ID)
	}
	if outcome.Visual == nil {
		t.Error("Visual = nil, want visual comparison result")
	}
	if outcome.ExtractedText == "" {
		t.Error("ExtractedText is empty")
	}

	emitted := drainEvents(stream)
	if len(emitted) == 0 {
		t.Fatal("no progress events emitted")
	}
	last := -1
	for _, e := range emitted {
		if e.Type != events.TypeProgress {
			t.Errorf("event type = %s, want progress", e.Type)
		}
		if e.Progress < last {
			t.Errorf("progress went backwards: %d after %d", e.Progress, last)
		}
		last = e.Progress
	}
}

func TestExecuteEmptyCorpus(t *testing.T) {
	client := &fakeScoring{
		compareText: func(ctx context.Context, text string, ref scoring.ReferenceDescriptor) (*scoring.TextualComparison, error) {
			t.Error("CompareText called with empty corpus")
			return nil, nil
		},
	}

	rt := pipelineRuntime(t, client, nil, &fakeStorage{})
	stream := events.NewStream(32)

	_, err := Execute(context.Background(), rt, Request{Image: candidateImage}, stream)
	if err == nil {
		t.Fatal("Execute() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "no reference candidate") {
		t.Errorf("Execute() error = %v, want no-candidate failure", err)
	}
}

func TestExecuteCounterfeitOverride(t *testing.T) {
	ref := activeRef("00000000-0000-0000-0000-0000000000aa", "A", "labels/a/front.png")

	client := &fakeScoring{
		compareText: func(ctx context.Context, text string, ref scoring.ReferenceDescriptor) (*scoring.TextualComparison, error) {
			return &scoring.TextualComparison{MatchScore: 65}, nil
		},
		compareImages: func(ctx context.Context, candidate, reference scoring.Image) (*scoring.VisualComparison, error) {
			return &scoring.VisualComparison{
				Similarity:  45,
				Verdict:     scoring.VerdictCounterfeit,
				Differences: []string{"seal hologram missing"},
			}, nil
		},
	}

	store := &fakeStorage{blobs: map[string][]byte{"labels/a/front.png": candidateImage}}
	rt := pipelineRuntime(t, client, []labels.Label{ref}, store)
	stream := events.NewStream(32)

	outcome, err := Execute(context.Background(), rt, Request{Image: candidateImage}, stream)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if outcome.Result != ResultNonConforme {
		t.Errorf("Result = %s, want non_conforme", outcome.Result)
	}
	if outcome.MatchPercent != 55 {
		t.Errorf("MatchPercent = %d, want 55", outcome.MatchPercent)
	}
}

func TestExecuteSkipsVisualWhenBudgetExhausted(t *testing.T) {
	ref := activeRef("00000000-0000-0000-0000-0000000000aa", "A", "labels/a/front.png")

	var compared atomic.Int32
	client := &fakeScoring{
		compareText: func(ctx context.Context, text string, ref scoring.ReferenceDescriptor) (*scoring.TextualComparison, error) {
			return &scoring.TextualComparison{MatchScore: 72}, nil
		},
		compareImages: func(ctx context.Context, candidate, reference scoring.Image) (*scoring.VisualComparison, error) {
			compared.Add(1)
			return &scoring.VisualComparison{Similarity: 90, Verdict: scoring.VerdictSimilar}, nil
		},
	}

	store := &fakeStorage{blobs: map[string][]byte{"labels/a/front.png": candidateImage}}
	rt := pipelineRuntime(t, client, []labels.Label{ref}, store)
	stream := events.NewStream(32)

	// start, extraction check, matching check, then past the skip threshold
	gov := newGovernor(rt.Config, stepClock(0, 10*time.Second, 20*time.Second, 265*time.Second))

	outcome, err := execute(context.Background(), rt, Request{Image: candidateImage}, stream, gov)
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	if compared.Load() != 0 {
		t.Errorf("CompareImages called %d times in degraded mode, want 0", compared.Load())
	}
	if outcome.Visual != nil {
		t.Errorf("Visual = %+v, want nil in degraded mode", outcome.Visual)
	}
	if outcome.MatchPercent != 72 {
		t.Errorf("MatchPercent = %d, want textual score 72", outcome.MatchPercent)
	}
	if outcome.Result != ResultSospetta {
		t.Errorf("Result = %s, want sospetta", outcome.Result)
	}
}

func TestExecuteStopsVisualMidLoop(t *testing.T) {
	refA := activeRef("00000000-0000-0000-0000-0000000000aa", "A", "labels/a/front.png")
	refB := activeRef("00000000-0000-0000-0000-0000000000bb", "B", "labels/b/front.png")

	var compared atomic.Int32
	client := &fakeScoring{
		compareText: func(ctx context.Context, text string, ref scoring.ReferenceDescriptor) (*scoring.TextualComparison, error) {
			if ref.Name == "A" {
				return &scoring.TextualComparison{MatchScore: 90}, nil
			}
			return &scoring.TextualComparison{MatchScore: 70}, nil
		},
		compareImages: func(ctx context.Context, candidate, reference scoring.Image) (*scoring.VisualComparison, error) {
			compared.Add(1)
			return &scoring.VisualComparison{Similarity: 70, Verdict: scoring.VerdictSimilar}, nil
		},
	}

	store := &fakeStorage{blobs: map[string][]byte{
		"labels/a/front.png": candidateImage,
		"labels/b/front.png": candidateImage,
	}}
	rt := pipelineRuntime(t, client, []labels.Label{refA, refB}, store)
	stream := events.NewStream(32)

	// start, extraction check, matching check, visual entry, then past the
	// per-candidate stop threshold after the first comparison
	gov := newGovernor(rt.Config, stepClock(0, 10*time.Second, 20*time.Second, 100*time.Second, 281*time.Second))

	outcome, err := execute(context.Background(), rt, Request{Image: candidateImage}, stream, gov)
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	if compared.Load() != 1 {
		t.Errorf("CompareImages called %d times after early stop, want 1", compared.Load())
	}
	if outcome.Visual == nil {
		t.Fatal("Visual = nil, want partial visual result")
	}
	if outcome.MatchPercent != 80 {
		t.Errorf("MatchPercent = %d, want fused score 80", outcome.MatchPercent)
	}
	if outcome.Result != ResultConforme {
		t.Errorf("Result = %s, want conforme", outcome.Result)
	}
	if outcome.BestLabelID == nil || *outcome.BestLabelID != refA.ID {
		t.Errorf("BestLabelID = %v, want %s", outcome.BestLabelID, refA.ID)
	}
}

func TestExecuteProgressesPastImagelessCandidates(t *testing.T) {
	refA := activeRef("00000000-0000-0000-0000-0000000000aa", "A", "")
	refB := activeRef("00000000-0000-0000-0000-0000000000bb", "B", "")

	client := &fakeScoring{
		compareText: func(ctx context.Context, text string, ref scoring.ReferenceDescriptor) (*scoring.TextualComparison, error) {
			return &scoring.TextualComparison{MatchScore: 85}, nil
		},
		compareImages: func(ctx context.Context, candidate, reference scoring.Image) (*scoring.VisualComparison, error) {
			t.Error("CompareImages called for candidate without reference image")
			return nil, nil
		},
	}

	rt := pipelineRuntime(t, client, []labels.Label{refA, refB}, &fakeStorage{})
	stream := events.NewStream(32)

	outcome, err := Execute(context.Background(), rt, Request{Image: candidateImage}, stream)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if outcome.Visual != nil {
		t.Errorf("Visual = %+v, want nil without reference images", outcome.Visual)
	}
	if outcome.MatchPercent != 85 {
		t.Errorf("MatchPercent = %d, want textual score 85", outcome.MatchPercent)
	}
	if outcome.Result != ResultConforme {
		t.Errorf("Result = %s, want conforme", outcome.Result)
	}

	emitted := drainEvents(stream)
	for n := 1; n <= 2; n++ {
		want := fmt.Sprintf("visual comparison %d of 2", n)
		found := false
		for _, e := range emitted {
			if e.Message == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing progress event %q", want)
		}
	}
}

func TestExecuteAbortsPastExtractionCheckpoint(t *testing.T) {
	ref := activeRef("00000000-0000-0000-0000-0000000000aa", "A", "labels/a/front.png")

	client := &fakeScoring{
		extractText: func(ctx context.Context, image []byte, mimeType string) (string, error) {
			t.Error("ExtractText called past the abort checkpoint")
			return "", nil
		},
	}

	rt := pipelineRuntime(t, client, []labels.Label{ref}, &fakeStorage{})
	stream := events.NewStream(32)
	gov := newGovernor(rt.Config, stepClock(0, 245*time.Second))

	_, err := execute(context.Background(), rt, Request{Image: candidateImage}, stream, gov)
	if err == nil {
		t.Fatal("execute() error = nil, want timeout")
	}
	if !strings.Contains(err.Error(), "text extraction") {
		t.Errorf("execute() error = %v, want extraction timeout", err)
	}
}

func TestExecuteVisualFailuresFallBackToTextual(t *testing.T) {
	ref := activeRef("00000000-0000-0000-0000-0000000000aa", "A", "labels/a/front.png")

	client := &fakeScoring{
		compareText: func(ctx context.Context, text string, ref scoring.ReferenceDescriptor) (*scoring.TextualComparison, error) {
			return &scoring.TextualComparison{MatchScore: 85}, nil
		},
		compareImages: func(ctx context.Context, candidate, reference scoring.Image) (*scoring.VisualComparison, error) {
			return nil, errors.New("vision model unavailable")
		},
	}

	store := &fakeStorage{blobs: map[string][]byte{"labels/a/front.png": candidateImage}}
	rt := pipelineRuntime(t, client, []labels.Label{ref}, store)
	stream := events.NewStream(32)

	outcome, err := Execute(context.Background(), rt, Request{Image: candidateImage}, stream)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if outcome.Visual != nil {
		t.Errorf("Visual = %+v, want nil when every comparison fails", outcome.Visual)
	}
	if outcome.MatchPercent != 85 {
		t.Errorf("MatchPercent = %d, want textual score 85", outcome.MatchPercent)
	}
	if outcome.Result != ResultConforme {
		t.Errorf("Result = %s, want conforme", outcome.Result)
	}
}

func TestExecuteEmptyExtractedText(t *testing.T) {
	ref := activeRef("00000000-0000-0000-0000-0000000000aa", "A", "labels/a/front.png")

	client := &fakeScoring{
		extractText: func(ctx context.Context, image []byte, mimeType string) (string, error) {
			return "   ", nil
		},
	}

	rt := pipelineRuntime(t, client, []labels.Label{ref}, &fakeStorage{})
	stream := events.NewStream(32)

	_, err := Execute(context.Background(), rt, Request{Image: candidateImage}, stream)
	if err == nil {
		t.Fatal("Execute() error = nil, want empty-response failure")
	}
	if !strings.Contains(err.Error(), "empty response") {
		t.Errorf("Execute() error = %v, want empty-response failure", err)
	}
}

func TestExecuteRejectsMissingSource(t *testing.T) {
	rt := pipelineRuntime(t, &fakeScoring{}, nil, &fakeStorage{})
	stream := events.NewStream(32)

	_, err := Execute(context.Background(), rt, Request{}, stream)
	if err == nil {
		t.Fatal("Execute() error = nil, want invalid input")
	}
	if !strings.Contains(err.Error(), "no valid image source") {
		t.Errorf("Execute() error = %v, want invalid input failure", err)
	}
}

func TestExecuteRejectsOversizedUpload(t *testing.T) {
	rt := pipelineRuntime(t, &fakeScoring{}, nil, &fakeStorage{})
	rt.Config.MaxImageSize = 16
	stream := events.NewStream(32)

	_, err := Execute(context.Background(), rt, Request{Image: candidateImage}, stream)
	if err == nil {
		t.Fatal("Execute() error = nil, want size rejection")
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("Execute() error = %v, want size rejection", err)
	}
}
