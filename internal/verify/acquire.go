package verify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/vmaretto/sigillo/internal/scoring"
)

// acquireNode returns a state node that resolves the candidate image from
// the request: uploaded bytes pass through a size check, URLs go through
// the SSRF-guarded fetcher. The acquired image is placed in the state bag.
func (e *exec) acquireNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		e.stream.Progress(5, "acquiring candidate image", nil)

		img, err := e.acquire(ctx)
		if err != nil {
			return s, fmt.Errorf("acquire: %w", err)
		}

		e.rt.Logger.InfoContext(
			ctx, "acquire node complete",
			"size", len(img.Data),
			"mime_type", img.MimeType,
		)

		s = s.Set(KeyCandidate, img)
		return s, nil
	})
}

func (e *exec) acquire(ctx context.Context) (scoring.Image, error) {
	switch {
	case len(e.req.Image) > 0:
		if int64(len(e.req.Image)) > e.rt.Config.MaxImageSize {
			return scoring.Image{}, fmt.Errorf(
				"%w: image exceeds %d bytes", ErrInvalidInput, e.rt.Config.MaxImageSize,
			)
		}

		mimeType := e.req.MimeType
		if mimeType == "" {
			mimeType = http.DetectContentType(e.req.Image)
		}

		return scoring.Image{Data: e.req.Image, MimeType: mimeType}, nil

	case e.req.ImageURL != "":
		data, mimeType, err := e.rt.Fetcher.Fetch(ctx, e.req.ImageURL)
		if err != nil {
			return scoring.Image{}, err
		}

		return scoring.Image{Data: data, MimeType: mimeType}, nil

	default:
		return scoring.Image{}, ErrInvalidInput
	}
}
