package verifications

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vmaretto/sigillo/pkg/events"
	"github.com/vmaretto/sigillo/pkg/handlers"
	"github.com/vmaretto/sigillo/pkg/pagination"
	"github.com/vmaretto/sigillo/pkg/routes"
)

// Handler provides HTTP endpoints for verification operations, including
// the streaming verify endpoint.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination
// config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "verifications"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for verification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/verifications",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/alerts", Handler: h.Alerts},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/verify", Handler: h.Verify},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of verifications with optional query
// parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single verification by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	v, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

// Alerts returns the alerts raised for a verification.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	alerts, err := h.sys.Alerts(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, alerts)
}

// Search accepts a JSON body with pagination and filter criteria and returns
// matching verifications.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Verify runs the verification pipeline for an uploaded image (multipart
// form) or a monitored content reference (JSON body), streaming progress as
// Server-Sent Events. Exactly one terminal event closes the stream: error
// on any failure, complete with the persisted verification on success.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.parseVerifyCommand(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	stream := events.NewStream(16)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("verification panicked", "panic", rec)
				stream.Fail("verification failed unexpectedly")
			}
		}()

		v, err := h.sys.Verify(r.Context(), cmd, stream)
		if err != nil {
			h.logger.Error("verification failed", "error", err)
			stream.Fail(err.Error())
			return
		}

		stream.Complete(v)
	}()

	if err := events.ServeSSE(w, stream); err != nil {
		h.logger.Warn("event stream interrupted", "error", err)
	}
}

// Delete removes a verification and its stored candidate image.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseVerifyCommand(r *http.Request) (VerifyCommand, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			return VerifyCommand{}, err
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			return VerifyCommand{}, err
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
		if err != nil {
			return VerifyCommand{}, err
		}

		return VerifyCommand{
			Image:    data,
			MimeType: header.Header.Get("Content-Type"),
		}, nil
	}

	var cmd VerifyCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		return VerifyCommand{}, err
	}

	return cmd, nil
}
