package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/videotube/backend/internal/apperr"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/pagination"
	"github.com/videotube/backend/internal/repositories"
)

const maxJSONBody = 1 << 20

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

type errorEnvelope struct {
	StatusCode int                 `json:"statusCode"`
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Errors     []apperr.FieldError `json:"errors"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}

func respond(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	if data == nil {
		data = struct{}{}
	}
	respondJSON(ctx, w, status, envelope{StatusCode: status, Success: true, Message: message, Data: data})
}

// respondPage runs spec for the requested page and renders the page document.
func respondPage[T any](ctx context.Context, w http.ResponseWriter, message string, spec pagination.Spec[T], params pagination.Params) {
	page, err := pagination.Paginate(ctx, spec, params)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respond(ctx, w, http.StatusOK, message, page)
}

// respondError renders err with the status of its kind. Upstream failures are
// logged with their cause and reported without it.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	appErr := classify(err)
	status := apperr.HTTPStatus(appErr.Kind)
	logger := logging.FromContext(ctx)

	message := appErr.Message
	if appErr.Kind == apperr.KindUpstream {
		logger.Error("request failed", "kind", appErr.Kind.String(), "error", err)
		message = "something went wrong while processing the request"
	} else {
		logger.Warn("request rejected", "kind", appErr.Kind.String(), "message", appErr.Message)
	}

	fields := appErr.Fields
	if fields == nil {
		fields = []apperr.FieldError{}
	}
	respondJSON(ctx, w, status, errorEnvelope{StatusCode: status, Message: message, Errors: fields})
}

// classify turns any error into an *apperr.Error. Listing errors caused by bad
// sort parameters are the client's fault.
func classify(err error) *apperr.Error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, repositories.ErrInvalidOrder):
		return apperr.Validation("unsupported sortBy value", apperr.FieldError{Field: "sortBy", Message: err.Error()})
	case errors.Is(err, pagination.ErrUnordered):
		return apperr.Validation("listing requires an order")
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound("resource not found")
	}
	return apperr.Upstream("unexpected failure", err)
}

// decodeJSON reads a bounded JSON body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
