// Package api serves the REST surface: simulation control backed by the
// in-memory managers, and CRUD over the persisted records.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/live-match-dashboard/internal/db/repository"
	httperrors "github.com/gokatarajesh/live-match-dashboard/pkg/http/errors"
)

const statusSuccess = "success"

type envelope struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func respondJSON(w http.ResponseWriter, status int, body envelope) {
	body.Status = statusSuccess
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Data: data})
}

func respondPage(w http.ResponseWriter, data any, count, total int, page repository.Page) {
	respondJSON(w, http.StatusOK, envelope{
		Data: data,
		Pagination: &pagination{
			Total:   total,
			Limit:   page.Limit,
			Offset:  page.Offset,
			HasMore: page.Offset+count < total,
		},
	})
}

func respondValidation(w http.ResponseWriter, err *ValidationError) {
	httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Message, err.Field)
}

// respondStoreError maps repository errors to responses; anything
// unexpected is logged and reported as a 500 with the given message.
func respondStoreError(w http.ResponseWriter, logger zerolog.Logger, err error, notFoundCode, notFoundMsg, failMsg string) {
	if errors.Is(err, repository.ErrNotFound) {
		httperrors.RespondNotFound(w, notFoundCode, notFoundMsg)
		return
	}
	logger.Error().Err(err).Msg(failMsg)
	httperrors.RespondErrorWithDetails(w, http.StatusInternalServerError, httperrors.ErrCodeInternalError, failMsg,
		map[string]any{"reason": err.Error()})
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func pageFromQuery(r *http.Request, def int) repository.Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return repository.Page{Limit: limit, Offset: offset}.Normalize(def)
}
