package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-assess/internal/schedule"
)

var errWorkflowNotFound = errors.New("workflow not found")

// statusBySentinel maps rejected edits to HTTP status codes. Anything not
// listed here or handled by writeError is a server error.
var statusBySentinel = []struct {
	err    error
	status int
}{
	{errWorkflowNotFound, http.StatusNotFound},
	{schedule.ErrRowNotFound, http.StatusNotFound},
	{schedule.ErrClassNotSelected, http.StatusNotFound},
	{schedule.ErrCatalogPending, http.StatusServiceUnavailable},
	{schedule.ErrNotEditable, http.StatusConflict},
	{schedule.ErrNotReviewing, http.StatusConflict},
	{schedule.ErrSubmissionInFlight, http.StatusConflict},
	{schedule.ErrNothingPending, http.StatusConflict},
	{schedule.ErrEditModeLocked, http.StatusConflict},
	{schedule.ErrSelectionNotEmpty, http.StatusConflict},
	{schedule.ErrNoActiveGroup, http.StatusBadRequest},
	{schedule.ErrUnknownGroup, http.StatusBadRequest},
	{schedule.ErrClassNotInGroup, http.StatusBadRequest},
	{schedule.ErrIncompleteRow, http.StatusBadRequest},
	{schedule.ErrDuplicateSubject, http.StatusBadRequest},
	{schedule.ErrDeadlineNotAfterTestDate, http.StatusBadRequest},
	{schedule.ErrMaxScoreRange, http.StatusBadRequest},
	{schedule.ErrMaxScoreNotApplicable, http.StatusBadRequest},
	{schedule.ErrUnknownField, http.StatusBadRequest},
	{schedule.ErrSubjectNotOffered, http.StatusBadRequest},
	{schedule.ErrInvalidTag, http.StatusBadRequest},
	{schedule.ErrInvalidMonth, http.StatusBadRequest},
	{schedule.ErrNoEditTarget, http.StatusBadRequest},
	{schedule.ErrIncompleteSelection, http.StatusBadRequest},
}

// writeError renders err as JSON with a status derived from its type.
func writeError(w http.ResponseWriter, err error) {
	var (
		violations schedule.Violations
		conflict   *schedule.TransitionConflict
		subErr     *schedule.SubmissionError
	)

	switch {
	case errors.As(err, &violations):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:      "validation failed",
			Violations: violations,
		})
		return
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:      conflict.Error(),
			Transition: &transitionResponse{Gate: conflict.Gate, From: conflict.From, To: conflict.To},
		})
		return
	case errors.As(err, &subErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: subErr.Error()})
		return
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			writeJSON(w, s.status, errorResponse{Error: err.Error()})
			return
		}
	}

	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

func writeBadRequest(w http.ResponseWriter, msg string, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Fields: fields})
}
