package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cardspend/internal/core"
	"cardspend/internal/log"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    core.Kind `json:"kind"`
	Message string    `json:"message"`
}

// writeJSON writes data with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind core.Kind) int {
	switch kind {
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindInvalidAmount, core.KindInvalidInput, core.KindInvalidConfiguration:
		return http.StatusBadRequest
	case core.KindCrossCardReassignment:
		return http.StatusUnprocessableEntity
	case core.KindConcurrencyConflict, core.KindStatementInUse:
		return http.StatusConflict
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error":{"kind","message"}}. Internal errors are
// logged with the request logger and their text is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: errorDetail{
			Kind:    core.KindInvalidInput,
			Message: "request body too large",
		}})
		return
	}

	kind := core.KindOf(err)
	status := statusFor(kind)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).Error().Err(err).Msg("Request failed")
		msg = "internal server error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: msg}})
}
