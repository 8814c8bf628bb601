// Package httputil holds the JSON response helpers shared by HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "deales/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the wire envelope for failures. Error carries the human
// message clients display; Code is the machine-readable classification.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into a status and envelope. Internal errors never
// leak their message.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: "internal server error", Code: string(dErrors.CodeInternal)}

	if de, ok := dErrors.As(err); ok {
		status = dErrors.HTTPStatus(de.Code)
		resp.Code = string(de.Code)
		if status != http.StatusInternalServerError {
			resp.Error = de.Message
		}
	}
	WriteJSON(w, status, resp)
}

// DecodeJSON reads a bounded JSON body into dst. Empty bodies and malformed
// JSON are reported as bad requests.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

// Preparable is implemented by request types that normalize and validate
// themselves after decoding.
type Preparable interface {
	Normalize()
	Validate() error
}

// DecodeAndPrepare decodes, normalizes and validates a request in one step.
func DecodeAndPrepare(r *http.Request, dst Preparable) error {
	if err := DecodeJSON(r, dst); err != nil {
		return err
	}
	dst.Normalize()
	return dst.Validate()
}
