// Package httpx holds the JSON response helpers shared by every handler.
// Error payloads are a snake_case code plus optional structured details, so
// clients can switch on the code without parsing prose.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the wire shape of every non-2xx body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON marshals payload and writes it with the given status. The body is
// marshaled before the header goes out, so an encoding failure still produces
// a well-formed 500 instead of a truncated response.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body := []byte("null")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// JSONError writes an ErrorResponse with the given code and optional details
// (typically a validation.Violations map).
func JSONError(w http.ResponseWriter, status int, code string, details any) {
	JSON(w, status, ErrorResponse{Error: code, Details: details})
}
