package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-hclog"
)

// ErrorResponse is the generic failure envelope returned outside of
// operation-specific responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// decodeRequest decodes a JSON request body into req and runs its
// validation. A decode or validation failure is a client error.
func decodeRequest(r *http.Request, req interface{ Validate() error }) error {
	defer io.Copy(io.Discard, r.Body) //nolint:errcheck

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return req.Validate()
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, log hclog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding response", "error", err)
	}
}

// respondError writes the generic failure envelope.
func respondError(w http.ResponseWriter, log hclog.Logger, status int, message string) {
	respondJSON(w, log, status, ErrorResponse{Success: false, Message: message})
}

// stringPtr returns a pointer to s, or nil when s is empty. Used for
// optional error_details fields.
func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
