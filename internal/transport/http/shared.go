// Package httptransport is the thin HTTP layer. Handlers validate request
// shape, delegate to domain services, and translate coded errors to JSON
// envelopes; business rules stay out of this package.
package httptransport

import (
	"encoding/json"
	"io"
	"net/http"

	dErrors "campusgate/pkg/domain-errors"
)

const maxBodyBytes = 64 << 10

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := dErrors.ToHTTPStatus(dErrors.CodeOf(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error:   string(dErrors.CodeOf(err)),
		Message: dErrors.MessageOf(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeBody reads a size-capped JSON body. Unknown fields are tolerated;
// handlers validate what they need.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
		}
		return dErrors.New(dErrors.CodeInvalidInput, "invalid request body")
	}
	return nil
}
