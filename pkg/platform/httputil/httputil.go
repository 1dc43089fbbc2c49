package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "spectra/pkg/domain-errors"
)

// Envelope is the wire shape of every API response.
type Envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Code    string   `json:"code,omitempty"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

const genericErrorMessage = "Internal server error"

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteData writes a successful envelope around data.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteMessage writes a successful envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Envelope{Success: true, Message: msg})
}

// WriteError translates a domain error into an error envelope. Internal,
// crypto and unavailable failures are answered with a generic message;
// the cause belongs in the logs.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, http.StatusInternalServerError, Envelope{
			Error: genericErrorMessage,
			Code:  string(dErrors.CodeInternal),
		})
		return
	}

	status := DomainCodeToHTTPStatus(domainErr.Code)
	resp := Envelope{Code: string(domainErr.Code)}
	if exposesMessage(domainErr.Code) && domainErr.Message != "" {
		resp.Error = domainErr.Message
		resp.Details = domainErr.Details
	} else {
		resp.Error = genericErrorMessage
	}
	WriteJSON(w, status, resp)
}

func exposesMessage(code dErrors.Code) bool {
	switch code {
	case dErrors.CodeInternal, dErrors.CodeCrypto, dErrors.CodeUnavailable:
		return false
	default:
		return true
	}
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
