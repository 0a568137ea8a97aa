package pkg

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var ContentType = struct {
	JSON string
	Text string
}{
	JSON: "application/json",
	Text: "text/plain; charset=utf-8",
}

// Response is the JSON envelope returned by every API endpoint.
type Response struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError describes a single rejected field (or, for batch operations, a rejected item).
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func WriteResponseBytesOK(w http.ResponseWriter, contentType string, message []byte) {
	WriteResponseBytes(w, contentType, message, http.StatusOK)
}

func WriteTextResponseOK(w http.ResponseWriter, message string) {
	WriteResponseBytes(w, ContentType.Text, []byte(message), http.StatusOK)
}

func WriteResponseBytes(w http.ResponseWriter, contentType string, message []byte, statusCode int) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(message); err != nil {
		log.Errorf("failed to write response [%s]: %s", message, err)
	}
}

// WriteJSON marshals the envelope and writes it with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, resp Response) {
	respBytes, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	WriteResponseBytes(w, ContentType.JSON, respBytes, statusCode)
}

func WriteSuccess(w http.ResponseWriter, statusCode int, data any, message string) {
	WriteJSON(w, statusCode, Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func WriteError(w http.ResponseWriter, statusCode int, errMessage string) {
	WriteJSON(w, statusCode, Response{
		Success: false,
		Error:   errMessage,
	})
}

func WriteValidationError(w http.ResponseWriter, fieldErrors []FieldError) {
	WriteJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Error:   "Validation failed",
		Errors:  fieldErrors,
	})
}
