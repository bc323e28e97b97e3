package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
)

// Response is the success envelope. Data is always present, null when the
// operation has nothing to return.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the failure envelope. Data only appears when the error
// carries structured detail such as per-field validation messages.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON sends a success envelope with the given message and data.
func JSON(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	SendJSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a failure envelope. Empty details are dropped from the body.
func Error(w http.ResponseWriter, statusCode int, message string, details interface{}) {
	if isEmptyDetails(details) {
		details = nil
	}

	SendJSON(w, statusCode, ErrorResponse{
		Success: false,
		Message: message,
		Data:    details,
	})
}

// ErrorFromAppError sends the envelope for an AppError. Server side failures
// are logged with their cause before the generic message is written.
func ErrorFromAppError(w http.ResponseWriter, err *AppError) {
	if err.StatusCode >= http.StatusInternalServerError {
		log.Error().
			Err(err.Err).
			Str("dev_info", err.DevInfo).
			Int("status", err.StatusCode).
			Msg(err.Message)
	}

	Error(w, err.StatusCode, err.Message, err.Details)
}

// Unauthorized sends a 401 envelope.
func Unauthorized(w http.ResponseWriter, message string) {
	ErrorFromAppError(w, NewUnauthorizedError(message))
}

// NotFound sends a 404 envelope.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, constants.MsgResourceNotFound, nil)
}

// MethodNotAllowed sends a 405 envelope.
func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, constants.MsgMethodNotAllowed, nil)
}

// InternalServerError logs err and sends a generic 500 envelope.
func InternalServerError(w http.ResponseWriter, err error) {
	ErrorFromAppError(w, NewInternalServerError(err))
}

// SendJSON marshals data and writes it with the given status code.
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		if _, err := w.Write([]byte(`{"success":false,"message":"Failed to generate response"}`)); err != nil {
			log.Error().Err(err).Msg("Failed to write error response")
		}
		return
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)

	if _, err := w.Write(jsonData); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func isEmptyDetails(details interface{}) bool {
	switch d := details.(type) {
	case nil:
		return true
	case ValidationErrors:
		return len(d) == 0
	case map[string]string:
		return len(d) == 0
	case map[string]interface{}:
		return len(d) == 0
	default:
		return false
	}
}
