package api

import (
	"encoding/json"
	"net/http"

	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"go.uber.org/zap"
)

// Response is the uniform envelope returned by every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK(data any, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed writing response", zap.Error(err))
	}
}

// WriteError renders err as a failure envelope with the status of its kind.
func WriteError(w http.ResponseWriter, err error) {
	apiErr := AsError(err)
	WriteJSON(w, apiErr.Status(), Response{
		Success: false,
		Error:   apiErr.Title,
		Message: apiErr.Detail,
	})
}
