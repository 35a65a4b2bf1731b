package handler

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}

func respondValidationErrors(w http.ResponseWriter, messages []string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{
		Message: "Validation error",
		Errors:  messages,
	})
}
