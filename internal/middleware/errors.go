package middleware

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Errors     []any  `json:"errors"`
}

// writeError renders the same error envelope the handlers use.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{StatusCode: status, Message: message, Errors: []any{}})
}
