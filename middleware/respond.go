package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSON serializes v as the response body with the given status. Encoding
// failures after the header is written cannot be reported to the client and
// are ignored.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
