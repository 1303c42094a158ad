package server

import (
	"encoding/json"
	"net/http"

	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/log"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", constant.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debugf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// webBase is the origin child URIs are rewritten against. The scheme is always http.
func webBase(r *http.Request) string {
	host := r.Host
	if host == "" {
		host = constant.DefaultAddr
	}
	return "http://" + host
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	w.Header().Set("Allow", method+", OPTIONS")
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}
