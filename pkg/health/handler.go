package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// LivenessHandler always answers 200.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, &Response{Status: StatusHealthy})
			return
		}
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler answers 503 when any check fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := Run(r.Context(), checks, opts...)

		status := http.StatusOK
		if err != nil {
			status = http.StatusServiceUnavailable
		}
		if wantsJSON(r) {
			writeJSON(w, status, resp)
			return
		}

		w.WriteHeader(status)
		if err != nil {
			_, _ = w.Write([]byte("Service Unavailable"))
			return
		}
		_, _ = w.Write([]byte("OK"))
	}
}

func wantsJSON(r *http.Request) bool {
	return r.URL.Query().Get("format") == "json" ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
