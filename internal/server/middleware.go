package server

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// accessLog tags each request with an id and logs its outcome.
func accessLog(log logr.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		reqLog := log.WithValues("request_id", reqID)
		r = r.WithContext(logr.NewContext(r.Context(), reqLog))

		m := httpsnoop.CaptureMetrics(next, w, r)
		reqLog.V(1).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.Code,
			"bytes", m.Written,
			"duration", m.Duration.String(),
		)
	})
}

// cors allows a single origin with credentials, answering preflights
// directly.
func cors(origin string, next http.Handler) http.Handler {
	if origin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Origin") == origin {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
