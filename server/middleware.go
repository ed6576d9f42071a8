package server

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/onetakeda/sapio-webhooks/pkg/log"
)

func writeRequestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", chiMiddleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r)
	})
}

// logHTTPRequest captures response metrics for each request and logs them at
// a status-dependent level. The request-scoped log entry carries the request
// id so handler logs correlate.
func (s *Server) logHTTPRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := chiMiddleware.GetReqID(r.Context())
		r = r.WithContext(log.NewContext(r.Context(), s.logger, log.Fields{"request_id": requestID}))

		m := httpsnoop.CaptureMetrics(next, w, r)

		fields := log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     m.Code,
			"duration":   m.Duration.String(),
			"bytes":      m.Written,
			"request_id": requestID,
		}

		switch {
		case m.Code >= http.StatusInternalServerError:
			s.logger.WithFields(fields).Error(r.URL.Path)
		case m.Code >= http.StatusBadRequest:
			s.logger.WithFields(fields).Warn(r.URL.Path)
		default:
			s.logger.WithFields(fields).Info(r.URL.Path)
		}
	})
}
