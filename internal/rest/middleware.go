package rest

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/context"
	"go.uber.org/zap"

	"github.com/qredo/admin-agent/internal/defs"
)

const HeaderTraceID = "X-Trace-ID"

type Middleware struct {
	log            *zap.SugaredLogger
	logAllRequests bool
}

func NewMiddleware(log *zap.SugaredLogger, logAllRequests bool) *Middleware {
	return &Middleware{
		log:            log,
		logAllRequests: logAllRequests,
	}
}

// sessionMiddleware tags the request with the caller's trace id, or a new one
func (m *Middleware) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		context.Set(r, ctxKeyTraceID, traceID)
		w.Header().Set(HeaderTraceID, traceID)

		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs failed requests, or every request when enabled in the config.
// mux hands routes a copy of the request, its context values are cleared here.
func (m *Middleware) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer context.Clear(r)

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		if !m.logAllRequests && sw.status < http.StatusBadRequest {
			return
		}

		fields := []interface{}{
			"method", r.Method,
			"uri", r.RequestURI,
			"status", sw.status,
			"duration", time.Since(start).String(),
		}
		if traceID, ok := context.Get(r, ctxKeyTraceID).(string); ok {
			fields = append(fields, "traceID", traceID)
		}

		if apiErr, ok := context.Get(r, ctxKeyError).(*defs.APIError); ok {
			m.log.Warnw("request failed", append(fields, "error", apiErr.Error())...)
			return
		}

		m.log.Infow("request", fields...)
	})
}
