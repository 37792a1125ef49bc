package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yesminehe/CVHelperBot/pkg/errors"
	"github.com/yesminehe/CVHelperBot/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestID tags the request with a uuid, reusing the caller's if it sent a valid one.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		next(w, r.WithContext(logger.WithRequestID(r.Context(), requestID)))
	}
}

func Logger(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		log := logger.FromContext(r.Context()).With("component", "api")

		log.Debug("Request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		next(rw, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case rw.statusCode >= 500:
			log.Error("Request failed with server error", attrs...)
		case rw.statusCode >= 400:
			log.Warn("Request failed with client error", attrs...)
		default:
			log.Info("Request completed", attrs...)
		}
	}
}

func MethodChecker(allowedMethods ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(allowedMethods, r.Method) {
				w.Header().Set("Allow", strings.Join(allowedMethods, ", "))
				RespondWithError(w, errors.ErrMethodNotAllowed(r.Method+" is not supported").
					WithRequestID(logger.GetRequestID(r.Context())))
				return
			}
			next(w, r)
		}
	}
}

// Recover turns a panic into a 500 without exposing the panic value.
func Recover(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(r.Context()).Error("panic recovered",
					"component", "api",
					"panic", rec,
					"path", r.URL.Path)
				RespondWithError(w, errors.ErrInternalServer(errors.GenericMessage).
					WithRequestID(logger.GetRequestID(r.Context())))
			}
		}()
		next(w, r)
	}
}

// Chain applies middlewares so the first one listed runs outermost.
func Chain(h http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "component", "api", "error", err)
	}
}

func RespondWithError(w http.ResponseWriter, err *errors.ApiError) {
	RespondWithJSON(w, err.StatusCode(), err)
}
