package http

import (
	"net/http"
	"strconv"
	"time"

	"nivasa/internal/auth"
	"nivasa/internal/log"
	"nivasa/internal/metrics"
	"nivasa/internal/middleware/trace"
)

// withMetrics records request latency labelled by the matched route
// pattern. It must run inside the mux so r.Pattern is set.
func withMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := trace.NewResponseWriter(w)
		next(rw, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(r.Method, route, strconv.Itoa(rw.Status()), time.Since(start))
	}
}

// requireUser verifies the bearer token and stores the user id in the
// request context.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ExtractToken(r)
		if err != nil {
			metrics.IncSecurityEvent("unauthorized")
			w.Header().Set("WWW-Authenticate", `Bearer realm="nivasa"`)
			ErrorResponse(http.StatusUnauthorized, err.Error()).Write(w)
			return
		}
		userID, err := s.signer.Verify(token)
		if err != nil {
			metrics.IncSecurityEvent("unauthorized")
			w.Header().Set("WWW-Authenticate", `Bearer realm="nivasa", error="invalid_token"`)
			ErrorResponse(http.StatusUnauthorized, auth.ErrInvalidToken.Error()).Write(w)
			return
		}
		ctx := auth.WithUser(r.Context(), userID)
		logger := log.FromContext(ctx).WithUser(userID.String())
		next(w, r.WithContext(log.IntoContext(ctx, logger)))
	}
}
