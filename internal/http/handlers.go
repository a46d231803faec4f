package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"stock/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady checks templates and lists items from the backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.probe == nil:
		checks["backend"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	default:
		if _, err := s.probe.ListItems(ctx, ""); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			s.logger.WarnContext(ctx, "Readiness check failed",
				log.FieldError, err.Error(),
				log.FieldErrorType, log.ErrorTypeBackend)
		} else {
			checks["backend"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	trace := s.traceMiddleware.GetMetrics()
	limits := s.rateLimiter.GetMetrics()
	sec := s.securityDetector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests", trace.TotalRequests)
	metric("http_client_errors_total", "counter", "Responses with a 4xx status", trace.ClientErrors)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", trace.ServerErrors)
	metric("items_created_total", "counter", "Items created", atomic.LoadInt64(&s.appMetrics.itemsCreated))
	metric("quantity_adjustments_total", "counter", "Quantity adjustments submitted", atomic.LoadInt64(&s.appMetrics.quantityAdjusted))
	metric("items_removed_total", "counter", "Items removed", atomic.LoadInt64(&s.appMetrics.itemsRemoved))
	metric("refreshes_total", "counter", "Manual list refreshes", atomic.LoadInt64(&s.appMetrics.refreshes))
	metric("backend_errors_total", "counter", "Failed backend requests", atomic.LoadInt64(&s.appMetrics.backendErrors))
	inFlight := 0
	if s.store.Loading() {
		inFlight = 1
	}
	metric("refresh_in_flight", "gauge", "Whether a list refresh is waiting on the backend", inFlight)
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", limits.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", limits.ClientCount)
	metric("suspicious_requests_total", "counter", "Requests flagged by the security detector", sec.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.appMetrics.uptime).Seconds()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, NewHTMXResponse(), "index.html", s.pageData(ParseListingParams(r.URL.Query())))
}
