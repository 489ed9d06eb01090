package httpadapter

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/resume-classifier/internal/config"
	"github.com/kirillkom/resume-classifier/internal/core/ports"
	"github.com/kirillkom/resume-classifier/internal/observability/metrics"
)

const (
	serviceName = "resume-api"
	resumeField = "resume"

	// multipartOverhead is the slack allowed on top of the file cap for
	// boundaries and part headers.
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

//go:embed web/index.html
var indexHTML []byte

type Router struct {
	cfg      config.Config
	analyzer ports.ResumeAnalyzer
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(cfg config.Config, analyzer ports.ResumeAnalyzer, httpMetrics *metrics.HTTPServerMetrics) *Router {
	return &Router{
		cfg:      cfg,
		analyzer: analyzer,
		metrics:  httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	analyze := rt.guardAnalyze(http.HandlerFunc(rt.analyzeResume))

	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.index)
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/openapi.json", rt.openAPIContract)
	mux.Handle("/analyze", analyze)
	mux.Handle("/predict", analyze)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

// guardAnalyze wraps the upload endpoints with auth, rate limit and
// backpressure, in that order.
func (rt *Router) guardAnalyze(next http.Handler) http.Handler {
	handler := next
	if rt.cfg.APIMaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIQueueTimeoutMS)*time.Millisecond)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	if rt.cfg.APIKey != "" {
		handler = apiKeyMiddleware(handler, rt.cfg.APIKey)
	}
	return handler
}

func (rt *Router) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
