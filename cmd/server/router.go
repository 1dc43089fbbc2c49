package main

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	anchorhandler "spectra/internal/anchor/handler"
	kychandler "spectra/internal/kyc/handler"
	"spectra/internal/platform/health"
	rlmiddleware "spectra/internal/ratelimit/middleware"
	"spectra/pkg/platform/httputil"
	"spectra/pkg/platform/middleware/admin"
	"spectra/pkg/platform/middleware/metadata"
	"spectra/pkg/platform/middleware/request"
	"spectra/pkg/platform/middleware/requesttime"
	"spectra/pkg/validation"
)

const requestTimeout = 30 * time.Second

type routerDeps struct {
	kyc            *kychandler.Handler
	anchors        *anchorhandler.Handler
	health         *health.Handler
	ratelimit      *rlmiddleware.Middleware
	registry       *prometheus.Registry
	adminToken     string
	frontendURL    string
	trustedProxies []netip.Prefix
	logger         *slog.Logger
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	latency := request.NewMetrics(d.registry)

	r.Use(request.Recovery(d.logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(d.trustedProxies).Handler)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.frontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID", admin.TokenHeader, admin.ActorHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(request.BodyLimit(validation.MaxBodySize))
	r.Use(request.Timeout(requestTimeout))
	r.Use(request.LatencyMiddleware(latency, routePattern))

	r.Get("/", handleBanner)
	r.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))
	d.health.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(d.ratelimit.Handler)
		r.Use(request.ContentTypeJSON)
		guard := admin.RequireAdminToken(d.adminToken, d.logger)
		d.kyc.Register(r, guard)
		d.anchors.Register(r, guard)
	})
	return r
}

// routePattern labels latency by chi pattern, not raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type bannerResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

func handleBanner(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, bannerResponse{
		Name:    "Spectra KYC API",
		Version: health.Version,
		Endpoints: []string{
			"POST /kyc/submit",
			"GET /kyc/status/{stellarAccount}",
			"GET /kyc/credentials/{stellarAccount}",
			"POST /kyc/verify",
			"POST /kyc/proofs/age/verify",
			"GET /anchor",
			"GET /anchor/{id}",
			"GET /health",
		},
	})
}
