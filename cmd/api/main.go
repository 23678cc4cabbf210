// Package main implements the loom HTTP API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loomworks/loom/engine/bom"
	"github.com/loomworks/loom/engine/catalog"
	"github.com/loomworks/loom/engine/document"
	"github.com/loomworks/loom/engine/enrich"
	"github.com/loomworks/loom/engine/harness"
	"github.com/loomworks/loom/pkg/metrics"
	"github.com/loomworks/loom/pkg/mid"
)

const maxDocumentBytes = 1 << 20

var met = metrics.New()

var (
	mBuilds    = met.Counter("loom_api_builds_total", "Build requests served")
	mBuildErrs = met.Counter("loom_api_build_errors_total", "Build requests rejected or failed")
	mBuildDur  = met.Histogram("loom_api_build_seconds", "Build request latency", nil)
)

// Config holds all environment-based configuration.
type Config struct {
	Port       string
	CORSOrigin string
	Enrich     bool
}

func loadConfig() Config {
	return Config{
		Port:       envOr("PORT", "8080"),
		CORSOrigin: envOr("CORS_ORIGIN", "*"),
		Enrich:     os.Getenv("ENRICH") == "true",
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()
	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var enricher *enrich.Enricher
	if cfg.Enrich {
		enricher = enrich.New(enrich.FromEnv(), logger)
		if !enricher.Enabled() {
			logger.Warn("enrichment enabled but no supplier credentials set")
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.Handle("POST /api/build", handleBuild(enricher, logger))
	mux.Handle("GET /metrics", met.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.OTel("loom-api"),
		mid.CORS(cfg.CORSOrigin),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// BuildResponse is the JSON response for POST /api/build.
type BuildResponse struct {
	Graph *harness.GraphDescription `json:"graph"`
	BOM   []bom.Item                `json:"bom"`
}

// ErrorResponse carries a build failure back to the client.
type ErrorResponse struct {
	Error string `json:"error"`
}

func handleBuild(enricher *enrich.Enricher, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer mBuildDur.Since(start)
		mBuilds.Inc()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
		if err != nil {
			mBuildErrs.Inc()
			writeError(w, http.StatusBadRequest, "cannot read request body")
			return
		}
		if len(body) == 0 {
			mBuildErrs.Inc()
			writeError(w, http.StatusBadRequest, "empty harness document")
			return
		}

		doc, err := document.Parse(body)
		if err != nil {
			mBuildErrs.Inc()
			writeError(w, statusFor(err), err.Error())
			return
		}
		if enricher != nil && enricher.Enabled() {
			enricher.Apply(r.Context(), doc)
		}
		h, err := harness.Build(r.Context(), doc)
		if err != nil {
			mBuildErrs.Inc()
			writeError(w, statusFor(err), err.Error())
			return
		}
		g, err := h.Describe()
		if err != nil {
			mBuildErrs.Inc()
			logger.Error("describe failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		items, err := bom.Aggregate(h)
		if err != nil {
			mBuildErrs.Inc()
			writeError(w, statusFor(err), err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(BuildResponse{Graph: g, BOM: items})
	}
}

// statusFor maps document and resolution errors to 422; everything else
// a malformed document can trigger is still the client's input, so the
// default is 400 rather than 500.
func statusFor(err error) int {
	var fieldErr *catalog.FieldError
	if errors.As(err, &fieldErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
