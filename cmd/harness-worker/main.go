// Command harness-worker consumes build requests from NATS, resolves each
// harness document and publishes the graph description and BOM. Resolved
// graphs are optionally persisted to Neo4j.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/loomworks/loom/engine/bom"
	"github.com/loomworks/loom/engine/export"
	"github.com/loomworks/loom/engine/harness"
	"github.com/loomworks/loom/pkg/fn"
	"github.com/loomworks/loom/pkg/metrics"
	"github.com/loomworks/loom/pkg/natsutil"
)

const (
	subjectBuild = "harness.build"
	subjectBuilt = "harness.built"
	subjectDLQ   = "harness.build.dlq"
	queueGroup   = "harness-workers"
)

var met = metrics.New()

var (
	mBuildsTotal = met.Counter("loom_worker_builds_total", "Build requests processed")
	mBuildErrors = met.Counter("loom_worker_build_errors_total", "Build requests that failed")
	mDLQTotal    = met.Counter("loom_worker_dlq_total", "Requests sent to the dead letter queue")
	mExports     = met.Counter("loom_worker_exports_total", "Harness graphs persisted to Neo4j")
	mInflight    = met.Gauge("loom_worker_inflight", "Requests currently being built")
	mBuildDur    = met.Histogram("loom_worker_build_seconds", "Per-request build time", nil)
)

// BuildRequest is the payload consumed from harness.build.
type BuildRequest struct {
	Name     string `json:"name"`
	Document string `json:"document"`
}

// BuildResult is the payload published on harness.built.
type BuildResult struct {
	Name  string                    `json:"name"`
	Graph *harness.GraphDescription `json:"graph"`
	BOM   []bom.Item                `json:"bom"`
}

// BuildFailure is the payload published on the dead letter queue.
type BuildFailure struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Error    string `json:"error"`
}

// Config holds all environment-based configuration.
type Config struct {
	NATSURL     string
	Neo4jURL    string
	Neo4jUser   string
	Neo4jPass   string
	ExportGraph bool
	MetricsPort int
}

func loadConfig() Config {
	return Config{
		NATSURL:     envOr("NATS_URL", nats.DefaultURL),
		Neo4jURL:    envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:   envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:   envOr("NEO4J_PASS", "password"),
		ExportGraph: os.Getenv("EXPORT_GRAPH") == "true",
		MetricsPort: 9091,
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
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	met.ServeAsync(cfg.MetricsPort)

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("harness-worker"))
	if err != nil {
		return err
	}
	defer nc.Drain()
	logger.Info("connected to NATS", "url", cfg.NATSURL)

	var store *export.Store
	if cfg.ExportGraph {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			return err
		}
		defer driver.Close(ctx)
		if err := driver.VerifyConnectivity(ctx); err != nil {
			return err
		}
		store = export.New(driver)
		logger.Info("graph export enabled", "url", cfg.Neo4jURL)
	}

	w := &worker{nc: nc, store: store, log: logger}
	sub, err := natsutil.QueueSubscribe(nc, subjectBuild, queueGroup, w.handle)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	logger.Info("worker listening", "subject", subjectBuild, "queue", queueGroup)
	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}

type worker struct {
	nc    *nats.Conn
	store *export.Store
	log   *slog.Logger
}

func (w *worker) handle(ctx context.Context, req BuildRequest) {
	mInflight.Inc()
	defer mInflight.Dec()
	start := time.Now()
	defer mBuildDur.Since(start)
	mBuildsTotal.Inc()

	result := fn.Retry(ctx, fn.DefaultRetry, func(ctx context.Context) fn.Result[BuildResult] {
		return w.build(ctx, req)
	})
	res, err := result.Unwrap()
	if err != nil {
		mBuildErrors.Inc()
		w.log.Error("build failed", "name", req.Name, "err", err)
		w.toDLQ(ctx, req, err)
		return
	}

	if err := natsutil.Publish(ctx, w.nc, subjectBuilt, res); err != nil {
		w.log.Error("publish result failed", "name", req.Name, "err", err)
		return
	}
	w.log.Info("harness built", "name", req.Name,
		"components", len(res.Graph.Nodes), "edges", len(res.Graph.Edges))
}

// build resolves the document end to end. Parse and describe errors are
// permanent but cheap, so they share the retry path with the export.
func (w *worker) build(ctx context.Context, req BuildRequest) fn.Result[BuildResult] {
	h, err := harness.Parse(ctx, []byte(req.Document))
	if err != nil {
		return fn.Err[BuildResult](err)
	}
	g, err := h.Describe()
	if err != nil {
		return fn.Err[BuildResult](err)
	}
	items, err := bom.Aggregate(h)
	if err != nil {
		return fn.Err[BuildResult](err)
	}

	if w.store != nil {
		if err := w.store.SaveHarness(ctx, req.Name, h); err != nil {
			return fn.Err[BuildResult](err)
		}
		mExports.Inc()
	}

	return fn.Ok(BuildResult{Name: req.Name, Graph: g, BOM: items})
}

func (w *worker) toDLQ(ctx context.Context, req BuildRequest, cause error) {
	mDLQTotal.Inc()
	failure := BuildFailure{Name: req.Name, Document: req.Document, Error: cause.Error()}
	if err := natsutil.Publish(ctx, w.nc, subjectDLQ, failure); err != nil {
		w.log.Error("dead letter publish failed", "name", req.Name, "err", err)
	}
}
