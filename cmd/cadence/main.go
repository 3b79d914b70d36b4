// Command cadence runs one weekly aggregation batch: it reads activity
// events as JSONL, scores and classifies every tracked user, and writes
// the week's records as JSONL.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/cadence/internal/adapters/profile"
	app "github.com/okian/cadence/internal/app"
	"github.com/okian/cadence/internal/config"
	"github.com/okian/cadence/internal/domain/model"
	"github.com/okian/cadence/pkg/logger"
	"github.com/okian/cadence/pkg/metrics"
)

const (
	dateLayout = "2006-01-02"

	// Events can carry sizable metadata; lines are capped generously.
	maxLineBytes = 1 << 20

	metricsReadHeaderTimeout = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		eventsPath  = flag.String("events", "-", "JSONL activity events file, - for stdin")
		outPath     = flag.String("out", "-", "JSONL output file, - for stdout")
		weekArg     = flag.String("week", "", "target week start (YYYY-MM-DD), default: previous week")
		metricsAddr = flag.String("metrics-addr", "", "optional address to expose /metrics on during the run")
	)
	flag.Parse()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	week := time.Now().UTC().AddDate(0, 0, -model.DaysPerWeek)
	if *weekArg != "" {
		week, err = time.ParseInLocation(dateLayout, *weekArg, time.UTC)
		if err != nil {
			log.Error(ctx, "invalid -week value", logger.String("week", *weekArg), logger.Error(err))
			os.Exit(1)
		}
	}
	week = model.WeekStart(week, cfg.Anchor())

	opts := app.FromConfig(cfg)
	opts = append(opts, app.WithLogger(log))

	if cfg.RosterPath != "" {
		roster, err := profile.LoadRoster(cfg.RosterPath, profile.WithGraceWeeks(cfg.RoleChangeGraceWeeks))
		if err != nil {
			log.Error(ctx, "failed to load roster", logger.String("path", cfg.RosterPath), logger.Error(err))
			os.Exit(1)
		}
		opts = append(opts, app.WithDirectory(roster))
	}

	svc, err := app.New(opts...)
	if err != nil {
		log.Error(ctx, "failed to build service", logger.Error(err))
		os.Exit(1)
	}

	if *metricsAddr != "" {
		go serveMetrics(ctx, log, *metricsAddr)
	}

	if err := ingestEvents(ctx, svc, log, *eventsPath); err != nil {
		log.Error(ctx, "event ingestion failed", logger.Error(err))
		os.Exit(1)
	}
	stats := svc.IngestStats()
	log.Info(ctx, "ingestion finished",
		logger.Int64("ingested", stats.Ingested),
		logger.Int64("dropped", stats.Dropped),
		logger.Int64("duplicates", stats.Duplicates),
	)

	if err := svc.RunBatch(ctx, week); err != nil {
		log.Error(ctx, "batch run failed", logger.Error(err))
		os.Exit(1)
	}

	if err := writeReport(ctx, svc, week, *outPath); err != nil {
		log.Error(ctx, "failed to write report", logger.Error(err))
		os.Exit(1)
	}
}

// ingestEvents streams JSONL events into the service. Unparseable lines
// are logged and skipped; the batch still runs.
func ingestEvents(ctx context.Context, svc *app.Service, log logger.Logger, path string) error {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var e model.ActivityEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			log.Warn(ctx, "skipping malformed event line", logger.Int("line", line), logger.Error(err))
			continue
		}
		svc.Ingest(ctx, e)

		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// writeReport emits the target week's record for every known user, one
// JSON object per line.
func writeReport(ctx context.Context, svc *app.Service, week time.Time, path string) error {
	var out io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	enc := json.NewEncoder(out)
	for _, userID := range svc.Users(ctx) {
		record, err := svc.WeekFor(ctx, userID, week)
		if err != nil {
			// Users that failed aggregation have no record for the week.
			continue
		}
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return nil
}

func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn(ctx, "metrics server stopped", logger.Error(err))
	}
}
