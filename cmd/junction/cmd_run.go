package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/anggasct/junction"
	"github.com/anggasct/junction/pkg/config"
	"github.com/anggasct/junction/pkg/observers"
	"github.com/anggasct/junction/pkg/schedule"
)

type runFlags struct {
	configPath       string
	capacity         int
	arrivalInterval  time.Duration
	crossingDuration time.Duration
	symbolic         bool
	logLevel         string
	logFormat        string
	metrics          bool
	trace            bool
	summary          bool
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <schedule>",
		Short: "Run a schedule through the intersection",
		Long: `Run loads a schedule (text or YAML, "-" for stdin) and prints one line
per crossing to stdout. Diagnostics, metrics, traces and the summary go to
stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			cars, err := loadSchedule(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runSchedule(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, cars)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "YAML config file")
	cmd.Flags().IntVar(&flags.capacity, "capacity", junction.DefaultLaneCapacity, "cars each lane buffer holds")
	cmd.Flags().DurationVar(&flags.arrivalInterval, "arrival-interval", 0, "minimum time between arrivals in a lane")
	cmd.Flags().DurationVar(&flags.crossingDuration, "crossing-duration", 0, "time a car holds its quadrants")
	cmd.Flags().BoolVar(&flags.symbolic, "symbolic", false, "print direction names instead of numbers")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "", "text or json")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", false, "dump Prometheus metrics to stderr after the run")
	cmd.Flags().BoolVar(&flags.trace, "trace", false, "export one span per crossing to stderr")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "print lane and quadrant statistics to stderr")
	return cmd
}

// resolve loads the config file and applies every flag set on the command line
func (f *runFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}

	changed := cmd.Flags().Changed
	if changed("capacity") {
		cfg.LaneCapacity = f.capacity
	}
	if changed("arrival-interval") {
		cfg.ArrivalInterval = f.arrivalInterval
	}
	if changed("crossing-duration") {
		cfg.CrossingDuration = f.crossingDuration
	}
	if changed("symbolic") {
		cfg.Output.Symbolic = f.symbolic
	}
	if changed("log-level") {
		cfg.Log.Level = strings.ToLower(f.logLevel)
	}
	if changed("log-format") {
		cfg.Log.Format = strings.ToLower(f.logFormat)
	}
	if changed("metrics") {
		cfg.Metrics = f.metrics
	}
	if changed("trace") {
		cfg.Trace = f.trace
	}
	if changed("summary") {
		cfg.Summary = f.summary
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func loadSchedule(stdin io.Reader, path string) ([]junction.Car, error) {
	if path == "-" {
		return schedule.Parse(stdin)
	}
	return schedule.Load(path)
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func runSchedule(ctx context.Context, stdout, stderr io.Writer, cfg config.Config, cars []junction.Car) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// logs and spans are written from every crossing worker
	errOut := &syncWriter{w: stderr}
	logger := newLogger(errOut, cfg.Log)

	printer := observers.NewPrintObserver(stdout, cfg.Output.Symbolic)
	validator := observers.NewValidationObserver()
	validator.ExpectCars(cars...)

	opts := append(cfg.Options(),
		junction.WithLogger(logger),
		junction.WithObserver(printer),
		junction.WithObserver(validator),
		junction.WithObserver(observers.NewLoggingObserver(logger)),
	)

	var registry *prometheus.Registry
	if cfg.Metrics {
		registry = prometheus.NewRegistry()
		metrics, err := observers.NewMetricsObserver(registry)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, junction.WithObserver(metrics))
	}

	if cfg.Trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(errOut), stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("trace provider shutdown failed", "error", err)
			}
		}()
		opts = append(opts, junction.WithObserver(observers.NewTracingObserver(ctx, tp)))
	}

	x, err := junction.NewIntersection(cars, opts...)
	if err != nil {
		return err
	}
	if err := x.Run(); err != nil {
		return err
	}
	if err := printer.Err(); err != nil {
		return fmt.Errorf("write crossings: %w", err)
	}

	if cfg.Metrics {
		families, err := registry.Gather()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		if err := writeMetrics(errOut, families); err != nil {
			return err
		}
	}

	if cfg.Summary {
		fmt.Fprint(errOut, renderSummary(x.Summary(), isTerminal(stderr)))
	}

	if validator.HasViolations() {
		for _, v := range validator.GetViolations() {
			logger.Error("crossing rule violated", "violation", v)
		}
		return fmt.Errorf("run %s violated %d crossing rules", x.ID(), len(validator.GetViolations()))
	}
	if missing := validator.GetMissingCars(); len(missing) > 0 {
		return fmt.Errorf("run %s finished with %d cars not crossed", x.ID(), len(missing))
	}
	return nil
}

// syncWriter serializes writes from handlers that each hold their own lock
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func writeMetrics(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
