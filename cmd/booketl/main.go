// Command booketl loads a books CSV export into a relational database:
// books, authors, and the books_authors junction between them. The CLI layer
// stays thin: it decodes and validates the pipeline config, wires the source,
// parser, and storage backend, and runs one pass.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"booketl/internal/config"
	"booketl/internal/datasource"
	"booketl/internal/datasource/file"
	"booketl/internal/datasource/httpds"
	"booketl/internal/metrics"
	"booketl/internal/metrics/prompush"
	csvparser "booketl/internal/parser/csv"
	"booketl/internal/pipeline"
	"booketl/internal/storage"

	// Register all storage backends with the factory; the config picks one.
	_ "booketl/internal/storage/all"
)

func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/books.json", "pipeline config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	var p config.Pipeline
	err = json.NewDecoder(f).Decode(&p)
	_ = f.Close()
	if err != nil {
		fatalf("decode config: %v", err)
	}

	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		fatalf("configuration is invalid: %s", cfgPath)
	}
	if validate {
		log.Printf("configuration is valid: %s", cfgPath)
		return
	}

	initMetrics(p.Job, metricsBackendFlg, pushGatewayURLFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	runID := uuid.NewString()
	log.Printf("run %s: job=%s config=%s", runID, p.Job, cfgPath)

	ctx := context.Background()
	start := time.Now()
	if err := run(ctx, p); err != nil {
		metrics.RecordStep(p.Job, "run", err, time.Since(start))
		log.Fatalf("run %s: %v", runID, err)
	}
	metrics.RecordStep(p.Job, "run", nil, time.Since(start))
	log.Printf("run %s: completed in %s", runID, time.Since(start).Truncate(time.Millisecond))
}

// run executes one parse → normalize → decompose → load pass.
func run(ctx context.Context, p config.Pipeline) error {
	src, err := newSource(p.Source)
	if err != nil {
		return err
	}

	par := csvparser.NewParser(csvparser.Options{
		HasHeader: p.Parser.Options.Bool("has_header", false),
		Comma:     p.Parser.Options.Rune("comma", ','),
		Encoding:  p.Parser.Options.String("encoding", ""),
	})

	start := time.Now()
	res, err := pipeline.Run(ctx, src, par, pipeline.Options{
		DropDuplicates: p.Normalize.DropDuplicates,
	})
	metrics.RecordStep(p.Job, "normalize", err, time.Since(start))
	if err != nil {
		return err
	}
	metrics.RecordRows(p.Job, "rows", int64(res.Stats.Rows))
	metrics.RecordRows(p.Job, "duplicates", int64(res.Stats.Duplicates))
	metrics.RecordRows(p.Job, "date_errors", int64(res.Stats.DateErrors))
	metrics.RecordRows(p.Job, "numeric_warnings", int64(res.Stats.NumericWarnings))
	metrics.RecordRows(p.Job, "books", int64(res.Stats.Books))
	metrics.RecordRows(p.Job, "authors", int64(res.Stats.Authors))
	metrics.RecordRows(p.Job, "junctions", int64(res.Stats.Junctions))

	dsn := p.Storage.DB.DSN
	if env := os.Getenv("BOOKETL_DSN"); env != "" {
		dsn = env
	}
	repo, err := storage.New(ctx, storage.Config{Kind: p.Storage.Kind, DSN: dsn})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	if p.Storage.DB.CreateSchema {
		if err := repo.CreateSchema(ctx); err != nil {
			return err
		}
	}

	start = time.Now()
	totals, err := storage.LoadCatalog(ctx, repo, res, p.Runtime.BatchSize)
	metrics.RecordStep(p.Job, "load", err, time.Since(start))
	metrics.RecordRows(p.Job, "inserted", totals.Books+totals.Authors+totals.Junctions)
	return err
}

// newSource builds the byte-stream provider selected by the config.
func newSource(s config.Source) (datasource.Source, error) {
	switch s.Kind {
	case "file":
		return file.NewLocal(s.File.Path), nil
	case "http":
		return httpds.NewClient(s.HTTP.URL, nil), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", s.Kind)
	}
}

// initMetrics installs the metrics backend chosen by flag, falling back to
// env, then to disabled.
func initMetrics(job, backendName, gatewayURL string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gatewayURL == "" {
			gatewayURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gatewayURL == "" {
			gatewayURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gatewayURL)
		if err != nil {
			log.Printf("metrics: init pushgateway backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=pushgateway url=%s job=%s", gatewayURL, job)
		metrics.SetBackend(b)
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
