// Command extractd runs receipt images through the extraction pipeline
// and prints the structured shipment data. Configuration comes from
// flags, TEXTIFY_* environment variables, or both.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/batch"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/common"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/export"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/extract/ai"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/fingerprint"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/ingest"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/learning"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/logging"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/metrics"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/ocr"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/persist"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/pipeline"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/records"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := common.LoadConfig()

	fs := ff.NewFlagSet("extractd")
	var (
		storePath  = fs.StringLong("store", cfg.Store.Path, "bbolt store for fingerprints and learned corrections")
		aiURL      = fs.StringLong("ai-url", cfg.AI.BaseURL, "AI extraction service base URL")
		aiKey      = fs.StringLong("ai-key", cfg.AI.APIKey, "AI service API key")
		aiModel    = fs.StringLong("ai-model", cfg.AI.Model, "AI model name")
		aiTimeout  = fs.DurationLong("ai-timeout", cfg.AI.Timeout, "AI extraction timeout before OCR fallback")
		tessBin    = fs.StringLong("tesseract", cfg.OCR.Tesseract, "tesseract binary")
		langs      = fs.StringLong("langs", cfg.OCR.Languages, "tesseract language pack list")
		batchSize  = fs.IntLong("batch-size", cfg.Batch.Size, "files per extraction wave")
		batchDelay = fs.DurationLong("batch-delay", cfg.Batch.Delay, "pause between waves")
		dbURL      = fs.StringLong("db-url", cfg.Persist.DSN, "postgres DSN for completed records (empty disables)")
		metricsOn  = fs.StringLong("metrics-addr", cfg.Metrics.Addr, "prometheus listen address (empty disables)")
		logLevel   = fs.StringLong("log-level", cfg.Log.Level, "log level: debug, info, warn, error")
		exportPath = fs.StringLong("export", "", "write completed records to this XLSX file on exit")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("TEXTIFY")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}

	cfg.Store.Path = *storePath
	cfg.AI.BaseURL = *aiURL
	cfg.AI.APIKey = *aiKey
	cfg.AI.Model = *aiModel
	cfg.AI.Timeout = *aiTimeout
	cfg.OCR.Tesseract = *tessBin
	cfg.OCR.Languages = *langs
	cfg.Batch.Size = *batchSize
	cfg.Batch.Delay = *batchDelay
	cfg.Persist.DSN = *dbURL
	cfg.Metrics.Addr = *metricsOn
	cfg.Log.Level = *logLevel
	if err := cfg.Validate(); err != nil {
		return err
	}

	files := fs.GetArgs()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("no image files given")
	}

	logger := logging.NewJSONLogger("extractd", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()

	fps, err := fingerprint.NewStore(kv, logger)
	if err != nil {
		return err
	}
	learner := learning.NewCorrector(kv, logger)

	var saver persist.Saver = persist.NopSaver{Logger: logger}
	if cfg.Persist.DSN != "" {
		pg, err := persist.Open(ctx, cfg.Persist, logger)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer pg.Close()
		saver = pg
	}

	m := metrics.NewPipelineMetrics()
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics.listener.failed", "addr", cfg.Metrics.Addr, "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("metrics.listening", "addr", cfg.Metrics.Addr)
	}

	recs := records.NewCollection(logger)
	orch := pipeline.NewOrchestrator(
		pipeline.Config{AITimeout: cfg.AI.Timeout, OCRTimeout: cfg.OCR.Timeout},
		ai.NewClient(cfg.AI, logger),
		ocr.NewEngine(cfg.OCR, logger),
		learner,
		recs,
		fps,
		saver,
		m,
		logger,
	)

	queue := batch.NewQueue()
	drained := make(chan batch.Summary, 1)
	sched := batch.NewScheduler(queue,
		func(ctx context.Context, item batch.Item) constants.ExtractionMethod {
			return orch.Extract(ctx, item.RecordID, item.ProcessingID, item.File)
		},
		batch.WithBatchSize(cfg.Batch.Size),
		batch.WithDelay(cfg.Batch.Delay),
		batch.WithMetrics(m),
		batch.WithLogger(logger),
		batch.WithProgress(func(p int) { fmt.Fprintf(os.Stderr, "\rprocessing %3d%%", p) }),
		batch.WithOnDrain(func(s batch.Summary) { drained <- s }),
	)
	gate := ingest.NewGate(recs, fps, queue, sched, m, logger)

	sources, err := loadFiles(files)
	if err != nil {
		return err
	}
	res := gate.Submit(ctx, sources)
	for _, rej := range res.Rejected {
		fmt.Fprintf(os.Stderr, "skipped %s: %s\n", rej.Name, rej.Reason)
	}
	if res.Dropped > 0 {
		fmt.Fprintf(os.Stderr, "dropped %d files past the %d per-run cap\n", res.Dropped, constants.MaxFilesPerSubmit)
	}
	if len(res.Accepted) == 0 {
		return fmt.Errorf("nothing to process")
	}

	var summary batch.Summary
	select {
	case summary = <-drained:
		fmt.Fprintln(os.Stderr)
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr)
		logger.Warn("extractd.interrupted")
		queue.Clear()
		select {
		case summary = <-drained:
		case <-time.After(5 * time.Second):
		}
	}

	printResults(recs)
	engine := "ocr"
	if summary.UsedAI() {
		engine = "ai"
	}
	fmt.Printf("\nprocessed %d files in %d batches using %s (%d failed)\n",
		summary.Processed, summary.Batches, engine, summary.Failed)

	if *exportPath != "" {
		data, err := export.NewService(logger).RecordsXLSX(recs.List())
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.WriteFile(*exportPath, data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Printf("export written to %s\n", *exportPath)
	}
	return nil
}

// loadFiles reads each path into a SourceFile, resolving the MIME type
// from the extension. Unknown extensions pass through with an empty MIME
// so the gate rejects them with a proper reason.
func loadFiles(paths []string) ([]*entity.SourceFile, error) {
	out := make([]*entity.SourceFile, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		out = append(out, &entity.SourceFile{
			Name:         filepath.Base(p),
			Size:         info.Size(),
			MIMEType:     constants.MIMEForExt(filepath.Ext(p)),
			LastModified: info.ModTime(),
			Path:         p,
		})
	}
	return out, nil
}

func printResults(recs *records.Collection) {
	fmt.Printf("%-4s %-12s %-22s %-13s %-14s %-12s %-10s %s\n",
		"#", "code", "sender", "phone", "province", "price", "status", "method")
	for _, r := range recs.List() {
		fmt.Printf("%-4d %-12s %-22s %-13s %-14s %-12s %-10s %s\n",
			r.Number,
			r.ShipmentFields.Code,
			r.ShipmentFields.SenderName,
			r.ShipmentFields.PhoneNumber,
			r.ShipmentFields.Province,
			r.ShipmentFields.Price,
			r.Status,
			r.Method,
		)
		if r.ErrorMessage != "" {
			fmt.Printf("     ! %s\n", r.ErrorMessage)
		}
	}
}
