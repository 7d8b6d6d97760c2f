// Package pipeline drives a single receipt through extraction: AI engine
// first under a hard timeout, traditional OCR as fallback, then the
// parse and correction chain.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/common"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/extract"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/fingerprint"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/learning"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/metrics"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/parser"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/persist"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/places"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/records"
)

// Config holds orchestrator timeouts. Zero values take the documented
// defaults.
type Config struct {
	AITimeout   time.Duration
	OCRTimeout  time.Duration
	SaveTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.AITimeout <= 0 {
		c.AITimeout = constants.DefaultAITimeout
	}
	if c.OCRTimeout <= 0 {
		c.OCRTimeout = constants.DefaultOCRTimeout
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = 30 * time.Second
	}
	return c
}

// Orchestrator runs the per-record extraction state machine:
// pending -> processing -> completed | error. Failures never escape;
// they are converted into record state.
type Orchestrator struct {
	cfg      Config
	ai       extract.StructuredExtractor
	ocr      extract.TextRecognizer
	learning *learning.Corrector
	records  *records.Collection
	fps      *fingerprint.Store
	saver    persist.Saver
	metrics  *metrics.PipelineMetrics
	logger   *slog.Logger
}

func NewOrchestrator(
	cfg Config,
	ai extract.StructuredExtractor,
	ocr extract.TextRecognizer,
	lc *learning.Corrector,
	recs *records.Collection,
	fps *fingerprint.Store,
	saver persist.Saver,
	m *metrics.PipelineMetrics,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if saver == nil {
		saver = persist.NopSaver{Logger: logger}
	}
	return &Orchestrator{
		cfg:      cfg.withDefaults(),
		ai:       ai,
		ocr:      ocr,
		learning: lc,
		records:  recs,
		fps:      fps,
		saver:    saver,
		metrics:  m,
		logger:   logger,
	}
}

// Extract processes one record to a terminal state and reports which
// engine produced the text, or "" on total failure. It never returns an
// error: both-engine failure lands the record at status error with a
// user-facing message and the file kept for retry.
func (o *Orchestrator) Extract(ctx context.Context, recordID uuid.UUID, processingID string, file *entity.SourceFile) constants.ExtractionMethod {
	if _, err := o.records.BeginProcessing(recordID); err != nil {
		o.logger.Warn("orchestrator.begin.missing", "record_id", recordID, "error", err)
		return ""
	}

	start := time.Now()
	o.metrics.StartExtraction()

	result, err := o.runEngines(ctx, file)
	if err != nil {
		o.metrics.FinishExtraction("none", string(constants.StatusError), time.Since(start))
		o.logger.Error("orchestrator.extract.failed", "record_id", recordID, "error", err)
		if mErr := o.records.MarkError(recordID, processingID, userFacingMessage(err)); mErr != nil {
			o.logger.Warn("orchestrator.mark_error.failed", "record_id", recordID, "error", mErr)
		}
		return ""
	}

	fields := o.buildFields(result)

	updated, err := o.records.ApplyExtraction(
		recordID, processingID,
		result.Text, result.Confidence, result.Method, fields,
	)
	if err != nil {
		o.metrics.FinishExtraction(string(result.Method), string(constants.StatusError), time.Since(start))
		o.logger.Warn("orchestrator.apply.failed", "record_id", recordID, "error", err)
		return ""
	}

	o.metrics.FinishExtraction(string(result.Method), string(updated.Status), time.Since(start))
	o.logger.Info("orchestrator.extract.ok",
		"record_id", recordID,
		"method", result.Method,
		"confidence", result.Confidence,
		"status", updated.Status,
	)

	if updated.Status == constants.StatusCompleted {
		o.finishCompleted(updated, file)
	}
	return result.Method
}

// runEngines tries the AI service under its hard timeout and falls back
// to OCR. The AI loser is discarded, not cancelled beyond its context;
// an HTTP call already in flight is abandoned when the context expires.
func (o *Orchestrator) runEngines(ctx context.Context, file *entity.SourceFile) (extract.Result, error) {
	aiCtx, cancel := context.WithTimeout(ctx, o.cfg.AITimeout)
	result, aiErr := o.ai.ExtractStructured(aiCtx, file)
	cancel()
	if aiErr == nil {
		return result, nil
	}

	if errors.Is(aiErr, context.DeadlineExceeded) {
		aiErr = fmt.Errorf("%w: %w", common.ErrEngineTimeout, aiErr)
		o.logger.Warn("orchestrator.ai.timeout", "file", file.Name, "timeout", o.cfg.AITimeout)
	} else {
		o.logger.Warn("orchestrator.ai.error", "file", file.Name, "error", aiErr)
	}

	ocrCtx, cancel := context.WithTimeout(ctx, o.cfg.OCRTimeout)
	defer cancel()
	result, ocrErr := o.ocr.Recognize(ocrCtx, file)
	if ocrErr != nil {
		o.logger.Error("orchestrator.ocr.error", "file", file.Name, "error", ocrErr)
		return extract.Result{}, errors.Join(common.ErrExtractionFailed, aiErr, ocrErr)
	}
	return result, nil
}

// buildFields runs the parse and correction chain over the engine output.
func (o *Orchestrator) buildFields(result extract.Result) entity.ShipmentFields {
	fields := parser.Parse(result.Text)
	if result.Fields != nil {
		// Engine-provided structured fields outrank pattern matches.
		fields.Override(*result.Fields)
		fields.PhoneNumber = parser.NormalizePhone(fields.PhoneNumber)
		fields.Price = parser.NormalizePrice(fields.Price)
	}
	if fields.Province != "" {
		fields.Province = places.Correct(fields.Province)
		if !places.IsCanonical(fields.Province) {
			o.logger.Debug("orchestrator.province.unresolved", "value", fields.Province)
		}
	}
	if o.learning != nil {
		fields = o.learning.Enhance(result.Text, fields)
	}
	return fields
}

// finishCompleted commits the fingerprint and hands the record to the
// persistence collaborator as a detached task. Persistence failure is
// logged by the supervisor goroutine and never reverts completed state.
func (o *Orchestrator) finishCompleted(rec *entity.ExtractionRecord, file *entity.SourceFile) {
	if o.fps != nil {
		fp := fingerprint.For(file, rec.ID.String())
		if err := o.fps.Commit(fp); err != nil {
			o.logger.Warn("orchestrator.fingerprint.commit_failed", "record_id", rec.ID, "error", err)
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), o.cfg.SaveTimeout)
		defer cancel()
		if err := o.saver.Save(ctx, rec); err != nil {
			o.logger.Error("orchestrator.persist.failed", "record_id", rec.ID, "error", err)
			return
		}
		o.logger.Debug("orchestrator.persist.ok", "record_id", rec.ID)
	}()
}

func userFacingMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "انتهت مهلة استخراج النص، حاول مرة اخرى"
	}
	return "تعذر استخراج النص من الصورة"
}
