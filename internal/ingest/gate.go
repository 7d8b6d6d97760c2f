// Package ingest is the admission gate in front of the pipeline: type
// filtering, the per-submit cap and duplicate detection all happen here,
// before a record ever exists.
package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/batch"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/common"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/fingerprint"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/metrics"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/records"
)

// Rejection names one file the gate refused and why. Err is one of the
// taxonomy sentinels (common.ErrUnsupportedType, common.ErrDuplicate);
// Reason is the user-facing message.
type Rejection struct {
	Name   string
	Reason string
	Err    error
}

// Result is the outcome of one Submit call.
type Result struct {
	Accepted []*entity.ExtractionRecord
	Rejected []Rejection
	Dropped  int // files past the per-submit cap, reported in aggregate
}

// Gate admits files into the pipeline. It owns no goroutines; accepted
// files are queued and the scheduler is kicked.
type Gate struct {
	maxFiles  int
	records   *records.Collection
	fps       *fingerprint.Store
	queue     *batch.Queue
	scheduler *batch.Scheduler
	metrics   *metrics.PipelineMetrics
	logger    *slog.Logger
}

func NewGate(
	recs *records.Collection,
	fps *fingerprint.Store,
	queue *batch.Queue,
	scheduler *batch.Scheduler,
	m *metrics.PipelineMetrics,
	logger *slog.Logger,
) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		maxFiles:  constants.MaxFilesPerSubmit,
		records:   recs,
		fps:       fps,
		queue:     queue,
		scheduler: scheduler,
		metrics:   m,
		logger:    logger,
	}
}

// Submit filters, caps and deduplicates files, assigns each admitted
// file its preview reference, creates pending records for the survivors,
// queues them and kicks the scheduler. Resubmitting an already known
// file is not an error; it just yields nothing new.
func (g *Gate) Submit(ctx context.Context, files []*entity.SourceFile) Result {
	var res Result

	admitted := 0
	for _, f := range files {
		if !constants.IsImageMIME(f.MIMEType) {
			res.Rejected = append(res.Rejected, Rejection{
				Name:   f.Name,
				Reason: fmt.Sprintf("نوع الملف %s غير مدعوم", f.MIMEType),
				Err:    common.ErrUnsupportedType,
			})
			g.logger.Debug("ingest.rejected.type", "file", f.Name, "mime", f.MIMEType)
			continue
		}
		if admitted >= g.maxFiles {
			res.Dropped++
			continue
		}
		admitted++

		// The preview ref is assigned before the fingerprint is derived,
		// so the identity the dedup check sees is the identity that gets
		// tracked, committed and released later.
		if f.PreviewRef == "" {
			f.PreviewRef = previewRef(f)
		}
		fp := fingerprint.For(f, "")
		if g.fps.Seen(fp) {
			g.metrics.DuplicateRejected()
			res.Rejected = append(res.Rejected, Rejection{
				Name:   f.Name,
				Reason: "تمت اضافة هذا الملف سابقا",
				Err:    common.ErrDuplicate,
			})
			g.logger.Debug("ingest.rejected.duplicate", "file", f.Name, "fingerprint", fp)
			continue
		}

		rec := g.records.Create(f)
		g.fps.Track(fp)
		g.queue.Enqueue(batch.Item{
			RecordID:     rec.ID,
			ProcessingID: rec.ProcessingID,
			File:         f,
		})
		res.Accepted = append(res.Accepted, rec)
	}

	g.metrics.SetQueueDepth(g.queue.Len())
	if res.Dropped > 0 {
		g.logger.Warn("ingest.capped",
			"dropped", res.Dropped, "max", g.maxFiles, "error", common.ErrTooManyFiles)
	}
	g.logger.Info("ingest.submit",
		"offered", len(files),
		"accepted", len(res.Accepted),
		"rejected", len(res.Rejected),
		"dropped", res.Dropped,
	)

	if len(res.Accepted) > 0 {
		g.scheduler.Kick(ctx)
	}
	return res
}

// previewRef builds the locally-dereferenceable display reference for an
// accepted file. Disk-backed files are addressed in place; in-memory
// uploads get a handle derived from their metadata and bytes, so the
// same upload always maps to the same reference and two different
// nameless uploads never collide.
func previewRef(f *entity.SourceFile) string {
	if f.Path != "" {
		return "file://" + f.Path
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s:%d:%d:", f.Name, f.Size, f.LastModified.UnixMilli())
	h.Write(f.Data)
	return fmt.Sprintf("mem://%x", h.Sum(nil)[:12])
}

// Reprocess queues a finished record for another extraction pass under a
// fresh processing id, so a result from the abandoned pass cannot land.
func (g *Gate) Reprocess(ctx context.Context, id uuid.UUID) error {
	rec, err := g.records.Reprocess(id)
	if err != nil {
		return err
	}
	g.queue.Enqueue(batch.Item{
		RecordID:     rec.ID,
		ProcessingID: rec.ProcessingID,
		File:         rec.File,
	})
	g.logger.Info("ingest.reprocess", "record_id", id)
	g.scheduler.Kick(ctx)
	return nil
}

// Remove deletes a record and releases its fingerprint so the same file
// can be submitted again.
func (g *Gate) Remove(id uuid.UUID) error {
	rec, err := g.records.Delete(id)
	if err != nil {
		return err
	}
	if rec.File != nil {
		g.fps.Release(fingerprint.For(rec.File, rec.ID.String()))
	}
	return nil
}
