// Package records holds the in-memory collection of extraction records
// for the current session. All mutation funnels through a single writer;
// every update derives the next state from the latest snapshot under the
// collection lock, never from a stale copy held by a caller.
package records

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/common"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
)

// Collection owns every ExtractionRecord of the session. Callers receive
// clones; the stored records are mutated only by Collection methods.
type Collection struct {
	mu     sync.Mutex
	items  map[uuid.UUID]*entity.ExtractionRecord
	nextNo int
	logger *slog.Logger
}

func NewCollection(logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{
		items:  make(map[uuid.UUID]*entity.ExtractionRecord),
		nextNo: 1,
		logger: logger,
	}
}

// Create adds a pending record wrapping file and returns a clone.
func (c *Collection) Create(file *entity.SourceFile) *entity.ExtractionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := &entity.ExtractionRecord{
		ID:           uuid.New(),
		Number:       c.nextNo,
		File:         file,
		Status:       constants.StatusPending,
		AddedAt:      time.Now().UTC(),
		ProcessingID: uuid.New().String(),
	}
	c.nextNo++
	c.items[rec.ID] = rec
	return rec.Clone()
}

// Get returns a clone of the record, or ErrNotFound.
func (c *Collection) Get(id uuid.UUID) (*entity.ExtractionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return rec.Clone(), nil
}

// List returns clones of all records in display order.
func (c *Collection) List() []*entity.ExtractionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*entity.ExtractionRecord, 0, len(c.items))
	for _, rec := range c.items {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// BeginProcessing transitions the record to processing and returns a
// clone carrying the processing id the extraction must present when it
// reports back.
func (c *Collection) BeginProcessing(id uuid.UUID) (*entity.ExtractionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	rec.Status = constants.StatusProcessing
	rec.ErrorMessage = ""
	return rec.Clone(), nil
}

// ApplyExtraction lands an engine result on the record. A result whose
// processing id no longer matches is a leaked completion from a replaced
// or reprocessed record; it is dropped silently (idempotent update, not
// an error). Status is promoted to completed only when the mandatory
// fields are all present; otherwise the record stays at processing,
// waiting for user edits to finish it.
func (c *Collection) ApplyExtraction(id uuid.UUID, processingID string, text string, confidence int, method constants.ExtractionMethod, fields entity.ShipmentFields) (*entity.ExtractionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if rec.ProcessingID != processingID {
		c.logger.Debug("records.apply.stale", "record_id", id, "stale_pid", processingID)
		return rec.Clone(), nil
	}

	rec.ExtractedText = text
	rec.Confidence = confidence
	rec.Method = method
	// Merge, not replace: edits the user made while processing win.
	rec.ShipmentFields.Merge(fields)
	if rec.RequiredComplete() {
		rec.Status = constants.StatusCompleted
	}
	return rec.Clone(), nil
}

// MarkError records an extraction failure with a user-facing message. The
// source file is kept so the user can retry. Stale processing ids are
// dropped the same way ApplyExtraction drops them.
func (c *Collection) MarkError(id uuid.UUID, processingID, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.items[id]
	if !ok {
		return common.ErrNotFound
	}
	if rec.ProcessingID != processingID {
		return nil
	}
	rec.Status = constants.StatusError
	rec.ErrorMessage = message
	return nil
}

// EditField applies a user correction to a single field. The record is
// auto-promoted to completed on the edit that fills the last mandatory
// field. Edits remain possible after submission; the submitted flag
// itself never reverts.
func (c *Collection) EditField(id uuid.UUID, field, value string) (*entity.ExtractionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}

	switch field {
	case "code":
		rec.Code = value
	case "sender_name":
		rec.SenderName = value
	case "phone_number":
		rec.PhoneNumber = value
	case "province":
		rec.Province = value
	case "price":
		rec.Price = value
	case "company_name":
		rec.CompanyName = value
	default:
		return nil, common.NewAppError("INVALID_FIELD", "unknown field "+field, common.ErrNotFound)
	}

	if rec.Status != constants.StatusCompleted && rec.RequiredComplete() {
		rec.Status = constants.StatusCompleted
		c.logger.Info("records.auto_completed", "record_id", id, "number", rec.Number)
	}
	return rec.Clone(), nil
}

// MarkSubmitted flips the one-way submitted flag.
func (c *Collection) MarkSubmitted(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.items[id]
	if !ok {
		return common.ErrNotFound
	}
	rec.Submitted = true
	return nil
}

// Reprocess re-enters a completed or errored record at processing under a
// fresh processing id, so any still-running extraction from the previous
// attempt lands stale. A record that never finished cannot be
// reprocessed; its first pass is still the live one.
func (c *Collection) Reprocess(id uuid.UUID) (*entity.ExtractionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if rec.Status != constants.StatusCompleted && rec.Status != constants.StatusError {
		return nil, common.NewAppError("NOT_FINISHED",
			"cannot reprocess a record that is still "+string(rec.Status), nil)
	}
	rec.Status = constants.StatusProcessing
	rec.ErrorMessage = ""
	rec.ProcessingID = uuid.New().String()
	return rec.Clone(), nil
}

// Delete removes the record and returns its final state so the caller
// can release the fingerprint when extraction never completed.
func (c *Collection) Delete(id uuid.UUID) (*entity.ExtractionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	delete(c.items, id)
	return rec, nil
}

// Len reports the number of records in the session.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
