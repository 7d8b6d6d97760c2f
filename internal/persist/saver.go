// Package persist is the record persistence collaborator: completed
// records are handed to it once, best-effort. The pipeline logs failures
// and never rolls back in-memory state because of them.
package persist

import (
	"context"
	"log/slog"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
)

// Saver persists one completed record. Implementations decide durability;
// the core does not retry.
type Saver interface {
	Save(ctx context.Context, rec *entity.ExtractionRecord) error
}

// NopSaver discards records. Used when no datastore is configured.
type NopSaver struct {
	Logger *slog.Logger
}

func (s NopSaver) Save(_ context.Context, rec *entity.ExtractionRecord) error {
	if s.Logger != nil {
		s.Logger.Debug("persist.nop", "record_id", rec.ID)
	}
	return nil
}
