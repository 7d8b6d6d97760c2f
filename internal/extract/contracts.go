// Package extract defines the contracts both extraction engines satisfy.
package extract

import (
	"context"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
)

// Result is raw engine output: the recognized text, a 0..100 confidence,
// and, for engines that understand the document, optional structured
// fields that take precedence over pattern parsing.
type Result struct {
	Text       string
	Confidence int
	Fields     *entity.ShipmentFields
	Method     constants.ExtractionMethod
}

// StructuredExtractor is the AI extraction service: a network call that
// may fail or hang, so callers must enforce a timeout through ctx.
type StructuredExtractor interface {
	ExtractStructured(ctx context.Context, file *entity.SourceFile) (Result, error)
}

// TextRecognizer is the traditional OCR engine. CPU-bound rather than
// network-bound; it honors ctx cancellation but imposes no timeout of
// its own.
type TextRecognizer interface {
	Recognize(ctx context.Context, file *entity.SourceFile) (Result, error)
}
