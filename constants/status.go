package constants

// RecordStatus is the canonical lifecycle state of an extraction record.
type RecordStatus string

// Stable values (these exact strings are persisted and logged).
const (
	StatusPending    RecordStatus = "pending"    // accepted by the gate, waiting in queue
	StatusProcessing RecordStatus = "processing" // dispatched to an extraction engine
	StatusCompleted  RecordStatus = "completed"  // code, sender and phone are all present
	StatusError      RecordStatus = "error"      // both engines failed; file kept for retry
)

// ExtractionMethod identifies which engine produced the raw text.
type ExtractionMethod string

const (
	MethodAI  ExtractionMethod = "ai"
	MethodOCR ExtractionMethod = "ocr"
)
