package entity

import "time"

// SourceFile is an immutable receipt image plus its metadata. The record
// that wraps it owns the reference until processing ends; once the file
// has been uploaded somewhere durable, StoragePath replaces the bytes.
type SourceFile struct {
	Name         string
	Size         int64
	MIMEType     string
	LastModified time.Time

	// Data holds the raw bytes for in-memory submissions; Path is set
	// instead when the file lives on disk.
	Data []byte
	Path string

	// StoragePath is the durable location after upload, if any.
	StoragePath string

	// PreviewRef is a locally-dereferenceable reference assigned by the
	// ingestion gate for display purposes.
	PreviewRef string
}
