// Package fingerprint derives stable identities for receipt images and
// tracks which ones have already been processed, so the same receipt is
// never extracted twice within or across sessions.
package fingerprint

import (
	"fmt"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
)

// For derives the fingerprint of a source file. Preference order: durable
// storage path, then preview reference, then name:size:lastModified, then
// the record identifier. Two files yielding the same fingerprint are the
// same logical receipt.
func For(f *entity.SourceFile, recordID string) string {
	if f != nil {
		if f.StoragePath != "" {
			return "path:" + f.StoragePath
		}
		if f.PreviewRef != "" {
			return "preview:" + f.PreviewRef
		}
		if f.Name != "" {
			return fmt.Sprintf("meta:%s:%d:%d", f.Name, f.Size, f.LastModified.UnixMilli())
		}
	}
	return "record:" + recordID
}
