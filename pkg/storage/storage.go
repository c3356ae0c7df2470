package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxUploadSize caps data-room uploads at 25 MB.
const MaxUploadSize = 25 << 20

// Storage persists uploaded files and returns the URL they are served from.
type Storage interface {
	Save(ctx context.Context, filename string, contentType string, body io.Reader) (string, error)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SafeFilename reduces an uploaded filename to a safe unique name of the
// form base_timestamp.ext. Anything outside [a-zA-Z0-9._-] is replaced.
func SafeFilename(original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(filepath.Base(original), ext)
	base = unsafeChars.ReplaceAllString(base, "_")
	ext = unsafeChars.ReplaceAllString(ext, "_")
	if strings.Trim(base, "_.-") == "" {
		base = "file"
	}
	return fmt.Sprintf("%s_%d%s", base, time.Now().UnixMilli(), ext)
}
