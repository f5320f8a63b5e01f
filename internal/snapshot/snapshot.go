// Package snapshot persists the JPEG captured at registration time.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAccessDenied   = errors.New("snapshot storage access denied")
	ErrBucketNotFound = errors.New("snapshot bucket not found")
)

// Store saves an encoded snapshot and returns where it was written.
type Store interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

var nameReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// FileName builds "<name>_<YYYYMMDDHHMMSS>.jpg". Spaces and path separators in
// name become underscores so the result is always a single path element.
func FileName(name string, now time.Time) string {
	return fmt.Sprintf("%s_%s.jpg", nameReplacer.Replace(name), now.Format("20060102150405"))
}
