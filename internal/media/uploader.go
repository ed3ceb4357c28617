// Package media stores report attachments in an external object store.
// Upload is decoupled from report creation: a failed upload downgrades
// to a warning on the report, never a submission failure.
package media

import "context"

// Uploader stores a media blob and returns its public URL.
type Uploader interface {
	UploadBytes(ctx context.Context, folder, filename string, b []byte) (string, error)
}
