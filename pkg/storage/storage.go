// Package storage persists submission artifacts and retrieves them later for
// text extraction. The core treats the store as an external collaborator
// behind the ArtifactStore interface.
package storage

import (
	"context"
	"io"
)

// ArtifactStore uploads submission files and fetches previously stored ones
// by their reference (a URL returned at upload time).
type ArtifactStore interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
	Fetch(ctx context.Context, ref string) ([]byte, error)
}
