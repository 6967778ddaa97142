package interfaces

import "context"

// StoredFile is a single article file fetched from a content store together
// with the opaque revision identifier required to safely update it. Local
// stores leave Revision empty; the GitHub store returns the blob sha.
type StoredFile struct {
	Path     string
	Content  []byte
	Revision string
	Size     int64
}

// StoreEntry describes one file discovered by ContentStore.List.
type StoreEntry struct {
	Path     string
	Name     string
	Size     int64
	Revision string
}

// ContentStore abstracts where article files live: a local directory tree in
// development or a Git-hosted repository reached over HTTP in production.
// All operations are keyed by a repository-relative path. The commit message
// is ignored by backends that have no commit concept.
type ContentStore interface {
	// Create writes a new file. Parent directories are created as needed.
	Create(ctx context.Context, path string, content []byte, message string) error
	// Read returns the file content and its current revision identifier.
	Read(ctx context.Context, path string) (*StoredFile, error)
	// Update replaces an existing file. The revision must identify the
	// version being replaced on backends that enforce optimistic updates.
	Update(ctx context.Context, path string, content []byte, message, revision string) error
	// Delete removes the file at path.
	Delete(ctx context.Context, path string, message string) error
	// List enumerates markdown files directly under dir.
	List(ctx context.Context, dir string) ([]StoreEntry, error)
	// Exists reports whether a file or directory is present at path.
	Exists(ctx context.Context, path string) (bool, error)
}
