package secondary

import "context"

// InstanceFileStore defines the secondary port for instance files on disk.
type InstanceFileStore interface {
	// InstancesDir returns the root directory; each instance lives in its own directory below it.
	InstancesDir() string

	// StorageAvailable reports whether instance storage is mounted and writable.
	StorageAvailable(ctx context.Context) bool

	// FileExists reports whether a regular file exists at path.
	FileExists(ctx context.Context, path string) bool

	// ListDirectory returns the names of the entries in dir.
	ListDirectory(ctx context.Context, dir string) ([]string, error)

	// RemoveInstanceFiles removes the directory holding an instance file.
	RemoveInstanceFiles(ctx context.Context, instanceFilePath string) error
}
