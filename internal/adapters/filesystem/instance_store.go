// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/odkupload/internal/core/instance"
	"github.com/example/odkupload/internal/ports/secondary"
)

// InstanceStore implements secondary.InstanceFileStore on the local filesystem.
// Each instance lives in its own directory under instancesDir.
type InstanceStore struct {
	instancesDir string
}

// NewInstanceStore creates a new filesystem instance store.
// If instancesDir is empty, defaults to ~/.odkupload/instances.
func NewInstanceStore(instancesDir string) (*InstanceStore, error) {
	if instancesDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		instancesDir = filepath.Join(home, ".odkupload", "instances")
	}

	abs, err := filepath.Abs(instancesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve instances directory: %w", err)
	}
	return &InstanceStore{instancesDir: abs}, nil
}

// InstancesDir returns the root directory of instance storage.
func (s *InstanceStore) InstancesDir() string {
	return s.instancesDir
}

// StorageAvailable reports whether the instances directory exists and accepts writes.
func (s *InstanceStore) StorageAvailable(ctx context.Context) bool {
	info, err := os.Stat(s.instancesDir)
	if err != nil || !info.IsDir() {
		return false
	}

	probe, err := os.CreateTemp(s.instancesDir, ".probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return true
}

// FileExists reports whether a regular file exists at path.
func (s *InstanceStore) FileExists(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ListDirectory returns the names of the entries in dir.
func (s *InstanceStore) ListDirectory(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// RemoveInstanceFiles removes the directory holding an instance file.
// Only directories strictly inside the instances directory are removed.
func (s *InstanceStore) RemoveInstanceFiles(ctx context.Context, instanceFilePath string) error {
	dir, err := filepath.Abs(filepath.Dir(instanceFilePath))
	if err != nil {
		return fmt.Errorf("failed to resolve instance directory: %w", err)
	}

	if !instance.IsInsideInstancesDir(s.instancesDir, dir) {
		return fmt.Errorf("refusing to remove %s: not inside %s", dir, s.instancesDir)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove instance directory: %w", err)
	}
	return nil
}

// Ensure InstanceStore implements the interface
var _ secondary.InstanceFileStore = (*InstanceStore)(nil)
