// Package persistence contains adapters that implement secondary port interfaces
// by composing other adapters.
package persistence

import (
	"context"
	"fmt"

	"github.com/example/odkupload/internal/ports/secondary"
)

// InstanceRepositoryAdapter wraps an instance repository so that deleting an
// instance also removes its files from disk.
type InstanceRepositoryAdapter struct {
	secondary.InstanceRepository
	files secondary.InstanceFileStore
}

// NewInstanceRepository creates a new InstanceRepositoryAdapter.
func NewInstanceRepository(repo secondary.InstanceRepository, files secondary.InstanceFileStore) *InstanceRepositoryAdapter {
	return &InstanceRepositoryAdapter{
		InstanceRepository: repo,
		files:              files,
	}
}

// Delete removes the instance files, then the record. The record is kept if the
// files cannot be removed, so the instance is never orphaned on disk.
func (r *InstanceRepositoryAdapter) Delete(ctx context.Context, id int64) error {
	record, err := r.InstanceRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.files.RemoveInstanceFiles(ctx, record.InstanceFilePath); err != nil {
		return fmt.Errorf("failed to remove files of instance %d: %w", id, err)
	}

	return r.InstanceRepository.Delete(ctx, id)
}

// Ensure InstanceRepositoryAdapter implements the interface
var _ secondary.InstanceRepository = (*InstanceRepositoryAdapter)(nil)
