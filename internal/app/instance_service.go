package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/example/odkupload/internal/core/instance"
	"github.com/example/odkupload/internal/ports/primary"
	"github.com/example/odkupload/internal/ports/secondary"
)

// InstanceServiceImpl implements the InstanceService interface.
type InstanceServiceImpl struct {
	instanceRepo secondary.InstanceRepository
	files        secondary.InstanceFileStore
}

// NewInstanceService creates a new InstanceService with injected dependencies.
func NewInstanceService(instanceRepo secondary.InstanceRepository, files secondary.InstanceFileStore) *InstanceServiceImpl {
	return &InstanceServiceImpl{
		instanceRepo: instanceRepo,
		files:        files,
	}
}

// AddInstance registers an instance file already written to disk.
func (s *InstanceServiceImpl) AddInstance(ctx context.Context, req primary.AddInstanceRequest) (*primary.Instance, error) {
	if strings.TrimSpace(req.FormID) == "" {
		return nil, fmt.Errorf("form ID is required")
	}
	if !s.files.FileExists(ctx, req.InstanceFilePath) {
		return nil, fmt.Errorf("instance file %s does not exist", req.InstanceFilePath)
	}

	taken, err := s.directoryTaken(ctx, filepath.Dir(filepath.Clean(req.InstanceFilePath)))
	if err != nil {
		return nil, err
	}
	guard := instance.CanRegister(instance.RegisterContext{
		InstancesDir:     s.files.InstancesDir(),
		InstanceFilePath: req.InstanceFilePath,
		DirectoryTaken:   taken,
	})
	if !guard.Allowed {
		return nil, guard.Error()
	}

	status := instance.StatusIncomplete
	if req.Finalized {
		status = instance.StatusComplete
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.FormID
	}

	record := &secondary.InstanceRecord{
		FormID:           req.FormID,
		FormVersion:      req.FormVersion,
		DisplayName:      displayName,
		InstanceFilePath: req.InstanceFilePath,
		SubmissionURI:    req.SubmissionURI,
		Status:           status,
	}

	id, err := s.instanceRepo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create instance: %w", err)
	}

	return s.GetInstance(ctx, id)
}

// directoryTaken reports whether an instance is already registered in dir.
func (s *InstanceServiceImpl) directoryTaken(ctx context.Context, dir string) (bool, error) {
	existing, err := s.instanceRepo.List(ctx, secondary.InstanceFilters{})
	if err != nil {
		return false, fmt.Errorf("failed to list instances: %w", err)
	}
	for _, inst := range existing {
		if filepath.Dir(filepath.Clean(inst.InstanceFilePath)) == dir {
			return true, nil
		}
	}
	return false, nil
}

// GetInstance retrieves an instance by ID.
func (s *InstanceServiceImpl) GetInstance(ctx context.Context, id int64) (*primary.Instance, error) {
	record, err := s.instanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get instance %d: %w", id, err)
	}
	return s.recordToInstance(record), nil
}

// ListInstances lists instances with optional filters.
func (s *InstanceServiceImpl) ListInstances(ctx context.Context, filters primary.InstanceFilters) ([]*primary.Instance, error) {
	if filters.Status != "" && !instance.IsValidStatus(filters.Status) {
		return nil, fmt.Errorf("unknown instance status %q", filters.Status)
	}

	records, err := s.instanceRepo.List(ctx, secondary.InstanceFilters{
		Status: filters.Status,
		FormID: filters.FormID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	instances := make([]*primary.Instance, len(records))
	for i, r := range records {
		instances[i] = s.recordToInstance(r)
	}
	return instances, nil
}

// FinalizeInstance marks an instance as ready to send.
func (s *InstanceServiceImpl) FinalizeInstance(ctx context.Context, id int64) error {
	record, err := s.instanceRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get instance %d: %w", id, err)
	}

	if result := instance.CanFinalize(instance.StatusContext{InstanceID: id, Status: record.Status}); !result.Allowed {
		return result.Error()
	}

	return s.instanceRepo.UpdateStatus(ctx, id, instance.StatusComplete)
}

func (s *InstanceServiceImpl) recordToInstance(r *secondary.InstanceRecord) *primary.Instance {
	return &primary.Instance{
		ID:               r.ID,
		FormID:           r.FormID,
		FormVersion:      r.FormVersion,
		DisplayName:      r.DisplayName,
		InstanceFilePath: r.InstanceFilePath,
		SubmissionURI:    r.SubmissionURI,
		Status:           r.Status,
		LastStatusChange: r.LastStatusChange,
	}
}

// Ensure InstanceServiceImpl implements the interface
var _ primary.InstanceService = (*InstanceServiceImpl)(nil)
