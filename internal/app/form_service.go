package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/odkupload/internal/ports/primary"
	"github.com/example/odkupload/internal/ports/secondary"
)

// FormServiceImpl implements the FormService interface.
type FormServiceImpl struct {
	formRepo secondary.FormRepository
}

// NewFormService creates a new FormService with injected dependencies.
func NewFormService(formRepo secondary.FormRepository) *FormServiceImpl {
	return &FormServiceImpl{formRepo: formRepo}
}

// AddForm registers a blank form definition.
func (s *FormServiceImpl) AddForm(ctx context.Context, req primary.AddFormRequest) (*primary.Form, error) {
	if strings.TrimSpace(req.FormID) == "" {
		return nil, fmt.Errorf("form ID is required")
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.FormID
	}

	record := &secondary.FormRecord{
		FormID:      req.FormID,
		Version:     req.Version,
		DisplayName: displayName,
		AutoSend:    req.AutoSend,
		AutoDelete:  req.AutoDelete,
	}
	if err := s.formRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}
	return recordToForm(record), nil
}

// ListForms lists every registered form.
func (s *FormServiceImpl) ListForms(ctx context.Context) ([]*primary.Form, error) {
	records, err := s.formRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	forms := make([]*primary.Form, len(records))
	for i, r := range records {
		forms[i] = recordToForm(r)
	}
	return forms, nil
}

func recordToForm(r *secondary.FormRecord) *primary.Form {
	return &primary.Form{
		FormID:      r.FormID,
		Version:     r.Version,
		DisplayName: r.DisplayName,
		AutoSend:    r.AutoSend,
		AutoDelete:  r.AutoDelete,
	}
}

// Ensure FormServiceImpl implements the interface
var _ primary.FormService = (*FormServiceImpl)(nil)
