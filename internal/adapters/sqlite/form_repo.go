package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/odkupload/internal/ports/secondary"
)

// FormRepository implements secondary.FormRepository with SQLite.
type FormRepository struct {
	db *sql.DB
}

// NewFormRepository creates a new SQLite form repository.
func NewFormRepository(db *sql.DB) *FormRepository {
	return &FormRepository{db: db}
}

func scanForm(scanner interface {
	Scan(dest ...any) error
}) (*secondary.FormRecord, error) {
	var (
		version    sql.NullString
		autoSend   sql.NullBool
		autoDelete sql.NullBool
		createdAt  time.Time
	)

	record := &secondary.FormRecord{}
	if err := scanner.Scan(&record.FormID, &version, &record.DisplayName, &autoSend, &autoDelete, &createdAt); err != nil {
		return nil, err
	}

	record.Version = version.String
	record.AutoSend = boolFromNull(autoSend)
	record.AutoDelete = boolFromNull(autoDelete)
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

const formSelectCols = "form_id, version, display_name, auto_send, auto_delete, created_at"

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func boolFromNull(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	v := b.Bool
	return &v
}

// Create persists a new form definition.
func (r *FormRepository) Create(ctx context.Context, form *secondary.FormRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO forms (form_id, version, display_name, auto_send, auto_delete) VALUES (?, ?, ?, ?, ?)",
		form.FormID, nullString(form.Version), form.DisplayName, nullBool(form.AutoSend), nullBool(form.AutoDelete),
	)
	if err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}
	return nil
}

// GetByFormID retrieves the most recently added form with the given form ID.
func (r *FormRepository) GetByFormID(ctx context.Context, formID string) (*secondary.FormRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+formSelectCols+" FROM forms WHERE form_id = ? ORDER BY id DESC LIMIT 1",
		formID,
	)

	record, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("form %s: %w", formID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return record, nil
}

// List retrieves all forms.
func (r *FormRepository) List(ctx context.Context) ([]*secondary.FormRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+formSelectCols+" FROM forms ORDER BY form_id ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	defer rows.Close()

	var forms []*secondary.FormRecord
	for rows.Next() {
		record, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form: %w", err)
		}
		forms = append(forms, record)
	}
	return forms, rows.Err()
}

// Ensure FormRepository implements the interface
var _ secondary.FormRepository = (*FormRepository)(nil)
