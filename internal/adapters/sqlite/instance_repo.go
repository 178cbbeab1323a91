// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/odkupload/internal/ports/secondary"
)

// maxQueryVariables stays under SQLite's default limit of 999 bound parameters.
const maxQueryVariables = 500

// InstanceRepository implements secondary.InstanceRepository with SQLite.
type InstanceRepository struct {
	db *sql.DB
}

// NewInstanceRepository creates a new SQLite instance repository.
func NewInstanceRepository(db *sql.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

// scanInstance scans an instance row into an InstanceRecord.
func scanInstance(scanner interface {
	Scan(dest ...any) error
}) (*secondary.InstanceRecord, error) {
	var (
		formVersion      sql.NullString
		submissionURI    sql.NullString
		lastStatusChange time.Time
		createdAt        time.Time
	)

	record := &secondary.InstanceRecord{}
	err := scanner.Scan(
		&record.ID, &record.FormID, &formVersion, &record.DisplayName, &record.InstanceFilePath,
		&submissionURI, &record.Status, &lastStatusChange, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.FormVersion = formVersion.String
	record.SubmissionURI = submissionURI.String
	record.LastStatusChange = lastStatusChange.Format(time.RFC3339)
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

const instanceSelectCols = "id, form_id, form_version, display_name, instance_file_path, submission_uri, status, last_status_change, created_at"

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Create persists a new instance and returns its ID.
func (r *InstanceRepository) Create(ctx context.Context, inst *secondary.InstanceRecord) (int64, error) {
	status := inst.Status
	if status == "" {
		status = "incomplete"
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO instances (form_id, form_version, display_name, instance_file_path, submission_uri, status) VALUES (?, ?, ?, ?, ?, ?)",
		inst.FormID, nullString(inst.FormVersion), inst.DisplayName, inst.InstanceFilePath, nullString(inst.SubmissionURI), status,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create instance: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read instance ID: %w", err)
	}
	inst.ID = id
	inst.Status = status
	return id, nil
}

// GetByID retrieves an instance by its ID.
func (r *InstanceRepository) GetByID(ctx context.Context, id int64) (*secondary.InstanceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+instanceSelectCols+" FROM instances WHERE id = ?",
		id,
	)

	record, err := scanInstance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("instance %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}

	return record, nil
}

// GetByIDs retrieves instances in the order of ids, querying in chunks.
func (r *InstanceRepository) GetByIDs(ctx context.Context, ids []int64) ([]*secondary.InstanceRecord, error) {
	byID := make(map[int64]*secondary.InstanceRecord, len(ids))

	for start := 0; start < len(ids); start += maxQueryVariables {
		end := min(start+maxQueryVariables, len(ids))
		chunk := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		records, err := r.query(ctx, "SELECT "+instanceSelectCols+" FROM instances WHERE id IN ("+placeholders+")", args...)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			byID[rec.ID] = rec
		}
	}

	result := make([]*secondary.InstanceRecord, 0, len(byID))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			result = append(result, rec)
			delete(byID, id)
		}
	}
	return result, nil
}

// ListFinalized retrieves every finalized instance in insertion order.
func (r *InstanceRepository) ListFinalized(ctx context.Context) ([]*secondary.InstanceRecord, error) {
	return r.List(ctx, secondary.InstanceFilters{Status: "complete"})
}

// List retrieves instances matching the given filters.
func (r *InstanceRepository) List(ctx context.Context, filters secondary.InstanceFilters) ([]*secondary.InstanceRecord, error) {
	query := "SELECT " + instanceSelectCols + " FROM instances WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if filters.FormID != "" {
		query += " AND form_id = ?"
		args = append(args, filters.FormID)
	}

	query += " ORDER BY id ASC"

	return r.query(ctx, query, args...)
}

func (r *InstanceRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.InstanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	defer rows.Close()

	var instances []*secondary.InstanceRecord
	for rows.Next() {
		record, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		instances = append(instances, record)
	}

	return instances, rows.Err()
}

// UpdateStatus sets the status of an instance and stamps the change time.
func (r *InstanceRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE instances SET status = ?, last_status_change = CURRENT_TIMESTAMP WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update instance status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("instance %d: %w", id, secondary.ErrNotFound)
	}

	return nil
}

// Delete removes an instance record.
func (r *InstanceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM instances WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete instance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("instance %d: %w", id, secondary.ErrNotFound)
	}

	return nil
}

// Ensure InstanceRepository implements the interface
var _ secondary.InstanceRepository = (*InstanceRepository)(nil)
