package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/odkupload/internal/ports/secondary"
)

// CredentialRepository implements secondary.CredentialStore with SQLite.
// Hosts are matched case-insensitively.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new SQLite credential repository.
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// GetCredentials returns the credentials for host, or nil if none are stored.
func (r *CredentialRepository) GetCredentials(ctx context.Context, host string) (*secondary.Credentials, error) {
	var creds secondary.Credentials
	err := r.db.QueryRowContext(ctx,
		"SELECT username, password FROM credentials WHERE host = ?",
		strings.ToLower(host),
	).Scan(&creds.Username, &creds.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return &creds, nil
}

// SaveCredentials stores credentials for host, replacing existing ones.
func (r *CredentialRepository) SaveCredentials(ctx context.Context, host string, creds secondary.Credentials) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (host, username, password) VALUES (?, ?, ?)
		 ON CONFLICT(host) DO UPDATE SET username = excluded.username, password = excluded.password, updated_at = CURRENT_TIMESTAMP`,
		strings.ToLower(host), creds.Username, creds.Password,
	)
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// ClearCredentials removes the credentials for host. Clearing an unknown host is not an error.
func (r *CredentialRepository) ClearCredentials(ctx context.Context, host string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM credentials WHERE host = ?", strings.ToLower(host)); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// Ensure CredentialRepository implements the interface
var _ secondary.CredentialStore = (*CredentialRepository)(nil)
