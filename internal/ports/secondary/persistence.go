// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// InstanceRepository defines the secondary port for instance persistence.
type InstanceRepository interface {
	// Create persists a new instance and returns its database ID.
	Create(ctx context.Context, instance *InstanceRecord) (int64, error)

	// GetByID retrieves an instance by its ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (*InstanceRecord, error)

	// GetByIDs retrieves the instances with the given IDs, in the order requested.
	// Unknown IDs are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]*InstanceRecord, error)

	// ListFinalized retrieves every finalized instance in insertion order.
	ListFinalized(ctx context.Context) ([]*InstanceRecord, error)

	// List retrieves instances matching the given filters.
	List(ctx context.Context, filters InstanceFilters) ([]*InstanceRecord, error)

	// UpdateStatus sets the status of an instance.
	UpdateStatus(ctx context.Context, id int64, status string) error

	// Delete removes an instance record.
	Delete(ctx context.Context, id int64) error
}

// InstanceRecord represents an instance as stored in persistence.
type InstanceRecord struct {
	ID               int64
	FormID           string // jrFormId
	FormVersion      string // Empty string means null
	DisplayName      string
	InstanceFilePath string
	SubmissionURI    string // Empty string means null - set by the form definition
	Status           string // incomplete, complete, submitted, submissionFailed
	LastStatusChange string
	CreatedAt        string
}

// InstanceFilters contains filter options for querying instances.
type InstanceFilters struct {
	Status string
	FormID string
}

// FormRepository defines the secondary port for blank form persistence.
type FormRepository interface {
	// Create persists a new form definition.
	Create(ctx context.Context, form *FormRecord) error

	// GetByFormID retrieves the newest form with the given form ID. Returns ErrNotFound if absent.
	GetByFormID(ctx context.Context, formID string) (*FormRecord, error)

	// List retrieves all forms.
	List(ctx context.Context) ([]*FormRecord, error)
}

// FormRecord represents a blank form as stored in persistence.
type FormRecord struct {
	FormID      string
	Version     string // Empty string means null
	DisplayName string
	AutoSend    *bool // nil means the form does not set auto-send
	AutoDelete  *bool // nil means the form does not set auto-delete
	CreatedAt   string
}

// CredentialStore defines the secondary port for per-host server credentials.
type CredentialStore interface {
	// GetCredentials returns the credentials for host, or nil if none are stored.
	GetCredentials(ctx context.Context, host string) (*Credentials, error)

	// SaveCredentials stores credentials for host, replacing existing ones.
	SaveCredentials(ctx context.Context, host string, creds Credentials) error

	// ClearCredentials removes the credentials for host.
	ClearCredentials(ctx context.Context, host string) error
}

// Credentials are a username and password for one server host.
type Credentials struct {
	Username string
	Password string
}
