package primary

import "context"

// InstanceService defines the primary port for instance bookkeeping.
type InstanceService interface {
	// AddInstance registers an instance file already written to disk.
	AddInstance(ctx context.Context, req AddInstanceRequest) (*Instance, error)

	// GetInstance retrieves an instance by ID.
	GetInstance(ctx context.Context, id int64) (*Instance, error)

	// ListInstances lists instances with optional filters.
	ListInstances(ctx context.Context, filters InstanceFilters) ([]*Instance, error)

	// FinalizeInstance marks an instance as ready to send.
	FinalizeInstance(ctx context.Context, id int64) error
}

// AddInstanceRequest contains parameters for registering an instance.
type AddInstanceRequest struct {
	FormID           string
	FormVersion      string
	DisplayName      string
	InstanceFilePath string
	SubmissionURI    string
	Finalized        bool
}

// InstanceFilters contains filter options for listing instances.
type InstanceFilters struct {
	Status string
	FormID string
}

// Instance represents an instance at the port boundary.
type Instance struct {
	ID               int64
	FormID           string
	FormVersion      string
	DisplayName      string
	InstanceFilePath string
	SubmissionURI    string
	Status           string
	LastStatusChange string
}

// FormService defines the primary port for blank form bookkeeping.
type FormService interface {
	// AddForm registers a blank form definition.
	AddForm(ctx context.Context, req AddFormRequest) (*Form, error)

	// ListForms lists every registered form.
	ListForms(ctx context.Context) ([]*Form, error)
}

// AddFormRequest contains parameters for registering a form.
type AddFormRequest struct {
	FormID      string
	Version     string
	DisplayName string
	AutoSend    *bool
	AutoDelete  *bool
}

// Form represents a blank form at the port boundary.
type Form struct {
	FormID      string
	Version     string
	DisplayName string
	AutoSend    *bool
	AutoDelete  *bool
}

// CredentialService defines the primary port for server credentials.
type CredentialService interface {
	// SetCredentials stores credentials for the host of serverURL.
	SetCredentials(ctx context.Context, serverURL, username, password string) error

	// ClearCredentials removes the credentials for the host of serverURL.
	ClearCredentials(ctx context.Context, serverURL string) error
}
