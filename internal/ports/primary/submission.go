// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"
	"errors"
)

// ErrRunInProgress is returned when a submission pass is requested while another one runs.
var ErrRunInProgress = errors.New("a submission pass is already running")

// SubmissionService defines the primary port for sending finalized instances.
type SubmissionService interface {
	// RunAutoSend runs one auto-send pass: gate check, policy filtering, upload, cleanup.
	RunAutoSend(ctx context.Context, req AutoSendRequest) (*RunResponse, error)

	// SubmitInstances uploads the given instances now, bypassing the gate and auto-send policy.
	SubmitInstances(ctx context.Context, req SubmitRequest) (*RunResponse, error)
}

// AutoSendRequest contains the trigger context of an auto-send pass.
type AutoSendRequest struct {
	// Network is the current connectivity: "wifi", "cellular" or "none".
	Network string
}

// SubmitRequest contains parameters for an explicit submission.
type SubmitRequest struct {
	InstanceIDs []int64

	// DestinationURL replaces every other submission URL when set.
	DestinationURL string

	// Username and Password are saved for the destination host for the duration of the pass.
	Username string
	Password string

	// DeleteAfterSubmission overrides the form and app-level delete settings when set.
	DeleteAfterSubmission *bool
}

// RunResult is the overall result of a pass.
type RunResult string

const (
	RunSuccess    RunResult = "success"
	RunFail       RunResult = "fail"
	RunRetryLater RunResult = "retry"
)

// RunResponse contains the result of a pass.
type RunResponse struct {
	RunID  string
	Result RunResult

	// Reason explains a Fail or RetryLater that happened before any upload.
	Reason string

	// Outcomes lists the instances attempted, in the order they were attempted.
	Outcomes []*InstanceOutcome

	// AuthRequestingURI is set when a server asked for credentials and the pass stopped.
	AuthRequestingURI string

	// Cancelled is true when the pass stopped early because its context was done.
	Cancelled bool

	// Message is the aggregated human-readable message shown to the user.
	Message string
}

// Messages returns the display message of each attempted instance keyed by instance ID.
func (r *RunResponse) Messages() map[int64]string {
	messages := make(map[int64]string, len(r.Outcomes))
	for _, o := range r.Outcomes {
		messages[o.InstanceID] = o.Message
	}
	return messages
}

// InstanceOutcome is the result of one instance upload at the port boundary.
type InstanceOutcome struct {
	InstanceID  int64
	DisplayName string
	Kind        string
	Message     string
	Succeeded   bool
	Deleted     bool
}
