// Package instance contains the pure business logic for instance status transitions.
// Guards are pure functions that evaluate preconditions without side effects.
package instance

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Instance statuses as stored in persistence.
const (
	StatusIncomplete       = "incomplete"
	StatusComplete         = "complete" // finalized, ready to send
	StatusSubmitted        = "submitted"
	StatusSubmissionFailed = "submissionFailed"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// IsValidStatus reports whether status is a known instance status.
func IsValidStatus(status string) bool {
	switch status {
	case StatusIncomplete, StatusComplete, StatusSubmitted, StatusSubmissionFailed:
		return true
	}
	return false
}

// StatusContext provides context for status-based guards.
type StatusContext struct {
	InstanceID int64
	Status     string
}

// CanFinalize evaluates whether an instance can be marked ready to send.
// Rules:
// - Status must be "incomplete" or "submissionFailed"
func CanFinalize(ctx StatusContext) GuardResult {
	if ctx.Status != StatusIncomplete && ctx.Status != StatusSubmissionFailed {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only finalize incomplete or failed instances (instance %d is %s)", ctx.InstanceID, ctx.Status),
		}
	}

	return GuardResult{Allowed: true}
}

// CanSubmit evaluates whether an instance can be part of an explicit submission.
// Rules:
// - Status must be "complete" or "submissionFailed"
func CanSubmit(ctx StatusContext) GuardResult {
	if ctx.Status != StatusComplete && ctx.Status != StatusSubmissionFailed {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("instance %d is %s; only finalized or failed instances can be sent", ctx.InstanceID, ctx.Status),
		}
	}

	return GuardResult{Allowed: true}
}

// RegisterContext provides context for registering an instance file.
type RegisterContext struct {
	InstancesDir     string
	InstanceFilePath string

	// DirectoryTaken is true when another instance is registered in the same directory.
	DirectoryTaken bool
}

// CanRegister evaluates whether an instance file can be registered.
// Every file in an instance's directory is uploaded with it and removed with it.
// Rules:
// - The instance directory must be strictly inside the instances directory
// - No other instance may be registered in that directory
func CanRegister(ctx RegisterContext) GuardResult {
	dir := filepath.Dir(filepath.Clean(ctx.InstanceFilePath))
	if !IsInsideInstancesDir(ctx.InstancesDir, dir) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("instance file %s must be in its own directory under %s", ctx.InstanceFilePath, ctx.InstancesDir),
		}
	}

	if ctx.DirectoryTaken {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("directory %s already holds another instance", dir),
		}
	}

	return GuardResult{Allowed: true}
}

// IsInsideInstancesDir reports whether dir is below root and is not root itself.
func IsInsideInstancesDir(root, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(dir))
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
