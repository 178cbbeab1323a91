package cli

import (
	"fmt"

	"github.com/example/odkupload/internal/ports/primary"
)

// Exit codes for a pass that did not succeed.
const (
	ExitFail       = 1
	ExitRetryLater = 75 // EX_TEMPFAIL
)

// ExitError carries the process exit code of a pass that did not succeed.
// The pass has already reported its outcome, so main prints nothing more.
type ExitError struct {
	Code   int
	Result primary.RunResult
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("submission pass finished with result %s", e.Result)
}

// exitErrorFor maps a pass result to an ExitError, or nil on success.
func exitErrorFor(resp *primary.RunResponse) error {
	switch resp.Result {
	case primary.RunSuccess:
		if anyFailed(resp.Outcomes) {
			return &ExitError{Code: ExitFail, Result: resp.Result}
		}
		return nil
	case primary.RunRetryLater:
		return &ExitError{Code: ExitRetryLater, Result: resp.Result}
	default:
		return &ExitError{Code: ExitFail, Result: resp.Result}
	}
}

func anyFailed(outcomes []*primary.InstanceOutcome) bool {
	for _, o := range outcomes {
		if !o.Succeeded {
			return true
		}
	}
	return false
}
