package secondary

import (
	"context"
	"time"
)

// ResultReporter defines the secondary port that surfaces the results of a pass to the user.
type ResultReporter interface {
	// ReportResults shows one aggregated notification for a pass.
	ReportResults(ctx context.Context, report UploadReport) error
}

// UploadReport is the input of a ResultReporter.
type UploadReport struct {
	Title   string // "Upload results"
	Summary string // "Success" or "Failures"
	Body    string // one block per instance

	// Messages maps instance ID to its display message.
	Messages map[int64]string

	// AllSucceeded is true when every instance was submitted.
	AllSucceeded bool

	// AuthRequestingURI is set when the pass stopped because a server asked for credentials.
	AuthRequestingURI string
}

// MetricsRecorder defines the secondary port for submission metrics.
type MetricsRecorder interface {
	// ObserveUpload records one instance upload outcome and its duration.
	ObserveUpload(kind string, duration time.Duration)

	// ObserveRun records the result of a pass.
	ObserveRun(trigger, result string)

	// ObserveDeletion records an instance deleted after sending.
	ObserveDeletion()
}
