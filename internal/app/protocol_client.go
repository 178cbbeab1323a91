package app

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/example/odkupload/internal/core/instance"
	"github.com/example/odkupload/internal/core/submission"
	"github.com/example/odkupload/internal/ctxutil"
	"github.com/example/odkupload/internal/ports/secondary"
)

// ProtocolClient uploads one instance using the OpenRosa submission protocol.
// It never returns an error: every failure is classified into a submission.Result.
type ProtocolClient struct {
	transport    secondary.OpenRosaTransport
	files        secondary.InstanceFileStore
	instanceRepo secondary.InstanceRepository
	credentials  secondary.CredentialStore
	metrics      secondary.MetricsRecorder
	logger       *zap.SugaredLogger
}

// NewProtocolClient creates a new ProtocolClient with injected dependencies.
// metrics may be nil.
func NewProtocolClient(
	transport secondary.OpenRosaTransport,
	files secondary.InstanceFileStore,
	instanceRepo secondary.InstanceRepository,
	credentials secondary.CredentialStore,
	metrics secondary.MetricsRecorder,
	logger *zap.SugaredLogger,
) *ProtocolClient {
	return &ProtocolClient{
		transport:    transport,
		files:        files,
		instanceRepo: instanceRepo,
		credentials:  credentials,
		metrics:      metrics,
		logger:       logger,
	}
}

// UploadOne uploads inst to rawURL and records the outcome on the instance.
// remap is shared by every upload of the same pass.
func (c *ProtocolClient) UploadOne(
	ctx context.Context,
	inst *secondary.InstanceRecord,
	rawURL string,
	remap *submission.URIRemap,
) submission.Result {
	start := time.Now()
	result := c.upload(ctx, inst, rawURL, remap)
	c.persist(ctx, inst, result)

	if c.metrics != nil {
		c.metrics.ObserveUpload(string(result.Kind), time.Since(start))
	}
	c.logger.Infow("instance upload finished",
		"run_id", ctxutil.RunIDFromContext(ctx),
		"instance_id", inst.ID,
		"kind", result.Kind,
		"duration", time.Since(start),
	)
	return result
}

func (c *ProtocolClient) upload(
	ctx context.Context,
	inst *secondary.InstanceRecord,
	rawURL string,
	remap *submission.URIRemap,
) submission.Result {
	target, failure := submission.ParseTarget(inst.ID, rawURL)
	if failure != nil {
		return *failure
	}

	creds := c.lookupCredentials(ctx, target.Hostname())

	submitTo, openRosa := remap.Lookup(target)
	if !openRosa {
		resp, err := c.transport.Head(ctx, target, creds)
		if err != nil {
			return submission.HeadFailure(inst.ID, target, err)
		}

		decision := submission.EvaluateHead(submission.HeadContext{
			Target:     target,
			StatusCode: resp.StatusCode,
			Location:   resp.Location,
		})
		if !decision.Proceed {
			result := submission.NewResult(inst.ID, decision.Kind).WithMessage(decision.Message)
			result.AuthRequestingURI = decision.AuthRequestingURI
			return result
		}
		if decision.Remap {
			remap.Record(target, decision.SubmitTo)
			c.logger.Debugw("recorded submission redirect",
				"run_id", ctxutil.RunIDFromContext(ctx),
				"from", target.String(),
				"to", decision.SubmitTo.String(),
			)
		}
		submitTo = decision.SubmitTo
		openRosa = decision.OpenRosa
	}

	if submitTo.Hostname() != target.Hostname() {
		creds = c.lookupCredentials(ctx, submitTo.Hostname())
	}

	submissionFile, ok := submission.SelectSubmissionFile(submission.SubmissionFileContext{
		InstanceFilePath:     inst.InstanceFilePath,
		InstanceFileExists:   c.files.FileExists(ctx, inst.InstanceFilePath),
		SubmissionFileExists: c.files.FileExists(ctx, submission.SubmissionFilePath(inst.InstanceFilePath)),
	})
	if !ok {
		return submission.NewResult(inst.ID, submission.KindSubmissionXMLInexistent)
	}

	dir := filepath.Dir(inst.InstanceFilePath)
	names, err := c.files.ListDirectory(ctx, dir)
	if err != nil {
		return submission.NewResult(inst.ID, submission.KindNoFilesInParentDir)
	}

	included, skipped := submission.SelectAttachments(submission.AttachmentContext{
		FileNames:          names,
		InstanceFileName:   filepath.Base(inst.InstanceFilePath),
		SubmissionFileName: submission.SubmissionFileName,
		OpenRosa:           openRosa,
	})
	if len(skipped) > 0 {
		c.logger.Infow("skipping attachments not accepted by legacy server",
			"run_id", ctxutil.RunIDFromContext(ctx),
			"instance_id", inst.ID,
			"files", skipped,
		)
	}

	attachments := make([]string, 0, len(included))
	for _, name := range included {
		attachments = append(attachments, filepath.Join(dir, name))
	}

	resp, err := c.transport.UploadSubmission(ctx, secondary.UploadRequest{
		Target:         submitTo,
		SubmissionFile: submissionFile,
		Attachments:    attachments,
		Credentials:    creds,
	})
	if err != nil {
		return submission.TransportFailure(inst.ID, err)
	}

	return submission.EvaluateUploadResponse(inst.ID, submission.UploadResponseContext{
		StatusCode:    resp.StatusCode,
		ReasonPhrase:  resp.ReasonPhrase,
		ServerMessage: resp.Message,
		URL:           submitTo.String(),
	})
}

func (c *ProtocolClient) lookupCredentials(ctx context.Context, host string) *secondary.Credentials {
	creds, err := c.credentials.GetCredentials(ctx, host)
	if err != nil {
		c.logger.Warnw("failed to load credentials, continuing anonymously",
			"run_id", ctxutil.RunIDFromContext(ctx),
			"host", host,
			"error", err,
		)
		return nil
	}
	return creds
}

// persist records the outcome on the instance. Auth challenges leave the status untouched.
// The write survives cancellation of the pass so an attempted upload is never left unrecorded.
func (c *ProtocolClient) persist(ctx context.Context, inst *secondary.InstanceRecord, result submission.Result) {
	ctx = context.WithoutCancel(ctx)

	var status string
	switch {
	case result.IsSuccess():
		status = instance.StatusSubmitted
	case result.Kind.PersistsFailure():
		status = instance.StatusSubmissionFailed
	default:
		return
	}

	if err := c.instanceRepo.UpdateStatus(ctx, inst.ID, status); err != nil {
		c.logger.Errorw("failed to record instance status",
			"run_id", ctxutil.RunIDFromContext(ctx),
			"instance_id", inst.ID,
			"status", status,
			"error", err,
		)
		return
	}
	inst.Status = status
}
