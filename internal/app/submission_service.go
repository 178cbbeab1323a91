package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/example/odkupload/internal/core/autosend"
	"github.com/example/odkupload/internal/core/gate"
	"github.com/example/odkupload/internal/core/instance"
	"github.com/example/odkupload/internal/core/submission"
	"github.com/example/odkupload/internal/ctxutil"
	"github.com/example/odkupload/internal/ports/primary"
	"github.com/example/odkupload/internal/ports/secondary"
)

// Pass triggers, used as a metrics label.
const (
	TriggerAuto     = "auto"
	TriggerExplicit = "explicit"
)

// SubmissionSettings are the app-level settings a pass reads.
type SubmissionSettings struct {
	ServerURL       string
	SubmissionPath  string
	AutoSendMode    autosend.Mode
	DeleteAfterSend bool
	DeviceID        string
}

// SubmissionServiceImpl implements the SubmissionService interface.
type SubmissionServiceImpl struct {
	instanceRepo secondary.InstanceRepository
	formRepo     secondary.FormRepository
	credentials  secondary.CredentialStore
	files        secondary.InstanceFileStore
	client       *ProtocolClient
	reporter     secondary.ResultReporter
	metrics      secondary.MetricsRecorder
	settings     SubmissionSettings
	running      *semaphore.Weighted
	logger       *zap.SugaredLogger
}

// NewSubmissionService creates a new SubmissionService with injected dependencies.
// instanceRepo must remove instance files on Delete. metrics may be nil.
func NewSubmissionService(
	instanceRepo secondary.InstanceRepository,
	formRepo secondary.FormRepository,
	credentials secondary.CredentialStore,
	files secondary.InstanceFileStore,
	client *ProtocolClient,
	reporter secondary.ResultReporter,
	metrics secondary.MetricsRecorder,
	settings SubmissionSettings,
	logger *zap.SugaredLogger,
) *SubmissionServiceImpl {
	return &SubmissionServiceImpl{
		instanceRepo: instanceRepo,
		formRepo:     formRepo,
		credentials:  credentials,
		files:        files,
		client:       client,
		reporter:     reporter,
		metrics:      metrics,
		settings:     settings,
		running:      semaphore.NewWeighted(1),
		logger:       logger,
	}
}

// RunAutoSend runs one auto-send pass.
func (s *SubmissionServiceImpl) RunAutoSend(ctx context.Context, req primary.AutoSendRequest) (*primary.RunResponse, error) {
	network, err := gate.ParseNetworkType(req.Network)
	if err != nil {
		return nil, err
	}

	if !s.running.TryAcquire(1) {
		return nil, primary.ErrRunInProgress
	}
	defer s.running.Release(1)

	runID := uuid.NewString()
	ctx = ctxutil.WithTrigger(ctxutil.WithRunID(ctx, runID), TriggerAuto)

	forms, err := s.formRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	formFlags := make([]*bool, 0, len(forms))
	for _, f := range forms {
		formFlags = append(formFlags, f.AutoSend)
	}

	decision := gate.CheckReady(gate.ReadyContext{
		StorageAvailable:      s.files.StorageAvailable(ctx),
		Network:               network,
		Mode:                  s.settings.AutoSendMode,
		AnyFormForcesAutoSend: autosend.AnyFormForcesAutoSend(formFlags),
	})
	if decision.Verdict != gate.Proceed {
		result := primary.RunFail
		if decision.Verdict == gate.RetryLater {
			result = primary.RunRetryLater
		}
		s.logger.Infow("auto-send pass not started",
			"run_id", runID,
			"verdict", decision.Verdict,
			"reason", decision.Reason,
		)
		s.observeRun(TriggerAuto, result)
		return &primary.RunResponse{RunID: runID, Result: result, Reason: decision.Reason}, nil
	}

	candidates, err := s.instanceRepo.ListFinalized(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list finalized instances: %w", err)
	}

	lookup := newFormLookup(s.formRepo)
	toSend := make([]*secondary.InstanceRecord, 0, len(candidates))
	for _, inst := range candidates {
		form, err := lookup.get(ctx, inst.FormID)
		if err != nil {
			return nil, err
		}
		if autosend.ShouldAutoSend(autosend.AutoSendContext{
			FormID:          inst.FormID,
			FormAutoSend:    formAutoSend(form),
			AppLevelEnabled: s.settings.AutoSendMode.Enabled(),
		}) {
			toSend = append(toSend, inst)
		}
	}

	return s.runPass(ctx, passInput{
		runID:     runID,
		trigger:   TriggerAuto,
		instances: toSend,
		forms:     lookup,
	}), nil
}

// SubmitInstances uploads the given instances now.
func (s *SubmissionServiceImpl) SubmitInstances(ctx context.Context, req primary.SubmitRequest) (*primary.RunResponse, error) {
	if !s.running.TryAcquire(1) {
		return nil, primary.ErrRunInProgress
	}
	defer s.running.Release(1)

	runID := uuid.NewString()
	ctx = ctxutil.WithTrigger(ctxutil.WithRunID(ctx, runID), TriggerExplicit)

	if req.DestinationURL != "" {
		restore, err := s.applyTemporaryCredentials(ctx, req)
		if err != nil {
			return nil, err
		}
		defer restore()
	}

	records, err := s.instanceRepo.GetByIDs(ctx, req.InstanceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load instances: %w", err)
	}

	toSend := make([]*secondary.InstanceRecord, 0, len(records))
	for _, inst := range records {
		if guard := instance.CanSubmit(instance.StatusContext{InstanceID: inst.ID, Status: inst.Status}); !guard.Allowed {
			s.logger.Warnw("skipping instance", "run_id", runID, "instance_id", inst.ID, "reason", guard.Reason)
			continue
		}
		toSend = append(toSend, inst)
	}

	return s.runPass(ctx, passInput{
		runID:          runID,
		trigger:        TriggerExplicit,
		instances:      toSend,
		forms:          newFormLookup(s.formRepo),
		destination:    req.DestinationURL,
		deleteOverride: req.DeleteAfterSubmission,
	}), nil
}

// applyTemporaryCredentials stores the request credentials for the destination host
// and returns a func that clears them. Without credentials the host is used anonymously.
func (s *SubmissionServiceImpl) applyTemporaryCredentials(ctx context.Context, req primary.SubmitRequest) (func(), error) {
	dest, err := url.Parse(req.DestinationURL)
	if err != nil || dest.Hostname() == "" {
		return nil, fmt.Errorf("invalid destination URL %q", req.DestinationURL)
	}
	host := dest.Hostname()

	if err := s.credentials.ClearCredentials(ctx, host); err != nil {
		return nil, fmt.Errorf("failed to clear credentials: %w", err)
	}
	if req.Username == "" || req.Password == "" {
		return func() {}, nil
	}

	creds := secondary.Credentials{Username: req.Username, Password: req.Password}
	if err := s.credentials.SaveCredentials(ctx, host, creds); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}
	return func() {
		if err := s.credentials.ClearCredentials(context.WithoutCancel(ctx), host); err != nil {
			s.logger.Errorw("failed to clear temporary credentials", "host", host, "error", err)
		}
	}, nil
}

type passInput struct {
	runID          string
	trigger        string
	instances      []*secondary.InstanceRecord
	forms          *formLookup
	destination    string
	deleteOverride *bool
}

// runPass uploads instances in order until the queue is empty, a server asks for
// credentials, or ctx is done.
func (s *SubmissionServiceImpl) runPass(ctx context.Context, in passInput) *primary.RunResponse {
	resp := &primary.RunResponse{RunID: in.runID, Result: primary.RunSuccess}
	remap := submission.NewURIRemap()

	for _, inst := range in.instances {
		if ctx.Err() != nil {
			resp.Cancelled = true
			break
		}

		// Captured before the upload: a deleted instance can no longer be looked up.
		displayName := inst.DisplayName

		target := submission.SubmissionURL(submission.URLContext{
			DestinationOverride:   in.destination,
			InstanceSubmissionURI: inst.SubmissionURI,
			ServerURL:             s.settings.ServerURL,
			SubmissionPath:        s.settings.SubmissionPath,
			DeviceID:              s.settings.DeviceID,
		})

		result := s.client.UploadOne(ctx, inst, target, remap)
		outcome := &primary.InstanceOutcome{
			InstanceID:  inst.ID,
			DisplayName: displayName,
			Kind:        string(result.Kind),
			Message:     result.DisplayMessage(),
			Succeeded:   result.IsSuccess(),
		}
		if result.IsFatal() {
			if result.AuthRequestingURI != nil {
				resp.AuthRequestingURI = result.AuthRequestingURI.String()
			}
			resp.Outcomes = append(resp.Outcomes, outcome)
			resp.Result = primary.RunFail
			break
		}

		if result.IsSuccess() {
			s.deleteIfRequested(ctx, inst, in, outcome)
		}
		resp.Outcomes = append(resp.Outcomes, outcome)
	}

	if resp.Cancelled && resp.Result == primary.RunSuccess {
		resp.Result = primary.RunRetryLater
	}
	resp.Message = FormatResultMessage(resp.Outcomes)

	s.report(ctx, resp)
	s.observeRun(in.trigger, resp.Result)
	s.logger.Infow("submission pass finished",
		"run_id", in.runID,
		"trigger", in.trigger,
		"result", resp.Result,
		"attempted", len(resp.Outcomes),
		"cancelled", resp.Cancelled,
	)
	return resp
}

func (s *SubmissionServiceImpl) deleteIfRequested(
	ctx context.Context,
	inst *secondary.InstanceRecord,
	in passInput,
	outcome *primary.InstanceOutcome,
) {
	form, err := in.forms.get(ctx, inst.FormID)
	if err != nil {
		s.logger.Errorw("failed to load form for delete decision", "run_id", in.runID, "form_id", inst.FormID, "error", err)
		return
	}

	if !autosend.ShouldAutoDelete(autosend.AutoDeleteContext{
		FormID:                  inst.FormID,
		FormAutoDelete:          formAutoDelete(form),
		AppLevelDeleteAfterSend: s.settings.DeleteAfterSend,
		Override:                in.deleteOverride,
	}) {
		return
	}

	if err := s.instanceRepo.Delete(context.WithoutCancel(ctx), inst.ID); err != nil {
		s.logger.Errorw("failed to delete sent instance", "run_id", in.runID, "instance_id", inst.ID, "error", err)
		outcome.Message += " (could not delete: " + err.Error() + ")"
		return
	}
	outcome.Deleted = true
	if s.metrics != nil {
		s.metrics.ObserveDeletion()
	}
}

func (s *SubmissionServiceImpl) report(ctx context.Context, resp *primary.RunResponse) {
	if len(resp.Outcomes) == 0 && resp.AuthRequestingURI == "" {
		return
	}

	allSucceeded := true
	for _, o := range resp.Outcomes {
		if !o.Succeeded {
			allSucceeded = false
			break
		}
	}
	summary := "Success"
	if !allSucceeded {
		summary = "Failures"
	}

	err := s.reporter.ReportResults(context.WithoutCancel(ctx), secondary.UploadReport{
		Title:             ResultTitle,
		Summary:           summary,
		Body:              resp.Message,
		Messages:          resp.Messages(),
		AllSucceeded:      allSucceeded,
		AuthRequestingURI: resp.AuthRequestingURI,
	})
	if err != nil {
		s.logger.Errorw("failed to report results", "run_id", resp.RunID, "error", err)
	}
}

func (s *SubmissionServiceImpl) observeRun(trigger string, result primary.RunResult) {
	if s.metrics != nil {
		s.metrics.ObserveRun(trigger, string(result))
	}
}

// formLookup caches form definitions for the duration of a pass.
type formLookup struct {
	repo  secondary.FormRepository
	forms map[string]*secondary.FormRecord
}

func newFormLookup(repo secondary.FormRepository) *formLookup {
	return &formLookup{repo: repo, forms: make(map[string]*secondary.FormRecord)}
}

// get returns the form, or nil when it is not registered.
func (l *formLookup) get(ctx context.Context, formID string) (*secondary.FormRecord, error) {
	if form, ok := l.forms[formID]; ok {
		return form, nil
	}
	form, err := l.repo.GetByFormID(ctx, formID)
	if errors.Is(err, secondary.ErrNotFound) {
		form, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get form %s: %w", formID, err)
	}
	l.forms[formID] = form
	return form, nil
}

func formAutoSend(form *secondary.FormRecord) *bool {
	if form == nil {
		return nil
	}
	return form.AutoSend
}

func formAutoDelete(form *secondary.FormRecord) *bool {
	if form == nil {
		return nil
	}
	return form.AutoDelete
}

// Ensure SubmissionServiceImpl implements the interface
var _ primary.SubmissionService = (*SubmissionServiceImpl)(nil)
