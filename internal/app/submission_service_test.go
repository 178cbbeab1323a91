package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/odkupload/internal/core/autosend"
	"github.com/example/odkupload/internal/ports/primary"
	"github.com/example/odkupload/internal/ports/secondary"
)

type serviceFixture struct {
	*protocolFixture
	forms    *mockFormRepository
	reporter *mockReporter
	metrics  *mockMetrics
	settings SubmissionSettings
}

func newServiceFixture() *serviceFixture {
	return &serviceFixture{
		protocolFixture: newProtocolFixture(),
		forms:           newMockFormRepository(),
		reporter:        &mockReporter{},
		metrics:         newMockMetrics(),
		settings: SubmissionSettings{
			ServerURL:    testServer,
			AutoSendMode: autosend.ModeWiFiOnly,
			DeviceID:     "odkupload:test",
		},
	}
}

func (f *serviceFixture) service() *SubmissionServiceImpl {
	client := NewProtocolClient(f.http, f.files, f.repo, f.creds, f.metrics, testLogger())
	return NewSubmissionService(f.repo, f.forms, f.creds, f.files, client, f.reporter, f.metrics, f.settings, testLogger())
}

func (f *serviceFixture) addForm(formID string, autoSend, autoDelete *bool) {
	f.forms.forms[formID] = &secondary.FormRecord{FormID: formID, DisplayName: formID, AutoSend: autoSend, AutoDelete: autoDelete}
}

func (f *serviceFixture) addFormInstance(id int64, formID string) *secondary.InstanceRecord {
	inst := f.addInstance(id, formID+"_"+string(rune('a'+id)))
	inst.FormID = formID
	f.repo.add(inst)
	return inst
}

func TestRunAutoSend_UploadsEligibleInstances(t *testing.T) {
	f := newServiceFixture()
	f.addForm("household", nil, nil)
	f.addForm("private", boolPtr(false), nil)
	f.addFormInstance(1, "household")
	f.addFormInstance(2, "private")
	f.addFormInstance(3, "household")

	resp, err := f.service().RunAutoSend(context.Background(), primary.AutoSendRequest{Network: "wifi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Result != primary.RunSuccess {
		t.Errorf("expected success, got %s (%s)", resp.Result, resp.Reason)
	}
	if len(resp.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(resp.Outcomes))
	}
	if resp.Outcomes[0].InstanceID != 1 || resp.Outcomes[1].InstanceID != 3 {
		t.Errorf("expected instances 1 and 3 in order, got %d and %d", resp.Outcomes[0].InstanceID, resp.Outcomes[1].InstanceID)
	}
	if got := f.repo.status(2); got != "complete" {
		t.Errorf("expected opted-out instance untouched, got %s", got)
	}
	if resp.RunID == "" {
		t.Error("expected a run ID")
	}

	if len(f.reporter.reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(f.reporter.reports))
	}
	report := f.reporter.reports[0]
	if report.Title != "Upload results" || report.Summary != "Success" || !report.AllSucceeded {
		t.Errorf("unexpected report header: %+v", report)
	}
	if len(report.Messages) != 2 {
		t.Errorf("expected 2 messages, got %v", report.Messages)
	}
	if f.metrics.runs["auto/success"] != 1 {
		t.Errorf("expected auto/success run metric, got %v", f.metrics.runs)
	}
}

func TestRunAutoSend_GateVerdicts(t *testing.T) {
	tests := []struct {
		name        string
		network     string
		mode        autosend.Mode
		storage     bool
		forceForm   bool
		wantResult  primary.RunResult
		wantUploads int
	}{
		{name: "wifi matches wifi only", network: "wifi", mode: autosend.ModeWiFiOnly, storage: true, wantResult: primary.RunSuccess, wantUploads: 1},
		{name: "cellular on wifi only retries", network: "cellular", mode: autosend.ModeWiFiOnly, storage: true, wantResult: primary.RunRetryLater},
		{name: "no network retries", network: "none", mode: autosend.ModeWiFiAndCellular, storage: true, wantResult: primary.RunRetryLater},
		{name: "mode off fails", network: "wifi", mode: autosend.ModeOff, storage: true, wantResult: primary.RunFail},
		{name: "storage unavailable fails", network: "wifi", mode: autosend.ModeWiFiOnly, storage: false, wantResult: primary.RunFail},
		{name: "form override on cellular", network: "cellular", mode: autosend.ModeWiFiOnly, storage: true, forceForm: true, wantResult: primary.RunSuccess, wantUploads: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			f.settings.AutoSendMode = tt.mode
			f.files.storageAvailable = tt.storage
			if tt.forceForm {
				f.addForm("household", boolPtr(true), nil)
			}
			f.addFormInstance(1, "household")

			resp, err := f.service().RunAutoSend(context.Background(), primary.AutoSendRequest{Network: tt.network})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if resp.Result != tt.wantResult {
				t.Errorf("expected %s, got %s (%s)", tt.wantResult, resp.Result, resp.Reason)
			}
			if len(f.http.uploads) != tt.wantUploads {
				t.Errorf("expected %d uploads, got %d", tt.wantUploads, len(f.http.uploads))
			}
			if tt.wantResult != primary.RunSuccess && resp.Reason == "" {
				t.Error("expected a reason for a pass that did not run")
			}
		})
	}
}

func TestRunAutoSend_InvalidNetwork(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service().RunAutoSend(context.Background(), primary.AutoSendRequest{Network: "satellite"})
	if err == nil {
		t.Fatal("expected error for unknown network type")
	}
}

func TestRunAutoSend_EmptyQueueIsIdempotent(t *testing.T) {
	f := newServiceFixture()
	svc := f.service()

	for i := 0; i < 2; i++ {
		resp, err := svc.RunAutoSend(context.Background(), primary.AutoSendRequest{Network: "wifi"})
		if err != nil {
			t.Fatalf("pass %d: unexpected error: %v", i, err)
		}
		if resp.Result != primary.RunSuccess {
			t.Errorf("pass %d: expected success, got %s", i, resp.Result)
		}
		if len(resp.Outcomes) != 0 {
			t.Errorf("pass %d: expected no outcomes, got %d", i, len(resp.Outcomes))
		}
	}
	if len(f.reporter.reports) != 0 {
		t.Errorf("expected no report for empty passes, got %d", len(f.reporter.reports))
	}
	if len(f.http.heads) != 0 {
		t.Errorf("expected no network traffic, got %d HEAD requests", len(f.http.heads))
	}
}

func TestRunAutoSend_AuthRequestHaltsPass(t *testing.T) {
	f := newServiceFixture()
	f.addFormInstance(1, "household")
	f.addFormInstance(2, "household")
	f.http.headResponses[testServer+"/submission"] = &secondary.HeadResponse{StatusCode: 401}

	resp, err := f.service().RunAutoSend(context.Background(), primary.AutoSendRequest{Network: "wifi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Result != primary.RunFail {
		t.Errorf("expected fail, got %s", resp.Result)
	}
	if len(f.http.heads) != 1 {
		t.Errorf("expected the second instance not to be attempted, got %d HEAD requests", len(f.http.heads))
	}
	if !strings.HasPrefix(resp.AuthRequestingURI, testServer+"/submission") {
		t.Errorf("expected auth requesting URI on %s, got %q", testServer, resp.AuthRequestingURI)
	}
	if f.repo.status(1) != "complete" || f.repo.status(2) != "complete" {
		t.Errorf("expected both instances untouched, got %s and %s", f.repo.status(1), f.repo.status(2))
	}
	if len(f.reporter.reports) != 1 || f.reporter.reports[0].AuthRequestingURI == "" {
		t.Fatalf("expected a report carrying the auth URI, got %+v", f.reporter.reports)
	}

	// The instance that hit the challenge is named in the results; the next one is not.
	if len(resp.Outcomes) != 1 || resp.Outcomes[0].InstanceID != 1 {
		t.Fatalf("expected only instance 1 in outcomes, got %+v", resp.Outcomes)
	}
	if resp.Outcomes[0].Kind != "AUTH_REQUESTED" || resp.Outcomes[0].Succeeded {
		t.Errorf("expected an unsuccessful AUTH_REQUESTED outcome, got %+v", resp.Outcomes[0])
	}
	report := f.reporter.reports[0]
	if report.Messages[1] != "Authorization requested" {
		t.Errorf("expected report to name instance 1, got %v", report.Messages)
	}
	if _, ok := report.Messages[2]; ok {
		t.Errorf("instance 2 was never attempted, got %v", report.Messages)
	}
	if report.Summary != "Failures" {
		t.Errorf("expected Failures summary, got %q", report.Summary)
	}
}

func TestRunAutoSend_FailuresDoNotStopPass(t *testing.T) {
	f := newServiceFixture()
	first := f.addFormInstance(1, "household")
	f.addFormInstance(2, "household")
	// Instance 1 lost its XML.
	f.files.dirs[filepath.Dir(first.InstanceFilePath)] = []string{"photo.jpg"}

	resp, err := f.service().RunAutoSend(context.Background(), primary.AutoSendRequest{Network: "wifi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Result != primary.RunSuccess {
		t.Errorf("expected success, got %s", resp.Result)
	}
	if len(resp.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(resp.Outcomes))
	}
	if resp.Outcomes[0].Succeeded || !resp.Outcomes[1].Succeeded {
		t.Errorf("expected first failed and second succeeded, got %+v %+v", resp.Outcomes[0], resp.Outcomes[1])
	}
	if f.reporter.reports[0].Summary != "Failures" {
		t.Errorf("expected Failures summary, got %s", f.reporter.reports[0].Summary)
	}
	if !strings.Contains(resp.Message, "\n\n") {
		t.Errorf("expected blank line between messages, got %q", resp.Message)
	}
}

func TestRunAutoSend_AutoDelete(t *testing.T) {
	tests := []struct {
		name        string
		appDelete   bool
		formDelete  *bool
		wantDeleted bool
	}{
		{name: "app level delete", appDelete: true, wantDeleted: true},
		{name: "app level keep", appDelete: false, wantDeleted: false},
		{name: "form keeps over app delete", appDelete: true, formDelete: boolPtr(false), wantDeleted: false},
		{name: "form deletes over app keep", appDelete: false, formDelete: boolPtr(true), wantDeleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			f.settings.DeleteAfterSend = tt.appDelete
			f.addForm("household", nil, tt.formDelete)
			inst := f.addFormInstance(1, "household")

			resp, err := f.service().RunAutoSend(context.Background(), primary.AutoSendRequest{Network: "wifi"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_, stillThere := f.repo.instances[1]
			if stillThere == tt.wantDeleted {
				t.Errorf("expected deleted=%v, instance present=%v", tt.wantDeleted, stillThere)
			}
			if resp.Outcomes[0].Deleted != tt.wantDeleted {
				t.Errorf("expected outcome deleted=%v, got %v", tt.wantDeleted, resp.Outcomes[0].Deleted)
			}
			if resp.Outcomes[0].DisplayName != inst.DisplayName {
				t.Errorf("expected display name %q kept after delete, got %q", inst.DisplayName, resp.Outcomes[0].DisplayName)
			}
		})
	}
}

func TestRunAutoSend_FailedUploadIsNeverDeleted(t *testing.T) {
	f := newServiceFixture()
	f.settings.DeleteAfterSend = true
	f.addFormInstance(1, "household")
	f.http.uploadResp = &secondary.UploadResponse{StatusCode: 500, ReasonPhrase: "Internal Server Error"}

	if _, err := f.service().RunAutoSend(context.Background(), primary.AutoSendRequest{Network: "wifi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.repo.deleted) != 0 {
		t.Errorf("expected no deletion, got %v", f.repo.deleted)
	}
	if f.repo.status(1) != "submissionFailed" {
		t.Errorf("expected submissionFailed, got %s", f.repo.status(1))
	}
}

func TestRunAutoSend_CancelledBetweenInstances(t *testing.T) {
	f := newServiceFixture()
	f.addFormInstance(1, "household")
	f.addFormInstance(2, "household")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.http.onUpload = func(req secondary.UploadRequest) { cancel() }

	resp, err := f.service().RunAutoSend(ctx, primary.AutoSendRequest{Network: "wifi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Cancelled {
		t.Error("expected pass to be cancelled")
	}
	if resp.Result != primary.RunRetryLater {
		t.Errorf("expected retry, got %s", resp.Result)
	}
	if len(resp.Outcomes) != 1 {
		t.Errorf("expected 1 partial outcome, got %d", len(resp.Outcomes))
	}
	if f.repo.status(2) != "complete" {
		t.Errorf("expected instance 2 untouched, got %s", f.repo.status(2))
	}
}

func TestRunAutoSend_RejectsConcurrentPass(t *testing.T) {
	f := newServiceFixture()
	f.addFormInstance(1, "household")
	svc := f.service()

	var nestedErr error
	f.http.onUpload = func(req secondary.UploadRequest) {
		_, nestedErr = svc.RunAutoSend(context.Background(), primary.AutoSendRequest{Network: "wifi"})
	}

	if _, err := svc.RunAutoSend(context.Background(), primary.AutoSendRequest{Network: "wifi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(nestedErr, primary.ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", nestedErr)
	}

	// The semaphore is released once the pass returns.
	f.http.onUpload = nil
	if _, err := svc.RunAutoSend(context.Background(), primary.AutoSendRequest{Network: "wifi"}); err != nil {
		t.Errorf("expected a later pass to run, got %v", err)
	}
}

func TestRunAutoSend_RepositoryError(t *testing.T) {
	f := newServiceFixture()
	f.repo.listErr = errors.New("database is locked")

	_, err := f.service().RunAutoSend(context.Background(), primary.AutoSendRequest{Network: "wifi"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "database is locked") {
		t.Errorf("expected wrapped repository error, got %v", err)
	}
}

func TestSubmitInstances_BypassesGateAndPolicy(t *testing.T) {
	f := newServiceFixture()
	f.settings.AutoSendMode = autosend.ModeOff
	f.files.storageAvailable = false
	f.addForm("private", boolPtr(false), nil)
	f.addFormInstance(1, "private")
	f.addFormInstance(2, "private")

	resp, err := f.service().SubmitInstances(context.Background(), primary.SubmitRequest{InstanceIDs: []int64{2, 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Outcomes) != 2 || resp.Outcomes[0].InstanceID != 2 {
		t.Fatalf("expected instances in requested order, got %+v", resp.Outcomes)
	}
	if f.metrics.runs["explicit/success"] != 1 {
		t.Errorf("expected explicit/success run metric, got %v", f.metrics.runs)
	}
}

func TestSubmitInstances_SkipsUnsendableStatus(t *testing.T) {
	f := newServiceFixture()
	inst := f.addFormInstance(1, "household")
	inst.Status = "incomplete"
	f.repo.add(inst)
	failed := f.addFormInstance(2, "household")
	failed.Status = "submissionFailed"
	f.repo.add(failed)

	resp, err := f.service().SubmitInstances(context.Background(), primary.SubmitRequest{InstanceIDs: []int64{1, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Outcomes) != 1 || resp.Outcomes[0].InstanceID != 2 {
		t.Errorf("expected only the failed instance to be retried, got %+v", resp.Outcomes)
	}
}

func TestSubmitInstances_DestinationAndTemporaryCredentials(t *testing.T) {
	f := newServiceFixture()
	f.addFormInstance(1, "household")

	var credsDuringUpload *secondary.Credentials
	f.http.onUpload = func(req secondary.UploadRequest) { credsDuringUpload = req.Credentials }

	_, err := f.service().SubmitInstances(context.Background(), primary.SubmitRequest{
		InstanceIDs:    []int64{1},
		DestinationURL: "https://aggregate.example.net/custom",
		Username:       "temp",
		Password:       "pw",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.http.uploads[0].Target.String(); got != "https://aggregate.example.net/custom?deviceID=odkupload%3Atest" {
		t.Errorf("expected upload to destination override, got %s", got)
	}
	if credsDuringUpload == nil || credsDuringUpload.Username != "temp" {
		t.Errorf("expected temporary credentials during upload, got %v", credsDuringUpload)
	}
	if _, ok := f.creds.creds["aggregate.example.net"]; ok {
		t.Error("expected temporary credentials cleared after the pass")
	}
}

func TestSubmitInstances_AnonymousDestinationClearsStoredCredentials(t *testing.T) {
	f := newServiceFixture()
	f.addFormInstance(1, "household")
	f.creds.creds["aggregate.example.net"] = secondary.Credentials{Username: "old", Password: "old"}

	_, err := f.service().SubmitInstances(context.Background(), primary.SubmitRequest{
		InstanceIDs:    []int64{1},
		DestinationURL: "https://aggregate.example.net/custom",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.http.headCreds[0] != nil {
		t.Errorf("expected anonymous HEAD, got %v", f.http.headCreds[0])
	}
}

func TestSubmitInstances_DeleteOverride(t *testing.T) {
	tests := []struct {
		name        string
		override    *bool
		formDelete  *bool
		appDelete   bool
		wantDeleted bool
	}{
		{name: "override delete beats form keep", override: boolPtr(true), formDelete: boolPtr(false), wantDeleted: true},
		{name: "override keep beats app delete", override: boolPtr(false), appDelete: true, wantDeleted: false},
		{name: "no override falls back to form", formDelete: boolPtr(true), wantDeleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			f.settings.DeleteAfterSend = tt.appDelete
			f.addForm("household", nil, tt.formDelete)
			f.addFormInstance(1, "household")

			_, err := f.service().SubmitInstances(context.Background(), primary.SubmitRequest{
				InstanceIDs:           []int64{1},
				DeleteAfterSubmission: tt.override,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if deleted := len(f.repo.deleted) == 1; deleted != tt.wantDeleted {
				t.Errorf("expected deleted=%v, got %v", tt.wantDeleted, deleted)
			}
		})
	}
}

func TestSubmitInstances_InvalidDestination(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service().SubmitInstances(context.Background(), primary.SubmitRequest{
		InstanceIDs:    []int64{1},
		DestinationURL: "not a url",
	})
	if err == nil {
		t.Fatal("expected error for destination without host")
	}
}
