package app

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/odkupload/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.InstanceRepository = (*mockInstanceRepository)(nil)
	_ secondary.FormRepository     = (*mockFormRepository)(nil)
	_ secondary.CredentialStore    = (*mockCredentialStore)(nil)
	_ secondary.InstanceFileStore  = (*mockFileStore)(nil)
	_ secondary.OpenRosaTransport  = (*mockTransport)(nil)
	_ secondary.ResultReporter     = (*mockReporter)(nil)
	_ secondary.MetricsRecorder    = (*mockMetrics)(nil)
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func boolPtr(b bool) *bool {
	return &b
}

// mockInstanceRepository implements secondary.InstanceRepository for testing.
type mockInstanceRepository struct {
	instances       map[int64]*secondary.InstanceRecord
	nextID          int64
	statusHistory   []statusChange
	deleted         []int64
	createErr       error
	getErr          error
	listErr         error
	updateStatusErr error
	deleteErr       error
}

type statusChange struct {
	id     int64
	status string
}

func newMockInstanceRepository() *mockInstanceRepository {
	return &mockInstanceRepository{
		instances: make(map[int64]*secondary.InstanceRecord),
		nextID:    1,
	}
}

// add stores a copy of inst under its ID.
func (m *mockInstanceRepository) add(inst *secondary.InstanceRecord) {
	clone := *inst
	m.instances[inst.ID] = &clone
	if inst.ID >= m.nextID {
		m.nextID = inst.ID + 1
	}
}

func (m *mockInstanceRepository) Create(ctx context.Context, inst *secondary.InstanceRecord) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	inst.ID = m.nextID
	m.nextID++
	m.add(inst)
	return inst.ID, nil
}

func (m *mockInstanceRepository) GetByID(ctx context.Context, id int64) (*secondary.InstanceRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if inst, ok := m.instances[id]; ok {
		clone := *inst
		return &clone, nil
	}
	return nil, secondary.ErrNotFound
}

func (m *mockInstanceRepository) GetByIDs(ctx context.Context, ids []int64) ([]*secondary.InstanceRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*secondary.InstanceRecord
	for _, id := range ids {
		if inst, ok := m.instances[id]; ok {
			clone := *inst
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *mockInstanceRepository) ListFinalized(ctx context.Context) ([]*secondary.InstanceRecord, error) {
	return m.List(ctx, secondary.InstanceFilters{Status: "complete"})
}

func (m *mockInstanceRepository) List(ctx context.Context, filters secondary.InstanceFilters) ([]*secondary.InstanceRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.InstanceRecord
	for _, inst := range m.instances {
		if filters.Status != "" && inst.Status != filters.Status {
			continue
		}
		if filters.FormID != "" && inst.FormID != filters.FormID {
			continue
		}
		clone := *inst
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockInstanceRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	inst, ok := m.instances[id]
	if !ok {
		return secondary.ErrNotFound
	}
	inst.Status = status
	m.statusHistory = append(m.statusHistory, statusChange{id: id, status: status})
	return nil
}

func (m *mockInstanceRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.instances, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockInstanceRepository) status(id int64) string {
	if inst, ok := m.instances[id]; ok {
		return inst.Status
	}
	return ""
}

// mockFormRepository implements secondary.FormRepository for testing.
type mockFormRepository struct {
	forms     map[string]*secondary.FormRecord
	createErr error
	getErr    error
	listErr   error
}

func newMockFormRepository() *mockFormRepository {
	return &mockFormRepository{forms: make(map[string]*secondary.FormRecord)}
}

func (m *mockFormRepository) Create(ctx context.Context, form *secondary.FormRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.forms[form.FormID] = form
	return nil
}

func (m *mockFormRepository) GetByFormID(ctx context.Context, formID string) (*secondary.FormRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if form, ok := m.forms[formID]; ok {
		return form, nil
	}
	return nil, secondary.ErrNotFound
}

func (m *mockFormRepository) List(ctx context.Context) ([]*secondary.FormRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.FormRecord
	for _, form := range m.forms {
		result = append(result, form)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FormID < result[j].FormID })
	return result, nil
}

// mockCredentialStore implements secondary.CredentialStore for testing.
type mockCredentialStore struct {
	creds   map[string]secondary.Credentials
	saved   []string
	cleared []string
	getErr  error
	saveErr error
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{creds: make(map[string]secondary.Credentials)}
}

func (m *mockCredentialStore) GetCredentials(ctx context.Context, host string) (*secondary.Credentials, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if c, ok := m.creds[host]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *mockCredentialStore) SaveCredentials(ctx context.Context, host string, creds secondary.Credentials) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.creds[host] = creds
	m.saved = append(m.saved, host)
	return nil
}

func (m *mockCredentialStore) ClearCredentials(ctx context.Context, host string) error {
	delete(m.creds, host)
	m.cleared = append(m.cleared, host)
	return nil
}

// mockFileStore implements secondary.InstanceFileStore over an in-memory directory map.
type mockFileStore struct {
	instancesDir     string
	dirs             map[string][]string // dir -> file names
	storageAvailable bool
	listErr          error
}

func newMockFileStore() *mockFileStore {
	return &mockFileStore{
		instancesDir:     "/data/instances",
		dirs:             make(map[string][]string),
		storageAvailable: true,
	}
}

// addFiles registers files in the directory of instanceFilePath.
func (m *mockFileStore) addFiles(instanceFilePath string, names ...string) {
	dir := filepath.Dir(instanceFilePath)
	m.dirs[dir] = append(m.dirs[dir], names...)
}

func (m *mockFileStore) InstancesDir() string {
	return m.instancesDir
}

func (m *mockFileStore) StorageAvailable(ctx context.Context) bool {
	return m.storageAvailable
}

func (m *mockFileStore) FileExists(ctx context.Context, path string) bool {
	for _, name := range m.dirs[filepath.Dir(path)] {
		if name == filepath.Base(path) {
			return true
		}
	}
	return false
}

func (m *mockFileStore) ListDirectory(ctx context.Context, dir string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	names, ok := m.dirs[dir]
	if !ok {
		return nil, errors.New("no such directory")
	}
	return append([]string(nil), names...), nil
}

func (m *mockFileStore) RemoveInstanceFiles(ctx context.Context, instanceFilePath string) error {
	delete(m.dirs, filepath.Dir(instanceFilePath))
	return nil
}

// mockTransport implements secondary.OpenRosaTransport for testing.
// HEAD responses are keyed by the target without its query string.
type mockTransport struct {
	mu            sync.Mutex
	headResponses map[string]*secondary.HeadResponse
	headErr       error
	uploadResp    *secondary.UploadResponse
	uploadErr     error
	heads         []*url.URL
	headCreds     []*secondary.Credentials
	uploads       []secondary.UploadRequest

	// onUpload runs before each upload response is returned.
	onUpload func(req secondary.UploadRequest)
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		headResponses: make(map[string]*secondary.HeadResponse),
		uploadResp:    &secondary.UploadResponse{StatusCode: 201, ReasonPhrase: "Created"},
	}
}

func (m *mockTransport) Head(ctx context.Context, target *url.URL, creds *secondary.Credentials) (*secondary.HeadResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heads = append(m.heads, target)
	m.headCreds = append(m.headCreds, creds)
	if m.headErr != nil {
		return nil, m.headErr
	}
	key := target.Scheme + "://" + target.Host + target.Path
	if resp, ok := m.headResponses[key]; ok {
		return resp, nil
	}
	return &secondary.HeadResponse{StatusCode: 404}, nil
}

func (m *mockTransport) UploadSubmission(ctx context.Context, req secondary.UploadRequest) (*secondary.UploadResponse, error) {
	m.mu.Lock()
	m.uploads = append(m.uploads, req)
	onUpload := m.onUpload
	m.mu.Unlock()
	if onUpload != nil {
		onUpload(req)
	}
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return m.uploadResp, nil
}

// mockReporter implements secondary.ResultReporter for testing.
type mockReporter struct {
	reports   []secondary.UploadReport
	reportErr error
}

func (m *mockReporter) ReportResults(ctx context.Context, report secondary.UploadReport) error {
	m.reports = append(m.reports, report)
	return m.reportErr
}

// mockMetrics implements secondary.MetricsRecorder for testing.
type mockMetrics struct {
	uploads   map[string]int
	runs      map[string]int
	deletions int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		uploads: make(map[string]int),
		runs:    make(map[string]int),
	}
}

func (m *mockMetrics) ObserveUpload(kind string, d time.Duration) {
	m.uploads[kind]++
}

func (m *mockMetrics) ObserveRun(trigger, result string) {
	m.runs[trigger+"/"+result]++
}

func (m *mockMetrics) ObserveDeletion() {
	m.deletions++
}
