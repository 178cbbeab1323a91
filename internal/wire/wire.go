// Package wire provides dependency injection for the odkupload application.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"os"
	"sync"

	cliadapter "github.com/example/odkupload/internal/adapters/cli"
	"github.com/example/odkupload/internal/adapters/filesystem"
	"github.com/example/odkupload/internal/adapters/openrosa"
	"github.com/example/odkupload/internal/adapters/persistence"
	"github.com/example/odkupload/internal/adapters/sqlite"
	"github.com/example/odkupload/internal/app"
	"github.com/example/odkupload/internal/config"
	"github.com/example/odkupload/internal/db"
	"github.com/example/odkupload/internal/logging"
	"github.com/example/odkupload/internal/metrics"
	"github.com/example/odkupload/internal/ports/primary"
	"github.com/example/odkupload/internal/version"
)

var (
	cfg *config.Config
	out io.Writer = os.Stdout

	submissionService primary.SubmissionService
	instanceService   primary.InstanceService
	formService       primary.FormService
	credentialService primary.CredentialService
	recorder          *metrics.Recorder
	once              sync.Once
)

// Configure sets the configuration used to build services.
// Must be called before the first service is requested.
func Configure(c *config.Config) {
	cfg = c
}

// SubmissionService returns the singleton SubmissionService instance.
func SubmissionService() primary.SubmissionService {
	once.Do(initServices)
	return submissionService
}

// InstanceService returns the singleton InstanceService instance.
func InstanceService() primary.InstanceService {
	once.Do(initServices)
	return instanceService
}

// FormService returns the singleton FormService instance.
func FormService() primary.FormService {
	once.Do(initServices)
	return formService
}

// CredentialService returns the singleton CredentialService instance.
func CredentialService() primary.CredentialService {
	once.Do(initServices)
	return credentialService
}

// Metrics returns the singleton metrics recorder.
func Metrics() *metrics.Recorder {
	once.Do(initServices)
	return recorder
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	logger := logging.For("wire")
	if cfg == nil {
		cfg = config.Default()
	}

	if cfg.DBPath != "" {
		db.SetPath(cfg.DBPath)
	}
	database, err := db.GetDB()
	if err != nil {
		logger.Fatalw("failed to initialize database", "error", err)
	}

	files, err := filesystem.NewInstanceStore(cfg.InstancesDir)
	if err != nil {
		logger.Fatalw("failed to initialize instance store", "error", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	formRepo := sqlite.NewFormRepository(database)
	credentialRepo := sqlite.NewCredentialRepository(database)
	instanceRepo := persistence.NewInstanceRepository(sqlite.NewInstanceRepository(database), files)

	transport := openrosa.NewHTTPTransport(openrosa.NewHTTPClient(cfg.HTTPTimeout()), version.UserAgent())
	recorder = metrics.NewRecorder()
	reporter := cliadapter.NewTerminalReporter(out)

	client := app.NewProtocolClient(
		transport, files, instanceRepo, credentialRepo, recorder, logging.For("openrosa"),
	)

	// Create services (primary ports implementation)
	submissionService = app.NewSubmissionService(
		instanceRepo,
		formRepo,
		credentialRepo,
		files,
		client,
		reporter,
		recorder,
		app.SubmissionSettings{
			ServerURL:       cfg.ServerURL,
			SubmissionPath:  cfg.SubmissionPath,
			AutoSendMode:    cfg.AutoSendMode(),
			DeleteAfterSend: cfg.DeleteAfterSend,
			DeviceID:        cfg.DeviceID,
		},
		logging.For("submission"),
	)
	instanceService = app.NewInstanceService(instanceRepo, files)
	formService = app.NewFormService(formRepo)
	credentialService = app.NewCredentialService(credentialRepo)
}

// SubmissionAdapter returns a new SubmissionAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func SubmissionAdapter() *cliadapter.SubmissionAdapter {
	return SubmissionAdapterWithOutput(out)
}

// SubmissionAdapterWithOutput returns a new SubmissionAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func SubmissionAdapterWithOutput(w io.Writer) *cliadapter.SubmissionAdapter {
	once.Do(initServices)
	return cliadapter.NewSubmissionAdapter(submissionService, w)
}

// InstanceAdapter returns a new InstanceAdapter writing to stdout.
func InstanceAdapter() *cliadapter.InstanceAdapter {
	once.Do(initServices)
	return cliadapter.NewInstanceAdapter(instanceService, out)
}

// FormAdapter returns a new FormAdapter writing to stdout.
func FormAdapter() *cliadapter.FormAdapter {
	once.Do(initServices)
	return cliadapter.NewFormAdapter(formService, out)
}

// CredentialAdapter returns a new CredentialAdapter writing to stdout.
func CredentialAdapter() *cliadapter.CredentialAdapter {
	once.Do(initServices)
	return cliadapter.NewCredentialAdapter(credentialService, out)
}
