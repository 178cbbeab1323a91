package app

import (
	"context"
	"fmt"
	"net/url"

	"github.com/example/odkupload/internal/ports/primary"
	"github.com/example/odkupload/internal/ports/secondary"
)

// CredentialServiceImpl implements the CredentialService interface.
type CredentialServiceImpl struct {
	store secondary.CredentialStore
}

// NewCredentialService creates a new CredentialService with injected dependencies.
func NewCredentialService(store secondary.CredentialStore) *CredentialServiceImpl {
	return &CredentialServiceImpl{store: store}
}

// SetCredentials stores credentials for the host of serverURL.
func (s *CredentialServiceImpl) SetCredentials(ctx context.Context, serverURL, username, password string) error {
	host, err := hostOf(serverURL)
	if err != nil {
		return err
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	if err := s.store.SaveCredentials(ctx, host, secondary.Credentials{Username: username, Password: password}); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// ClearCredentials removes the credentials for the host of serverURL.
func (s *CredentialServiceImpl) ClearCredentials(ctx context.Context, serverURL string) error {
	host, err := hostOf(serverURL)
	if err != nil {
		return err
	}

	if err := s.store.ClearCredentials(ctx, host); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func hostOf(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("invalid server URL %q", serverURL)
	}
	return u.Hostname(), nil
}

// Ensure CredentialServiceImpl implements the interface
var _ primary.CredentialService = (*CredentialServiceImpl)(nil)
