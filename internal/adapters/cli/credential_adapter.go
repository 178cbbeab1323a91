package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/odkupload/internal/ports/primary"
)

// CredentialAdapter translates CLI operations to CredentialService calls.
type CredentialAdapter struct {
	service primary.CredentialService
	out     io.Writer
}

// NewCredentialAdapter creates a new CredentialAdapter with the given service.
func NewCredentialAdapter(service primary.CredentialService, out io.Writer) *CredentialAdapter {
	return &CredentialAdapter{
		service: service,
		out:     out,
	}
}

// Set stores credentials for the server's host.
func (a *CredentialAdapter) Set(ctx context.Context, serverURL, username, password string) error {
	if err := a.service.SetCredentials(ctx, serverURL, username, password); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Credentials saved for %s\n", serverURL)
	return nil
}

// Clear removes credentials for the server's host.
func (a *CredentialAdapter) Clear(ctx context.Context, serverURL string) error {
	if err := a.service.ClearCredentials(ctx, serverURL); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Credentials cleared for %s\n", serverURL)
	return nil
}
