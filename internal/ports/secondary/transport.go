package secondary

import (
	"context"
	"net/url"
)

// OpenRosaTransport defines the secondary port for the OpenRosa HTTP exchange.
// Implementations must not follow redirects: the caller decides what a redirect means.
type OpenRosaTransport interface {
	// Head issues a HEAD request to target.
	Head(ctx context.Context, target *url.URL, creds *Credentials) (*HeadResponse, error)

	// UploadSubmission posts the submission file and its attachments as multipart/form-data.
	UploadSubmission(ctx context.Context, req UploadRequest) (*UploadResponse, error)
}

// HeadResponse is the part of a HEAD response the protocol looks at.
type HeadResponse struct {
	StatusCode int
	Location   string
}

// UploadRequest describes one multipart submission.
type UploadRequest struct {
	Target         *url.URL
	SubmissionFile string
	Attachments    []string // absolute paths
	Credentials    *Credentials
}

// UploadResponse is the server's answer to a submission.
type UploadResponse struct {
	StatusCode   int
	ReasonPhrase string

	// Message is the message of a well-formed OpenRosa response, empty otherwise.
	Message string
}
