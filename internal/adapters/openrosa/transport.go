// Package openrosa implements the OpenRosa HTTP exchange: HEAD probes and
// multipart submissions with Basic or Digest authentication.
package openrosa

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/icholy/digest"

	"github.com/example/odkupload/internal/ports/secondary"
)

// SubmissionFieldName is the multipart field carrying the instance XML.
const SubmissionFieldName = "xml_submission_file"

// HTTPTransport implements secondary.OpenRosaTransport over net/http.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
	now       func() time.Time
}

// NewHTTPClient creates a client for OpenRosa servers with the given per-request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// NewHTTPTransport creates a transport using a copy of client that never follows redirects.
func NewHTTPTransport(client *http.Client, userAgent string) *HTTPTransport {
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &HTTPTransport{
		client:    &c,
		userAgent: userAgent,
		now:       time.Now,
	}
}

// Head issues a HEAD request to target.
func (t *HTTPTransport) Head(ctx context.Context, target *url.URL, creds *secondary.Credentials) (*secondary.HeadResponse, error) {
	resp, err := t.do(ctx, http.MethodHead, target, nil, "", creds)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	return &secondary.HeadResponse{
		StatusCode: resp.StatusCode,
		Location:   resp.Header.Get("Location"),
	}, nil
}

// UploadSubmission posts the submission file and its attachments as multipart/form-data.
func (t *HTTPTransport) UploadSubmission(ctx context.Context, req secondary.UploadRequest) (*secondary.UploadResponse, error) {
	body, contentType, err := buildMultipart(req.SubmissionFile, req.Attachments)
	if err != nil {
		return nil, err
	}

	resp, err := t.do(ctx, http.MethodPost, req.Target, body, contentType, req.Credentials)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	return &secondary.UploadResponse{
		StatusCode:   resp.StatusCode,
		ReasonPhrase: reasonPhrase(resp),
		Message:      ParseResponseMessage(resp.Header.Get("Content-Type"), resp.Body),
	}, nil
}

// do sends the request anonymously first. On a 401 with credentials available it is
// resent once, answering a Digest challenge with Digest and anything else with Basic.
func (t *HTTPTransport) do(
	ctx context.Context,
	method string,
	target *url.URL,
	body []byte,
	contentType string,
	creds *secondary.Credentials,
) (*http.Response, error) {
	req, err := t.newRequest(ctx, method, target, body, contentType)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || creds == nil {
		return resp, nil
	}

	challenge := resp.Header.Get("WWW-Authenticate")
	drain(resp)

	retry, err := t.newRequest(ctx, method, target, body, contentType)
	if err != nil {
		return nil, err
	}
	if err := authorize(retry, challenge, creds); err != nil {
		return nil, err
	}
	return t.client.Do(retry)
}

func (t *HTTPTransport) newRequest(ctx context.Context, method string, target *url.URL, body []byte, contentType string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}

	req.Header.Set("X-OpenRosa-Version", "1.0")
	req.Header.Set("Date", t.now().UTC().Format(http.TimeFormat))
	req.Header.Set("User-Agent", t.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func authorize(req *http.Request, challenge string, creds *secondary.Credentials) error {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(challenge)), "digest") {
		req.SetBasicAuth(creds.Username, creds.Password)
		return nil
	}

	chal, err := digest.ParseChallenge(challenge)
	if err != nil {
		return fmt.Errorf("failed to parse digest challenge: %w", err)
	}
	cred, err := digest.Digest(chal, digest.Options{
		Method:   req.Method,
		URI:      req.URL.RequestURI(),
		GetBody:  req.GetBody,
		Count:    1,
		Username: creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to compute digest credentials: %w", err)
	}
	req.Header.Set("Authorization", cred.String())
	return nil
}

// buildMultipart encodes the submission and its attachments. Attachments use their
// file name as the field name.
func buildMultipart(submissionFile string, attachments []string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := addFilePart(w, SubmissionFieldName, submissionFile, "text/xml"); err != nil {
		return nil, "", err
	}
	for _, path := range attachments {
		if err := addFilePart(w, filepath.Base(path), path, contentTypeFor(path)); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func addFilePart(w *multipart.Writer, field, path, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(path)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create part for %s: %w", path, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// reasonPhrase strips the status code from resp.Status ("201 Created" -> "Created").
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	resp.Body.Close()
}

// Ensure HTTPTransport implements the interface
var _ secondary.OpenRosaTransport = (*HTTPTransport)(nil)
