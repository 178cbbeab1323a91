package submission

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultSubmissionPath is the well-known OpenRosa submission path.
const DefaultSubmissionPath = "/submission"

// URLContext holds every source a submission URL can come from.
type URLContext struct {
	// DestinationOverride is set by callers that request a one-off submission elsewhere.
	DestinationOverride string

	// InstanceSubmissionURI is the submission URI declared by the form definition.
	InstanceSubmissionURI string

	ServerURL      string
	SubmissionPath string
	DeviceID       string
}

// SubmissionURL returns the URL an instance is posted to, with the device id appended.
// Precedence: destination override, then the form's submission URI, then the configured server.
func SubmissionURL(ctx URLContext) string {
	var target string
	switch {
	case ctx.DestinationOverride != "":
		target = ctx.DestinationOverride
	case strings.TrimSpace(ctx.InstanceSubmissionURI) != "":
		target = strings.TrimSpace(ctx.InstanceSubmissionURI)
	default:
		target = ServerSubmissionURL(ctx.ServerURL, ctx.SubmissionPath)
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "deviceID=" + url.QueryEscape(ctx.DeviceID)
}

// ServerSubmissionURL joins the server base URL and the submission path.
func ServerSubmissionURL(serverURL, submissionPath string) string {
	base := strings.TrimSuffix(serverURL, "/")
	if submissionPath == "" {
		submissionPath = DefaultSubmissionPath
	}
	if !strings.HasPrefix(submissionPath, "/") {
		submissionPath = "/" + submissionPath
	}
	return base + submissionPath
}

// ParseTarget parses a submission URL. The returned result is non-nil when the URL
// cannot be used: URL_ERROR for a malformed string, HOST_NAME_NULL when it names no host.
func ParseTarget(instanceID int64, raw string) (*url.URL, *Result) {
	target, err := url.Parse(raw)
	if err != nil {
		r := NewResult(instanceID, KindURLError).
			WithMessage(fmt.Sprintf("%sInvalid submission URL %s : %v", failPrefix, raw, err))
		return nil, &r
	}
	if target.Hostname() == "" {
		r := NewResult(instanceID, KindHostNameNull)
		return nil, &r
	}
	return target, nil
}
