package submission

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// HeadContext describes an answered HEAD probe.
type HeadContext struct {
	Target     *url.URL
	StatusCode int
	Location   string // empty when the response carried no Location header
}

// HeadDecision is the outcome of evaluating a HEAD probe.
// When Proceed is false, Kind and Message describe the failure.
type HeadDecision struct {
	Proceed bool

	// SubmitTo is the URI the submission must be posted to.
	SubmitTo *url.URL

	// OpenRosa is true once the server is known to speak the OpenRosa protocol.
	OpenRosa bool

	// Remap is true when SubmitTo should be recorded for Target in the run's remap table.
	Remap bool

	Kind              Kind
	Message           string
	AuthRequestingURI *url.URL
}

// EvaluateHead classifies a HEAD response.
// Rules:
// - 401 requests credentials (fatal for the pass)
// - 204 with Location on the same host is a redirect to follow; another host is refused
// - any other 2xx or 3xx status is invalid for this protocol
// - anything else falls through to a legacy (non-OpenRosa) upload
func EvaluateHead(ctx HeadContext) HeadDecision {
	status := ctx.StatusCode

	if status == http.StatusUnauthorized {
		return HeadDecision{
			Kind:              KindAuthRequested,
			AuthRequestingURI: ctx.Target,
		}
	}

	if status == http.StatusNoContent && ctx.Location != "" {
		return evaluateRedirect(ctx)
	}

	if status >= http.StatusOK && status < http.StatusBadRequest {
		return HeadDecision{Kind: KindInvalidHeadStatus}
	}

	return HeadDecision{Proceed: true, SubmitTo: ctx.Target}
}

func evaluateRedirect(ctx HeadContext) HeadDecision {
	decoded, err := url.QueryUnescape(ctx.Location)
	if err != nil {
		return uriParseFailure(ctx.Target, err)
	}

	newURI, err := url.Parse(decoded)
	if err != nil {
		return uriParseFailure(ctx.Target, err)
	}

	if newURI.Host == "" || !strings.EqualFold(ctx.Target.Hostname(), newURI.Hostname()) {
		return HeadDecision{
			Kind:    KindUnexpectedRedirect,
			Message: failPrefix + "Unexpected redirection attempt to a different host: " + newURI.String(),
		}
	}

	if newURI.RawQuery == "" {
		newURI.RawQuery = ctx.Target.RawQuery
	}

	return HeadDecision{
		Proceed:  true,
		SubmitTo: newURI,
		OpenRosa: true,
		Remap:    true,
	}
}

func uriParseFailure(target *url.URL, err error) HeadDecision {
	return HeadDecision{
		Kind:    KindURIParseError,
		Message: fmt.Sprintf("%s%s %v", failPrefix, target.String(), err),
	}
}

// HeadFailure builds the result for a HEAD probe that could not be completed.
func HeadFailure(instanceID int64, target *url.URL, err error) Result {
	return NewResult(instanceID, KindHeadRequestException).
		WithMessage(fmt.Sprintf("%sException performing HEAD request: %s : %v", failPrefix, target.String(), err))
}
