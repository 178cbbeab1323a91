// Package submission contains the pure decision logic of the OpenRosa submission protocol.
// Nothing here touches the network, the filesystem or the database: callers feed in what they
// observed and act on the returned decision.
package submission

import "net/url"

const failPrefix = "Error: "

// DefaultSuccessMessage is shown for a successful upload when the server sent no usable message.
const DefaultSuccessMessage = "Success"

// Kind classifies the outcome of one instance upload.
type Kind string

const (
	KindHostNameNull             Kind = "HOST_NAME_NULL"
	KindURLError                 Kind = "URL_ERROR"
	KindAuthRequested            Kind = "AUTH_REQUESTED"
	KindUnexpectedRedirect       Kind = "UNEXPECTED_REDIRECT"
	KindURIParseError            Kind = "URI_PARSE_ERROR"
	KindInvalidHeadStatus        Kind = "INVALID_HEAD_STATUS"
	KindHeadRequestException     Kind = "HEAD_REQUEST_EXCEPTION"
	KindSubmissionXMLInexistent  Kind = "SUBMISSION_XML_INEXISTENT"
	KindNoFilesInParentDir       Kind = "NO_FILES_IN_PARENT_DIR"
	KindHTTPNotAcceptedOrCreated Kind = "HTTP_NOT_ACCEPTED_OR_CREATED"
	KindGenericException         Kind = "GENERIC_EXCEPTION"
	KindSuccess                  Kind = "SUCCESS"
)

var fallbackMessages = map[Kind]string{
	KindHostNameNull:             failPrefix + "Host name may not be null",
	KindURLError:                 failPrefix + "Invalid submission URL",
	KindAuthRequested:            "Authorization requested",
	KindUnexpectedRedirect:       failPrefix + "Unexpected redirection attempt to a different host",
	KindURIParseError:            "Exception thrown parsing URI",
	KindInvalidHeadStatus:        failPrefix + "Invalid status code on HEAD request.  If you have a web proxy, you may need to login to your network. ",
	KindHeadRequestException:     failPrefix + "Exception performing HEAD request.",
	KindSubmissionXMLInexistent:  failPrefix + "instance XML file does not exist!",
	KindNoFilesInParentDir:       failPrefix + "no files in parent directory",
	KindHTTPNotAcceptedOrCreated: failPrefix + "HTTP response code not expected",
	KindGenericException:         failPrefix + "Generic exception",
	KindSuccess:                  DefaultSuccessMessage,
}

// FallbackMessage returns the generic message used when no custom message is attached.
func (k Kind) FallbackMessage() string {
	return fallbackMessages[k]
}

// IsFatal reports whether the kind halts the remaining queue of a submission pass.
func (k Kind) IsFatal() bool {
	return k == KindAuthRequested
}

// IsSuccess reports whether the kind is the terminal positive outcome.
func (k Kind) IsSuccess() bool {
	return k == KindSuccess
}

// PersistsFailure reports whether reaching this kind marks the instance as submission-failed.
// An auth challenge leaves the status alone so the instance is retried once credentials exist.
func (k Kind) PersistsFailure() bool {
	return k != KindSuccess && k != KindAuthRequested
}

// Result is the outcome of one upload attempt.
type Result struct {
	InstanceID    int64
	Kind          Kind
	CustomMessage string

	// AuthRequestingURI is the server that asked for credentials. It can differ from the
	// configured server because of a redirect, so it is what the user must be shown.
	AuthRequestingURI *url.URL
}

// NewResult creates a result with the fallback message for its kind.
func NewResult(instanceID int64, kind Kind) Result {
	return Result{InstanceID: instanceID, Kind: kind}
}

// WithMessage returns a copy of the result carrying a custom message.
func (r Result) WithMessage(msg string) Result {
	r.CustomMessage = msg
	return r
}

// DisplayMessage returns the custom message if there is one, the fallback otherwise.
func (r Result) DisplayMessage() string {
	if r.CustomMessage != "" {
		return r.CustomMessage
	}
	return r.Kind.FallbackMessage()
}

// IsFatal reports whether the result halts the pass.
func (r Result) IsFatal() bool { return r.Kind.IsFatal() }

// IsSuccess reports whether the upload succeeded.
func (r Result) IsSuccess() bool { return r.Kind.IsSuccess() }
