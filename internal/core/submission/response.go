package submission

import (
	"fmt"
	"net/http"
)

// UploadResponseContext describes the server's answer to a submission POST.
type UploadResponseContext struct {
	StatusCode   int
	ReasonPhrase string

	// ServerMessage is the message of a well-formed OpenRosa response, empty otherwise.
	ServerMessage string
	URL           string
}

// EvaluateUploadResponse classifies the response to a submission POST.
// Only 201 and 202 count as success. A 200 usually means a captive portal answered.
func EvaluateUploadResponse(instanceID int64, ctx UploadResponseContext) Result {
	switch ctx.StatusCode {
	case http.StatusCreated, http.StatusAccepted:
		return NewResult(instanceID, KindSuccess).WithMessage(ctx.ServerMessage)
	case http.StatusOK:
		return NewResult(instanceID, KindHTTPNotAcceptedOrCreated).
			WithMessage(failPrefix + "Network login failure? Again?")
	case http.StatusUnauthorized:
		return NewResult(instanceID, KindHTTPNotAcceptedOrCreated).
			WithMessage(statusMessage(ctx))
	}

	if ctx.ServerMessage != "" {
		return NewResult(instanceID, KindHTTPNotAcceptedOrCreated).
			WithMessage(failPrefix + ctx.ServerMessage)
	}
	return NewResult(instanceID, KindHTTPNotAcceptedOrCreated).WithMessage(statusMessage(ctx))
}

func statusMessage(ctx UploadResponseContext) string {
	return fmt.Sprintf("%s%s (%d) at %s", failPrefix, ctx.ReasonPhrase, ctx.StatusCode, ctx.URL)
}

// TransportFailure builds the result for an I/O error during the upload.
func TransportFailure(instanceID int64, err error) Result {
	return NewResult(instanceID, KindGenericException).
		WithMessage("Generic Exception: " + err.Error())
}
