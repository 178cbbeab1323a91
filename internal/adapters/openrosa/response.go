package openrosa

import (
	"encoding/xml"
	"io"
	"strings"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// openRosaResponse is the XML document an OpenRosa server returns after a submission.
//
//	<OpenRosaResponse xmlns="http://openrosa.org/http/response">
//	  <message nature="submit_success">Thank you</message>
//	</OpenRosaResponse>
type openRosaResponse struct {
	XMLName xml.Name `xml:"OpenRosaResponse"`
	Message string   `xml:"message"`
}

// ParseResponseMessage returns the message of a well-formed OpenRosa response,
// or "" when the body is not one.
func ParseResponseMessage(contentType string, body io.Reader) string {
	if !strings.Contains(strings.ToLower(contentType), "xml") {
		return ""
	}

	var resp openRosaResponse
	if err := xml.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&resp); err != nil {
		return ""
	}
	return strings.TrimSpace(resp.Message)
}
