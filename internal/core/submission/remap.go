package submission

import "net/url"

// URIRemap maps a submission URI to the URI it was resolved to by a same-host redirect.
// A remap is owned by a single submission pass and is not safe for concurrent use.
type URIRemap struct {
	entries map[string]*url.URL
}

// NewURIRemap creates an empty remap table.
func NewURIRemap() *URIRemap {
	return &URIRemap{entries: make(map[string]*url.URL)}
}

// Lookup returns the resolved URI for original, if an earlier probe recorded one.
func (m *URIRemap) Lookup(original *url.URL) (*url.URL, bool) {
	resolved, ok := m.entries[original.String()]
	if !ok {
		return nil, false
	}
	clone := *resolved
	return &clone, true
}

// Record stores the resolution of original.
func (m *URIRemap) Record(original, resolved *url.URL) {
	clone := *resolved
	m.entries[original.String()] = &clone
}

// Len returns the number of recorded resolutions.
func (m *URIRemap) Len() int {
	return len(m.entries)
}
