// Package vars extracts call-center correlation variables from the free-form
// variable blob the switch dial plan attaches to queue events.
package vars

import (
	"fmt"
	"strings"
)

// DefaultPrefix is the switch's custom-variable namespace. Only variables
// under this prefix are call-center correlation data; everything else in the
// blob belongs to the dial plan.
const DefaultPrefix = "QB_"

// ErrMalformed indicates a variable blob that cannot be parsed. The event
// carrying it should be dropped and logged, not crash the process.
var ErrMalformed = fmt.Errorf("malformed variable blob")

// Extractor parses correlation-variable blobs.
type Extractor struct {
	prefix string
}

// New creates an Extractor for the given variable-name prefix. An empty
// prefix selects DefaultPrefix.
func New(prefix string) *Extractor {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Extractor{prefix: prefix}
}

// Extract parses a comma-separated KEY=VALUE blob into a mapping keyed by
// the lower-cased variable name with the prefix stripped. The prefix match
// is case-insensitive; non-prefixed variables are skipped. Duplicate keys:
// last occurrence wins. The source format does not escape commas inside
// values, so a value containing a comma is split — a known limitation.
//
// A segment without '=' fails the whole extraction with ErrMalformed.
func (e *Extractor) Extract(blob string) (map[string]string, error) {
	out := make(map[string]string)
	if blob == "" {
		return out, nil
	}

	for _, segment := range strings.Split(blob, ",") {
		key, value, found := strings.Cut(segment, "=")
		if !found {
			return nil, fmt.Errorf("%w: segment %q has no '='", ErrMalformed, segment)
		}
		key = strings.TrimSpace(key)
		if len(key) < len(e.prefix) || !strings.EqualFold(key[:len(e.prefix)], e.prefix) {
			continue
		}
		out[strings.ToLower(key[len(e.prefix):])] = value
	}
	return out, nil
}
