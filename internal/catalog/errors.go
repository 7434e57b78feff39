package catalog

import "errors"

// Sentinel errors for name resolution. Anything else returned by the
// client is a transport or decoding failure.
var (
	// ErrAmbiguous indicates the catalog matched multiple equally valid
	// cards for a name lookup.
	ErrAmbiguous = errors.New("catalog: ambiguous name")

	// ErrNotFound indicates the catalog matched no card.
	ErrNotFound = errors.New("catalog: no card found")
)

// apiError is the structured error payload returned by the catalog on
// non-2xx responses.
type apiError struct {
	Code    string `json:"code"`
	Type    string `json:"type"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}

// classify maps a structured error payload onto the resolution taxonomy.
// The catalog signals ambiguity as a not_found error of type "ambiguous";
// every other structured error means no card matched.
func (e *apiError) classify() error {
	if e.Code == "not_found" && e.Type == "ambiguous" {
		return ErrAmbiguous
	}
	return ErrNotFound
}
