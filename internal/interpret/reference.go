// Package interpret implements the message interpretation engine: it
// extracts inline card references from free-form chat text, resolves them
// against the card catalog, and formats the results into platform-agnostic
// replies.
package interpret

// ReferenceKind distinguishes the two reference syntaxes.
type ReferenceKind string

const (
	// ByName is an exact-name lookup written with square brackets.
	ByName ReferenceKind = "name"
	// BySearch is a structured search query written with curly braces.
	BySearch ReferenceKind = "search"
)

// SortDir is an explicit sort direction on a search reference.
type SortDir string

const (
	// SortDefault leaves the direction to the catalog.
	SortDefault SortDir = ""
	// SortAsc sorts ascending.
	SortAsc SortDir = "asc"
	// SortDesc sorts descending.
	SortDesc SortDir = "desc"
)

// Reference is one parsed inline request for catalog data. Produced by
// Extract and consumed by the resolver; the query text is never empty
// (the extraction pattern enforces a minimum length).
type Reference struct {
	Kind ReferenceKind

	// Query is the enclosed text, untrimmed.
	Query string

	// Raw is the full matched source text, delimiters included. Used as
	// the telemetry label.
	Raw string

	// SortDir and SortKey are set only on search references carrying an
	// explicit sort specifier. An empty SortKey with a non-default SortDir
	// means "direction only, default key".
	SortDir SortDir
	SortKey string

	// Format is the output-format directive after the trailing colon, or
	// empty when absent.
	Format string
}
