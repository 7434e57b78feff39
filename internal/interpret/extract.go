package interpret

import "regexp"

// The two reference syntaxes, in doubled-delimiter and either-delimiter
// variants. Enclosed text is at least 3 characters, matched lazily so
// adjacent references do not merge. Search references accept an optional
// sort specifier (a direction character plus an optional key) before the
// optional :directive suffix.
var (
	namePatternDouble = regexp.MustCompile(`\[{2}(.{3,}?)\]{2}(?::(\w+))?`)
	namePatternEither = regexp.MustCompile(`\[{1,2}(.{3,}?)\]{1,2}(?::(\w+))?`)

	searchPatternDouble = regexp.MustCompile(`\{{2}(.{3,}?)\}{2}([<>]\w*)?(?::(\w+))?`)
	searchPatternEither = regexp.MustCompile(`\{{1,2}(.{3,}?)\}{1,2}([<>]\w*)?(?::(\w+))?`)
)

// Extract scans text for card references. Name references and search
// references are scanned independently; each list preserves source order,
// and the returned slice lists every name reference before any search
// reference. allowSingleDelimiter additionally accepts single-character
// delimiters ([...] and {...}) alongside the doubled forms.
func Extract(text string, allowSingleDelimiter bool) []Reference {
	namePattern, searchPattern := namePatternDouble, searchPatternDouble
	if allowSingleDelimiter {
		namePattern, searchPattern = namePatternEither, searchPatternEither
	}

	var refs []Reference

	for _, m := range namePattern.FindAllStringSubmatch(text, -1) {
		refs = append(refs, Reference{
			Kind:   ByName,
			Query:  m[1],
			Raw:    m[0],
			Format: m[2],
		})
	}

	for _, m := range searchPattern.FindAllStringSubmatch(text, -1) {
		ref := Reference{
			Kind:   BySearch,
			Query:  m[1],
			Raw:    m[0],
			Format: m[3],
		}
		if sort := m[2]; sort != "" {
			switch sort[0] {
			case '<':
				ref.SortDir = SortAsc
			case '>':
				ref.SortDir = SortDesc
			}
			ref.SortKey = sort[1:]
		}
		refs = append(refs, ref)
	}

	return refs
}
