// Package importer reads the named source artifacts into memory.
// Column resolution goes through an explicit, versioned schema-mapping
// table per source: a canonical field maps to the list of acceptable
// source headers, resolved once at load time, with a hard failure when
// a required field matches nothing.
package importer

import (
	"strings"

	pipeerr "fbpanel/internal/errors"
)

// Field declares one canonical column of a source schema.
type Field struct {
	Name     string
	Accepted []string // acceptable source headers, in priority order
	Optional bool
}

// SchemaMapping is the versioned header contract of one source.
type SchemaMapping struct {
	Version int
	Fields  []Field
}

// Resolve maps canonical field names to column indexes in headers.
// Header comparison is case-insensitive and ignores surrounding
// whitespace. Unmatched required fields produce a SchemaMismatchError;
// unmatched optional fields are simply absent from the result.
func (m SchemaMapping) Resolve(source string, headers []string) (map[string]int, error) {
	normalized := make(map[string]int, len(headers))
	for i, h := range headers {
		normalized[normalize(h)] = i
	}

	columns := make(map[string]int, len(m.Fields))
	var missing []string
	for _, f := range m.Fields {
		found := false
		for _, accepted := range f.Accepted {
			if idx, ok := normalized[normalize(accepted)]; ok {
				columns[f.Name] = idx
				found = true
				break
			}
		}
		if !found && !f.Optional {
			missing = append(missing, f.Name)
		}
	}

	if len(missing) > 0 {
		return nil, &pipeerr.SchemaMismatchError{Source: source, Version: m.Version, Missing: missing}
	}
	return columns, nil
}

func normalize(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
