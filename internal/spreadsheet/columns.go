package spreadsheet

import (
	"strings"

	apperrors "feedcli/internal/errors"
)

// ColumnRule assigns a role to the first header that satisfies it.
// A header matches when it contains every keyword in All and, if Any is
// non-empty, at least one keyword in Any. Matching is case-insensitive
// containment because the source workbooks come from different operators
// with inconsistent header text across file versions.
type ColumnRule struct {
	Role     string
	Any      []string
	All      []string
	Required bool
}

// Matches reports whether the trimmed header satisfies the rule.
func (r ColumnRule) Matches(header string) bool {
	h := strings.ToLower(header)
	if h == "" {
		return false
	}

	for _, kw := range r.All {
		if !strings.Contains(h, strings.ToLower(kw)) {
			return false
		}
	}

	if len(r.Any) == 0 {
		return true
	}
	for _, kw := range r.Any {
		if strings.Contains(h, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ColumnMap maps a role name to its column index in the header row.
type ColumnMap map[string]int

// Has reports whether the role was resolved.
func (m ColumnMap) Has(role string) bool {
	_, ok := m[role]
	return ok
}

// ResolveColumns evaluates the ordered rule list against the header row
// once. For each role the first matching column wins; later columns with
// the same match are ignored. A required rule that matches no column
// yields a MISSING_COLUMN error naming the available headers.
func ResolveColumns(headers []string, rules []ColumnRule) (ColumnMap, error) {
	columns := make(ColumnMap)

	for _, rule := range rules {
		if columns.Has(rule.Role) {
			continue
		}
		for idx, header := range headers {
			if rule.Matches(header) {
				columns[rule.Role] = idx
				break
			}
		}
		if rule.Required && !columns.Has(rule.Role) {
			return nil, apperrors.NewMissingColumnError(rule.Role, headers)
		}
	}

	return columns, nil
}
