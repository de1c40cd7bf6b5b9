package query

import (
	"net/url"
	"sort"
	"strings"
)

// SearchSpec maps client field names to substrings to look for.
type SearchSpec map[string]string

// Pagination parameters never take part in filtering.
const (
	ParamPage     = "page"
	ParamPageSize = "pageSize"
)

// SearchSpecFromValues collects every query parameter except the pagination
// ones. Only the first value of a repeated key is used.
func SearchSpecFromValues(values url.Values) SearchSpec {
	spec := SearchSpec{}
	for key, vals := range values {
		if key == ParamPage || key == ParamPageSize || len(vals) == 0 {
			continue
		}
		spec[key] = vals[0]
	}
	return spec
}

// Predicate is a parameterized SQL boolean expression. The zero value
// matches every row.
type Predicate struct {
	conds []string
	args  []any
}

// MatchAll reports whether the predicate filters nothing.
func (p Predicate) MatchAll() bool { return len(p.conds) == 0 }

// Where renders the WHERE clause, including its leading space, with '?'
// placeholders. A MatchAll predicate renders as "".
func (p Predicate) Where() (string, []any) {
	if p.MatchAll() {
		return "", nil
	}
	args := make([]any, len(p.args))
	copy(args, p.args)
	return " WHERE " + strings.Join(p.conds, " OR "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BuildPredicate ORs a "column contains value" test for every entry of spec
// that names a visible column of t and has a non-empty value. A row matches
// when any test matches. Other entries are ignored. Both sides are lowered
// so matching ignores case on every driver.
func BuildPredicate[T any](t *Table[T], spec SearchSpec) Predicate {
	fields := make([]string, 0, len(spec))
	for field := range spec {
		fields = append(fields, field)
	}
	// stable SQL for identical specs
	sort.Strings(fields)

	var p Predicate
	for _, field := range fields {
		value := spec[field]
		if value == "" {
			continue
		}
		col, ok := t.Column(field)
		if !ok || col.Hidden {
			continue
		}
		p.conds = append(p.conds, "LOWER(CAST("+quote(col.Name)+` AS TEXT)) LIKE LOWER(?) ESCAPE '\'`)
		p.args = append(p.args, "%"+likeEscaper.Replace(value)+"%")
	}
	return p
}
