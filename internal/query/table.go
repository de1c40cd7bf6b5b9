// Package query turns client supplied search parameters into SQL predicates
// over a statically registered table, and runs counted, paged fetches.
package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
)

// Column is one field of a Table. Field is the client-facing name taken from
// the json tag, Name is the SQL column taken from the db tag.
type Column struct {
	Field    string
	Name     string
	Type     reflect.Type
	Hidden   bool // json:"-": selected but never searched or written by clients
	ReadOnly bool
	index    []int
}

// Table is the column registry of one resource, built once from the struct
// tags of T. Every SQL identifier the package emits comes from a Table.
type Table[T any] struct {
	name    string
	columns []Column
	byField map[string]int
	byName  map[string]int
}

// TableOption customizes NewTable.
type TableOption func(*tableConfig)

type tableConfig struct {
	readOnly []string
}

// ReadOnly marks client fields that may be read and searched but not updated.
func ReadOnly(fields ...string) TableOption {
	return func(c *tableConfig) { c.readOnly = append(c.readOnly, fields...) }
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// managed by the repository, never by clients
var systemColumns = map[string]bool{"id": true, "created_at": true, "updated_at": true}

// NewTable builds the registry for T. Only exported fields carrying a db tag
// become columns; T must have an "id" column.
func NewTable[T any](name string, opts ...TableOption) (*Table[T], error) {
	var cfg tableConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if !identRe.MatchString(name) {
		return nil, fmt.Errorf("table name %q is not a plain identifier", name)
	}
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("table %s: %s is not a struct", name, rt)
	}

	t := &Table[T]{name: name, byField: map[string]int{}, byName: map[string]int{}}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		col := tagName(f.Tag.Get("db"))
		if col == "" || col == "-" {
			continue
		}
		if !identRe.MatchString(col) {
			return nil, fmt.Errorf("table %s: column %q is not a plain identifier", name, col)
		}
		field := tagName(f.Tag.Get("json"))
		hidden := field == "-"
		if field == "" || hidden {
			field = f.Name
		}
		if _, dup := t.byField[field]; dup {
			return nil, fmt.Errorf("table %s: duplicate field %q", name, field)
		}
		if _, dup := t.byName[col]; dup {
			return nil, fmt.Errorf("table %s: duplicate column %q", name, col)
		}
		t.byField[field] = len(t.columns)
		t.byName[col] = len(t.columns)
		t.columns = append(t.columns, Column{
			Field:    field,
			Name:     col,
			Type:     f.Type,
			Hidden:   hidden,
			ReadOnly: systemColumns[col],
			index:    f.Index,
		})
	}
	if _, ok := t.byName["id"]; !ok {
		return nil, fmt.Errorf("table %s: missing id column", name)
	}
	for _, field := range cfg.readOnly {
		i, ok := t.byField[field]
		if !ok {
			return nil, fmt.Errorf("table %s: read-only field %q does not exist", name, field)
		}
		t.columns[i].ReadOnly = true
	}
	return t, nil
}

// MustTable is NewTable for package-level registries; it panics on a bad
// definition so typos surface at startup.
func MustTable[T any](name string, opts ...TableOption) *Table[T] {
	t, err := NewTable[T](name, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func (t *Table[T]) Name() string { return t.name }

// Columns returns the columns in struct order.
func (t *Table[T]) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks a column up by its client field name.
func (t *Table[T]) Column(field string) (Column, bool) {
	i, ok := t.byField[field]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// HasColumn reports whether name is a SQL column of the table.
func (t *Table[T]) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// SelectList renders the quoted column list for a SELECT.
func (t *Table[T]) SelectList() string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = quote(c.Name)
	}
	return strings.Join(names, ", ")
}

// QuotedName is the quoted table name.
func (t *Table[T]) QuotedName() string { return quote(t.name) }

// Values maps every column of v to its current value, keyed by SQL column.
func (t *Table[T]) Values(v *T) map[string]any {
	rv := reflect.ValueOf(v).Elem()
	out := make(map[string]any, len(t.columns))
	for _, c := range t.columns {
		out[c.Name] = rv.FieldByIndex(c.index).Interface()
	}
	return out
}

// Patch decodes a partial JSON object into SQL column values. Unknown,
// hidden and read-only fields, type mismatches and empty objects fail with
// apperr.ErrValidation.
func (t *Table[T]) Patch(body []byte) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", apperr.ErrValidation)
	}
	out := make(map[string]any, len(raw))
	for field, msg := range raw {
		col, ok := t.Column(field)
		if !ok || col.Hidden {
			return nil, fmt.Errorf("%w: unknown field %q", apperr.ErrValidation, field)
		}
		if col.ReadOnly {
			return nil, fmt.Errorf("%w: field %q is read-only", apperr.ErrValidation, field)
		}
		ptr := reflect.New(col.Type)
		if err := json.Unmarshal(msg, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", apperr.ErrValidation, field, err)
		}
		out[col.Name] = ptr.Elem().Interface()
	}
	return out, nil
}

func quote(ident string) string { return `"` + ident + `"` }
