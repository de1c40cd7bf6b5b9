package resource

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/oops"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/query"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/database"
)

// Repo is the sqlx repository of one table. Column names come from the
// table registry only, values are always bound.
type Repo[T any] struct {
	db    *sqlx.DB
	table *query.Table[T]
}

func NewRepo[T any](db *sqlx.DB, t *query.Table[T]) *Repo[T] {
	return &Repo[T]{db: db, table: t}
}

func (r *Repo[T]) Table() *query.Table[T] { return r.table }

func (r *Repo[T]) fail(err error, op string) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%s %s: %w", op, r.table.Name(), apperr.ErrConflict)
	}
	return oops.In("resource_repo").With("table", r.table.Name()).Wrapf(err, "%s", op)
}

// List returns one page of the rows matching spec.
func (r *Repo[T]) List(ctx context.Context, spec query.SearchSpec, req query.PageRequest) (*query.PageResult[T], error) {
	return query.Paginate(ctx, r.db, r.table, query.BuildPredicate(r.table, spec), req)
}

// GetByID returns sql.ErrNoRows when id does not exist.
func (r *Repo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	q := r.db.Rebind(`SELECT ` + r.table.SelectList() + ` FROM ` + r.table.QuotedName() + ` WHERE "id" = ?`)
	var v T
	if err := r.db.GetContext(ctx, &v, q, id); err != nil {
		return nil, err
	}
	return &v, nil
}

// sortedColumns returns the keys of values in a fixed order, rejecting any
// that is not a column of the table.
func (r *Repo[T]) sortedColumns(values map[string]any) ([]string, error) {
	cols := make([]string, 0, len(values))
	for c := range values {
		if !r.table.HasColumn(c) {
			return nil, fmt.Errorf("table %s has no column %q", r.table.Name(), c)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols, nil
}

// Insert writes one row from column values.
func (r *Repo[T]) Insert(ctx context.Context, values map[string]any) error {
	cols, err := r.sortedColumns(values)
	if err != nil {
		return err
	}
	quoted := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = `"` + c + `"`
		args[i] = values[c]
	}
	q := r.db.Rebind(`INSERT INTO ` + r.table.QuotedName() + ` (` + strings.Join(quoted, ", ") +
		`) VALUES (` + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + `)`)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return r.fail(err, "insert")
	}
	return nil
}

// Update sets the given columns on row id and returns the affected row count.
func (r *Repo[T]) Update(ctx context.Context, id string, values map[string]any) (int64, error) {
	cols, err := r.sortedColumns(values)
	if err != nil {
		return 0, err
	}
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = `"` + c + `" = ?`
		args = append(args, values[c])
	}
	args = append(args, id)
	q := r.db.Rebind(`UPDATE ` + r.table.QuotedName() + ` SET ` + strings.Join(sets, ", ") + ` WHERE "id" = ?`)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, r.fail(err, "update")
	}
	return res.RowsAffected()
}

// Delete removes row id and returns the affected row count.
func (r *Repo[T]) Delete(ctx context.Context, id string) (int64, error) {
	q := r.db.Rebind(`DELETE FROM ` + r.table.QuotedName() + ` WHERE "id" = ?`)
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, r.fail(err, "delete")
	}
	return res.RowsAffected()
}
