package query

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
)

// Queryer is satisfied by *sqlx.DB and *sqlx.Tx.
type Queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// PageRequest selects one page. Page is zero-based: the page starts at
// row Page*PageSize.
type PageRequest struct {
	Page     int
	PageSize int
}

// Page request defaults when the client omits a parameter. MaxPageSize
// bounds a single page; larger requests are rejected.
const (
	DefaultPage     = 0
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// PageRequestFromValues reads page and pageSize from a query string. Missing
// or empty values take the defaults; anything else must be an integer.
func PageRequestFromValues(values url.Values) (PageRequest, error) {
	req := PageRequest{Page: DefaultPage, PageSize: DefaultPageSize}
	for key, dst := range map[string]*int{ParamPage: &req.Page, ParamPageSize: &req.PageSize} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return PageRequest{}, fmt.Errorf("%w: %s must be an integer", apperr.ErrValidation, key)
		}
		*dst = n
	}
	return req, req.validate()
}

// Offset is the number of rows skipped before the page.
func (r PageRequest) Offset() int { return r.Page * r.PageSize }

func (r PageRequest) validate() error {
	if r.PageSize <= 0 {
		return fmt.Errorf("%w: pageSize must be greater than 0", apperr.ErrValidation)
	}
	if r.PageSize > MaxPageSize {
		return fmt.Errorf("%w: pageSize must not exceed %d", apperr.ErrValidation, MaxPageSize)
	}
	if r.Page < 0 {
		return fmt.Errorf("%w: page must not be negative", apperr.ErrValidation)
	}
	// Offset must fit in an int.
	if r.Page > math.MaxInt/r.PageSize {
		return fmt.Errorf("%w: page is out of range", apperr.ErrValidation)
	}
	return nil
}

// PageResult is one page of rows plus the totals for the whole filter.
type PageResult[T any] struct {
	Data       []T
	Total      int
	TotalPages int
}

// TotalPages is ceil(total/pageSize), or 0 when pageSize is not positive.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate counts the rows of t matching pred and fetches one page of them
// ordered by id. The count and the fetch run concurrently.
func Paginate[T any](ctx context.Context, db Queryer, t *Table[T], pred Predicate, req PageRequest) (*PageResult[T], error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	where, args := pred.Where()
	countQ := db.Rebind("SELECT COUNT(*) FROM " + t.QuotedName() + where)
	fetchQ := db.Rebind("SELECT " + t.SelectList() + " FROM " + t.QuotedName() + where +
		` ORDER BY "id" LIMIT ? OFFSET ?`)
	fetchArgs := append(append(make([]any, 0, len(args)+2), args...), req.PageSize, req.Offset())

	var (
		total int
		data  = []T{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sqlx.GetContext(gctx, db, &total, countQ, args...); err != nil {
			return oops.In("query").With("table", t.Name()).Wrapf(err, "count rows")
		}
		return nil
	})
	g.Go(func() error {
		if err := sqlx.SelectContext(gctx, db, &data, fetchQ, fetchArgs...); err != nil {
			return oops.In("query").With("table", t.Name()).Wrapf(err, "fetch page")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &PageResult[T]{
		Data:       data,
		Total:      total,
		TotalPages: TotalPages(total, req.PageSize),
	}, nil
}
