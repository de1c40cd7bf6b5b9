package resource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/query"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

// Service encapsulates CRUD rules for one resource and depends on a repo.
type Service[T any] struct {
	repo       *Repo[T]
	validate   func(*T) error
	checkPatch func(map[string]any) error
	now        func() time.Time
}

type Option[T any] func(*Service[T])

// WithValidator checks a new record before it is stored. Its error should
// wrap apperr.ErrValidation.
func WithValidator[T any](fn func(*T) error) Option[T] {
	return func(s *Service[T]) { s.validate = fn }
}

// WithPatchValidator checks decoded update values, keyed by SQL column,
// before they are written.
func WithPatchValidator[T any](fn func(map[string]any) error) Option[T] {
	return func(s *Service[T]) { s.checkPatch = fn }
}

func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Service[T]) { s.now = now }
}

func NewService[T any](r *Repo[T], opts ...Option[T]) *Service[T] {
	s := &Service[T]{repo: r, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service[T]) Table() *query.Table[T] { return s.repo.Table() }

// List returns one page of records matching spec.
func (s *Service[T]) List(ctx context.Context, spec query.SearchSpec, req query.PageRequest) (*query.PageResult[T], error) {
	return s.repo.List(ctx, spec, req)
}

// Get returns a record by id.
func (s *Service[T]) Get(ctx context.Context, id string) (*T, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", s.repo.Table().Name(), id, apperr.ErrNotFound)
		}
		return nil, s.repo.fail(err, "get")
	}
	return v, nil
}

// Create stores in under a fresh id and returns the stored record.
// Client supplied id and timestamps are ignored.
func (s *Service[T]) Create(ctx context.Context, in *T) (*T, error) {
	if s.validate != nil {
		if err := s.validate(in); err != nil {
			return nil, err
		}
	}
	t := s.repo.Table()
	values := t.Values(in)
	id := utilities.NewKSUID()
	values["id"] = id
	now := s.now().UTC()
	for _, c := range []string{"created_at", "updated_at"} {
		if t.HasColumn(c) {
			values[c] = now
		}
	}
	if err := s.repo.Insert(ctx, values); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update applies a partial JSON object to record id.
func (s *Service[T]) Update(ctx context.Context, id string, body []byte) (*T, error) {
	t := s.repo.Table()
	values, err := t.Patch(body)
	if err != nil {
		return nil, err
	}
	if s.checkPatch != nil {
		if err := s.checkPatch(values); err != nil {
			return nil, err
		}
	}
	if t.HasColumn("updated_at") {
		values["updated_at"] = s.now().UTC()
	}
	rows, err := s.repo.Update(ctx, id, values)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%s %s: %w", t.Name(), id, apperr.ErrNotFound)
	}
	return s.Get(ctx, id)
}

// Delete removes a record by id.
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", s.repo.Table().Name(), id, apperr.ErrNotFound)
	}
	return nil
}
