// Package task serves the tasks resource.
package task

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/query"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/resource"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/task/entity"
)

var Table = query.MustTable[entity.Task]("tasks")

var enums = []struct {
	column  string
	allowed []string
}{
	{"status", entity.Statuses},
	{"label", entity.Labels},
	{"priority", entity.Priorities},
}

func oneOf(field, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("%w: %s must be one of %s", apperr.ErrValidation, field, strings.Join(allowed, ", "))
	}
	return nil
}

// Validate checks a new task: every field is required and status, label and
// priority take their enumerated values.
func Validate(t *entity.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	if err := oneOf("status", t.Status, entity.Statuses); err != nil {
		return err
	}
	if err := oneOf("label", t.Label, entity.Labels); err != nil {
		return err
	}
	return oneOf("priority", t.Priority, entity.Priorities)
}

func validatePatch(values map[string]any) error {
	if v, ok := values["title"].(string); ok && strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	for _, e := range enums {
		if v, ok := values[e.column].(string); ok {
			if err := oneOf(e.column, v, e.allowed); err != nil {
				return err
			}
		}
	}
	return nil
}

func NewService(db *sqlx.DB) *resource.Service[entity.Task] {
	return resource.NewService(resource.NewRepo(db, Table),
		resource.WithValidator(Validate),
		resource.WithPatchValidator[entity.Task](validatePatch),
	)
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *resource.Handler[entity.Task] {
	return resource.NewHandler(NewService(db), logger)
}
