// Package teammember serves the team members resource.
package teammember

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/query"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/resource"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/teammember/entity"
)

var Table = query.MustTable[entity.TeamMember]("team_members")

var required = []string{"name", "status", "role"}

// Validate checks a new team member.
func Validate(m *entity.TeamMember) error {
	for i, v := range []string{m.Name, m.Status, m.Role} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is required", apperr.ErrValidation, required[i])
		}
	}
	if m.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", apperr.ErrValidation)
	}
	return nil
}

func validatePatch(values map[string]any) error {
	for _, col := range required {
		if v, ok := values[col].(string); ok && strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is required", apperr.ErrValidation, col)
		}
	}
	if v, ok := values["amount"].(float64); ok && v < 0 {
		return fmt.Errorf("%w: amount must not be negative", apperr.ErrValidation)
	}
	return nil
}

func NewService(db *sqlx.DB) *resource.Service[entity.TeamMember] {
	return resource.NewService(resource.NewRepo(db, Table),
		resource.WithValidator(Validate),
		resource.WithPatchValidator[entity.TeamMember](validatePatch),
	)
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *resource.Handler[entity.TeamMember] {
	return resource.NewHandler(NewService(db), logger)
}
