// Package album serves the albums resource.
package album

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/album/entity"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/query"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/resource"
)

var Table = query.MustTable[entity.Album]("albums")

// Validate checks a new album.
func Validate(a *entity.Album) error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	if a.DigitalDownloads != nil && *a.DigitalDownloads < 0 {
		return fmt.Errorf("%w: digitalDownloads must not be negative", apperr.ErrValidation)
	}
	return nil
}

func validatePatch(values map[string]any) error {
	if v, ok := values["title"].(string); ok && strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	if v, ok := values["digital_downloads"].(*float64); ok && v != nil && *v < 0 {
		return fmt.Errorf("%w: digitalDownloads must not be negative", apperr.ErrValidation)
	}
	return nil
}

func NewService(db *sqlx.DB) *resource.Service[entity.Album] {
	return resource.NewService(resource.NewRepo(db, Table),
		resource.WithValidator(Validate),
		resource.WithPatchValidator[entity.Album](validatePatch),
	)
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *resource.Handler[entity.Album] {
	return resource.NewHandler(NewService(db), logger)
}
