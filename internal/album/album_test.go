package album

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/album/entity"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(&entity.Album{Title: "Blue Train"}))
	assert.ErrorIs(t, Validate(&entity.Album{}), apperr.ErrValidation)

	negative := -1.0
	assert.ErrorIs(t, Validate(&entity.Album{Title: "x", DigitalDownloads: &negative}), apperr.ErrValidation)
}

func TestValidatePatch(t *testing.T) {
	negative, zero := -2.0, 0.0
	assert.NoError(t, validatePatch(map[string]any{"slogan": nil}))
	assert.NoError(t, validatePatch(map[string]any{"digital_downloads": &zero}))
	assert.NoError(t, validatePatch(map[string]any{"digital_downloads": (*float64)(nil)}))
	assert.ErrorIs(t, validatePatch(map[string]any{"title": ""}), apperr.ErrValidation)
	assert.ErrorIs(t, validatePatch(map[string]any{"digital_downloads": &negative}), apperr.ErrValidation)
}

func TestTableSelectList(t *testing.T) {
	assert.Equal(t, `"id", "title", "cover", "url", "slogan", "digital_downloads", "created_at", "updated_at"`, Table.SelectList())
}
