package resource

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/query"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/database"
)

// album mirrors the albums table created by the migrations.
type album struct {
	ID               string    `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Cover            *string   `json:"cover" db:"cover"`
	URL              *string   `json:"url" db:"url"`
	Slogan           *string   `json:"slogan" db:"slogan"`
	DigitalDownloads *float64  `json:"digitalDownloads" db:"digital_downloads"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

var albums = query.MustTable[album]("albums")

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	cfg := database.Config{Driver: database.DriverSQLite, DSN: filepath.Join(t.TempDir(), "resource.db")}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db.DB, cfg.Driver, nil))
	return db
}

func newAlbumService(t *testing.T, opts ...Option[album]) *Service[album] {
	t.Helper()
	opts = append([]Option[album]{WithClock[album](func() time.Time { return epoch })}, opts...)
	return NewService(NewRepo(openDB(t), albums), opts...)
}

func ptr[V any](v V) *V { return &v }
