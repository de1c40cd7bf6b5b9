package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) Config {
	t.Helper()
	return Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "test.db")}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(Config{Driver: "oracle", DSN: "x"})
	assert.ErrorContains(t, err, `unsupported database driver "oracle"`)
}

func TestMigrateSQLite(t *testing.T) {
	cfg := openSQLite(t)
	db, err := Connect(cfg)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db.DB, cfg.Driver, nil))
	// idempotent
	require.NoError(t, Migrate(ctx, db.DB, cfg.Driver, nil))

	v, err := Version(ctx, db.DB, cfg.Driver)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	for _, table := range []string{"users", "albums", "tasks", "team_members"} {
		var n int
		require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table), table)
		assert.Zero(t, n)
	}

	require.NoError(t, Rollback(ctx, db.DB, cfg.Driver, nil))
	var n int
	err = db.Get(&n, "SELECT COUNT(*) FROM albums")
	assert.Error(t, err, "albums is dropped by the rollback")
}

func TestIsUniqueViolation(t *testing.T) {
	cfg := openSQLite(t)
	db, err := Connect(cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(context.Background(), db.DB, cfg.Driver, nil))

	insert := `INSERT INTO users (id, email, password, role, registered_at, created_at, updated_at)
		VALUES (?, ?, 'x', 'admin', ?, ?, ?)`
	now := time.Now().UTC()
	_, err = db.Exec(insert, "u1", "alice@x.com", now, now, now)
	require.NoError(t, err)
	_, err = db.Exec(insert, "u2", "alice@x.com", now, now, now)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create: %w", err)))

	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23502"}))
	assert.False(t, IsUniqueViolation(errors.New("duplicate key")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestPostgresDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "no session settings",
			cfg:  Config{DSN: "postgres://u:p@db:5432/app?sslmode=disable"},
			want: "postgres://u:p@db:5432/app?sslmode=disable",
		},
		{
			name: "url form",
			cfg: Config{
				DSN:            "postgres://u:p@db:5432/app?sslmode=disable",
				TimeZone:       "Asia/Shanghai",
				ClientEncoding: "UTF8",
			},
			want: "postgres://u:p@db:5432/app?client_encoding=UTF8&sslmode=disable&timezone=Asia%2FShanghai",
		},
		{
			name: "url form replaces an existing setting",
			cfg:  Config{DSN: "postgresql://db/app?timezone=UTC", TimeZone: "Europe/Paris"},
			want: "postgresql://db/app?timezone=Europe%2FParis",
		},
		{
			name: "key value form",
			cfg:  Config{DSN: "host=db dbname=app sslmode=disable", TimeZone: "UTC", ClientEncoding: "UTF8"},
			want: "host=db dbname=app sslmode=disable timezone='UTC' client_encoding='UTF8'",
		},
		{
			name: "key value values are escaped",
			cfg:  Config{DSN: "host=db", TimeZone: `it's\x`},
			want: `host=db timezone='it\'s\\x'`,
		},
		{
			name: "empty dsn",
			cfg:  Config{TimeZone: "UTC"},
			want: "timezone='UTC'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := postgresDSN(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := postgresDSN(Config{DSN: "postgres://db:port/app", TimeZone: "UTC"})
	assert.ErrorContains(t, err, "parse dsn")
}
