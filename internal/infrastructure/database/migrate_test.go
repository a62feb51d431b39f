package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreGooseAnnotated(t *testing.T) {
	fsys, err := Migrations()
	require.NoError(t, err)

	names, err := fs.Glob(fsys, "*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{"000001_create_users_table.sql", "000002_create_podcasts_table.sql"}, names)

	for _, name := range names {
		body, err := fs.ReadFile(fsys, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}

	podcasts, err := fs.ReadFile(fsys, "000002_create_podcasts_table.sql")
	require.NoError(t, err)
	assert.Contains(t, string(podcasts), "episodes    JSONB")
	assert.Contains(t, string(podcasts), "REFERENCES users (id)")
}

func TestPoolStatsAvgAcquire(t *testing.T) {
	assert.Zero(t, PoolStats{}.AvgAcquire())
	assert.Equal(t, int64(5), int64(PoolStats{AcquireCount: 2, AcquireDuration: 10}.AvgAcquire()))
}

func TestUninitializedPool(t *testing.T) {
	db := NewPostgresDB(&DBConfig{DSN: "postgresql://localhost/db"})

	assert.Error(t, db.HealthCheck(t.Context()))
	_, err := db.Stats()
	assert.Error(t, err)
	_, err = db.Migrate(t.Context())
	assert.Error(t, err)

	db.Close()
}
