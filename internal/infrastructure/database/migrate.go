package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations trả về thư mục migrations embedded, root là các file .sql
func Migrations() (fs.FS, error) {
	return fs.Sub(migrationFiles, "migrations")
}

// Migrate apply các migration chưa chạy bằng goose.
// Mỗi migration chạy trong transaction riêng; session lock của Postgres chặn 2 instance migrate cùng lúc.
// Trả về tên các file vừa được apply.
func (db *PostgresDB) Migrate(ctx context.Context) ([]string, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	fsys, err := Migrations()
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return nil, fmt.Errorf("create migration lock: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys, goose.WithSessionLocker(locker))
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	applied := make([]string, 0, len(results))
	for _, r := range results {
		name := path.Base(r.Source.Path)
		log.Info().
			Str("migration", name).
			Dur("duration", r.Duration).
			Msg("[DATABASE] Migration applied")
		applied = append(applied, name)
	}
	return applied, nil
}
