// Package db применяет встроенные goose-миграции при старте приложения.
package db

import (
	"embed"
	"fmt"

	// Регистрирует database/sql драйвер "pgx" для goose.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate накатывает все недостающие миграции поверх указанной БД.
func Migrate(dsn string) error {
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose: не удалось выбрать диалект: %w", err)
	}

	conn, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose: не удалось открыть соединение: %w", err)
	}
	defer conn.Close()

	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("goose: миграции не применились: %w", err)
	}
	return nil
}
