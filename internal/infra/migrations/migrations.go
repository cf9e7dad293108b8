package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"storefront/internal/infra/db"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// バージョン順のスキーマ変更
func all(gdb *gorm.DB) []*goose.Migration {
	return []*goose.Migration{
		goose.NewGoMigration(1,
			&goose.GoFunc{RunTx: withGorm(gdb, upRolesUsers)},
			&goose.GoFunc{RunTx: withGorm(gdb, downRolesUsers)},
		),
		goose.NewGoMigration(2,
			&goose.GoFunc{RunTx: withGorm(gdb, upCartsOrders)},
			&goose.GoFunc{RunTx: withGorm(gdb, downCartsOrders)},
		),
		goose.NewGoMigration(3,
			&goose.GoFunc{RunTx: withGorm(gdb, upUsedTokens)},
			&goose.GoFunc{RunTx: withGorm(gdb, downUsedTokens)},
		),
	}
}

// gooseのトランザクション上でgormのMigratorを動かす
func withGorm(gdb *gorm.DB, fn func(tx *gorm.DB) error) func(context.Context, *sql.Tx) error {
	return func(ctx context.Context, sqlTx *sql.Tx) error {
		tx := gdb.Session(&gorm.Session{NewDB: true, SkipDefaultTransaction: true, Context: ctx})
		tx.Statement.ConnPool = sqlTx
		return fn(tx)
	}
}

func newProvider(gdb *gorm.DB) (*goose.Provider, error) {
	var dialect goose.Dialect
	switch db.Dialect(gdb) {
	case db.DialectSQLite:
		dialect = goose.DialectSQLite3
	case db.DialectPostgres:
		dialect = goose.DialectPostgres
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", db.Dialect(gdb))
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	return goose.NewProvider(dialect, sqlDB, nil,
		goose.WithGoMigrations(all(gdb)...),
		goose.WithDisableGlobalRegistry(true),
	)
}

// Up は未適用のマイグレーションをすべて適用する
func Up(ctx context.Context, gdb *gorm.DB, log *slog.Logger) error {
	p, err := newProvider(gdb)
	if err != nil {
		return err
	}

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	for _, r := range results {
		log.Info("migration applied",
			"version", r.Source.Version,
			"duration", r.Duration,
		)
	}
	return nil
}

// 現在のスキーマバージョン
func Version(ctx context.Context, gdb *gorm.DB) (int64, error) {
	p, err := newProvider(gdb)
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}

// Down は直近のマイグレーションを1つ戻す
func Down(ctx context.Context, gdb *gorm.DB) error {
	p, err := newProvider(gdb)
	if err != nil {
		return err
	}
	if _, err := p.Down(ctx); err != nil {
		return fmt.Errorf("migrations: down: %w", err)
	}
	return nil
}
