// Package dbtest はテスト用のマイグレーション済みメモリDBを用意する。
package dbtest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"storefront/internal/infra/db"
	"storefront/internal/infra/migrations"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// テストごとに独立したsqliteメモリDB
func New(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Connect("sqlite://", Logger(), false)
	require.NoError(t, err)

	require.NoError(t, migrations.Up(context.Background(), gdb, Logger()))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
