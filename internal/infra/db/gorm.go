package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Connect はDATABASE_URL形式の文字列からDBに接続して *gorm.DB を返す。
//
//	sqlite://              メモリDB（接続ごとに新しいDB）
//	sqlite:///data.sqlite  ファイル
//	postgres://...         PostgreSQL
func Connect(url string, log *slog.Logger, debug bool) (*gorm.DB, error) {
	dialector, memory, err := buildDialector(url)
	if err != nil {
		return nil, err
	}

	level := logger.Silent
	if debug {
		level = logger.Warn
	}
	gormLogger := logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("db: get sql.DB: %w", err)
	}
	if memory {
		//共有メモリDBは接続が全部閉じると消えるので、1本は常に残す
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	return gdb, nil
}

// 接続先の方言（goose の dialect 選択に使う）
func Dialect(gdb *gorm.DB) string {
	return gdb.Dialector.Name()
}

func buildDialector(url string) (gorm.Dialector, bool, error) {
	switch {
	case url == "sqlite://" || url == "sqlite://:memory:":
		dsn := fmt.Sprintf("file:mem-%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
		return sqlite.Open(dsn), true, nil
	case strings.HasPrefix(url, "sqlite:///"):
		path := strings.TrimPrefix(url, "sqlite:///")
		if path == "" {
			return nil, false, fmt.Errorf("db: sqlite path is empty")
		}
		return sqlite.Open(path + "?_busy_timeout=5000"), false, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), false, nil
	case strings.Contains(url, "host="):
		return postgres.Open(url), false, nil
	default:
		return nil, false, fmt.Errorf("db: unsupported database url %q", url)
	}
}
