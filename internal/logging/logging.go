// Package logging はslogのロガーを環境ごとに組み立てる。
package logging

import (
	"io"
	"log/slog"
	"os"

	"storefront/internal/config"
)

// 本番系はJSON、それ以外はテキスト
func New(cfg config.Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

func NewWithWriter(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Debug {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h).With("app", "storefront", "env", cfg.Env)
}
