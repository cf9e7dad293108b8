package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// ワンタイムトークンの使用記録
type UsedTokenRepository interface {
	// 初回ならtrue。すでに使われていればfalse
	MarkUsed(ctx context.Context, token model.UsedToken) (bool, error)
	// 期限切れの記録を削除して件数を返す
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
