package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	// ユーザーのカート行（追加順）
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	Add(ctx context.Context, item *model.CartItem) error
	FindByID(ctx context.Context, itemID int64) (model.CartItem, error)
	DeleteByID(ctx context.Context, itemID int64) error
	// チェックアウト後に全行削除
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
}
