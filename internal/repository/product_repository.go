package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 商品カタログ（外部API）の参照
type ProductRepository interface {
	// 存在しなければErrNotFound
	FindByID(ctx context.Context, productID int64) (model.Product, error)
}
