package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderListFilter struct {
	Page   int
	Limit  int
	UserID *int64
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	//管理者用の注文一覧
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
}
