package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type OrderUsecase struct {
	orders repo.OrderRepository
}

func NewOrderUsecase(orders repo.OrderRepository) *OrderUsecase {
	return &OrderUsecase{orders: orders}
}

type ShippingAddressOutput struct {
	First   string `json:"first"`
	Last    string `json:"last"`
	Zipcode string `json:"zipcode"`
	City    string `json:"city"`
	State   string `json:"state"`
}

type OrderResponse struct {
	OrderID       int64                 `json:"order_id"`
	UserID        int64                 `json:"user_id"`
	UserName      string                `json:"user_name"`
	Address       ShippingAddressOutput `json:"address"`
	OrderCost     float64               `json:"order_cost"`
	ItemCount     int64                 `json:"item_count"`
	OrderStatus   string                `json:"order_status"`
	PaymentStatus string                `json:"payment_status"`
	CreatedAt     time.Time             `json:"created_at"`
}

type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// 自分の注文一覧（新しい順）
func (u *OrderUsecase) ListMine(ctx context.Context, userID int64) ([]OrderResponse, error) {
	if userID <= 0 {
		return []OrderResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return []OrderResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out, nil
}

// 他人の注文は存在しない扱い
func (u *OrderUsecase) GetMine(ctx context.Context, userID int64, orderID int64) (OrderResponse, error) {
	if userID <= 0 {
		return OrderResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.UserID != userID {
		return OrderResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return toOrderResponse(o), nil
}

// 管理者用の全注文一覧
func (u *OrderUsecase) ListAll(ctx context.Context, f repo.OrderListFilter) (OrderListResponse, error) {
	if f.Page < 1 {
		return OrderListResponse{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListResponse{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	orders, total, err := u.orders.List(ctx, f)
	if err != nil {
		return OrderListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := OrderListResponse{
		Items: make([]OrderResponse, 0, len(orders)),
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	}
	for _, o := range orders {
		out.Items = append(out.Items, toOrderResponse(o))
	}
	return out, nil
}

func toOrderResponse(o model.Order) OrderResponse {
	return OrderResponse{
		OrderID:  o.OrderID,
		UserID:   o.UserID,
		UserName: o.UserName,
		Address: ShippingAddressOutput{
			First:   o.AddressFirst,
			Last:    o.AddressLast,
			Zipcode: o.AddressZipcode,
			City:    o.AddressCity,
			State:   o.AddressState,
		},
		OrderCost:     o.OrderCost,
		ItemCount:     o.ItemCount,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
	}
}
