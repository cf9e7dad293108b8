package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジック。
// 同じ商品を追加しても行はまとめず、チェックアウトで注文1件に変換する。
type CartUsecase struct {
	tx        repo.TransactionManager
	carts     repo.CartRepository
	products  repo.ProductRepository
	validator CheckoutValidator
}

func NewCartUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	products repo.ProductRepository,
	validator CheckoutValidator,
) *CartUsecase {
	return &CartUsecase{
		tx:        tx,
		carts:     carts,
		products:  products,
		validator: validator,
	}
}

type CartItemResponse struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
}

type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int64              `json:"item_count"`
	Total     float64            `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

// カートの中身
func (u *CartUsecase) ListCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCartResponse(ctx, userID)
}

// AddToCart はカタログから商品情報を取り、価格をスナップショットして1行追加する
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.products.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusBadGateway, "catalog unavailable")
	}

	item := &model.CartItem{
		UserID:    userID,
		ProductID: p.ID,
		Quantity:  in.Quantity,
		Price:     p.Price,
		Image:     p.Image,
		Title:     p.Title,
	}
	if err := u.carts.Add(ctx, item); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 明細削除（他人の明細は404）
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, itemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := u.carts.FindByID(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if item.UserID != userID {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.carts.DeleteByID(ctx, itemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// Checkout はカートの全行から注文を1件作り、カートを空にする
func (u *CartUsecase) Checkout(ctx context.Context, user *model.User, addr model.ShippingAddress) (OrderResponse, error) {
	if user == nil || user.ID <= 0 {
		return OrderResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.validator.ValidateAddress(ctx, addr); err != nil {
		return OrderResponse{}, err
	}

	var out OrderResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := r.Carts().ListByUserID(ctx, user.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		count, cost := cartTotals(items)

		order := &model.Order{
			UserID:         user.ID,
			UserName:       user.Username,
			AddressFirst:   addr.First,
			AddressLast:    addr.Last,
			AddressZipcode: addr.Zipcode,
			AddressCity:    addr.City,
			AddressState:   addr.State,
			OrderCost:      cost.InexactFloat64(),
			ItemCount:      count,
			OrderStatus:    model.OrderStatusPlaced,
			PaymentStatus:  model.PaymentStatusPending,
		}
		if err := r.Orders().Create(ctx, order); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if _, err := r.Carts().DeleteByUserID(ctx, user.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderResponse(*order)
		return nil
	})
	if err != nil {
		if he, ok := AsHTTPError(err); ok && he.Status == http.StatusBadRequest {
			metrics.Checkouts.WithLabelValues("empty").Inc()
		}
		return OrderResponse{}, err
	}

	metrics.Checkouts.WithLabelValues("ok").Inc()
	return out, nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	items, err := u.carts.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := CartResponse{Items: make([]CartItemResponse, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Title:     it.Title,
			Image:     it.Image,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	count, cost := cartTotals(items)
	out.ItemCount = count
	out.Total = cost.InexactFloat64()
	return out, nil
}

// 個数は数量の合計、金額は 単価×数量 の合計（小数点以下2桁）
func cartTotals(items []model.CartItem) (int64, decimal.Decimal) {
	var count int64
	cost := decimal.Zero
	for _, it := range items {
		count += it.Quantity
		cost = cost.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(it.Quantity)))
	}
	return count, cost.Round(2)
}
