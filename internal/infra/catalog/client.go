// Package catalog は外部の商品カタログAPI（fakestoreapi互換）から商品情報を取る。
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	http *resty.Client
}

// baseURLは https://fakestoreapi.com/products/ の形（末尾に商品IDをつなげる）
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)

	//5xxだけリトライ
	c.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= http.StatusInternalServerError
	})

	return &Client{http: c}
}

// FindByID は商品IDで1件取る。無ければrepository.ErrNotFound
func (c *Client) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	var p model.Product

	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&p).
		Get("/" + strconv.FormatInt(productID, 10))
	if err != nil {
		metrics.CatalogLookups.WithLabelValues("error").Inc()
		return model.Product{}, fmt.Errorf("catalog: get product %d: %w", productID, err)
	}

	switch {
	case res.StatusCode() == http.StatusNotFound:
		metrics.CatalogLookups.WithLabelValues("not_found").Inc()
		return model.Product{}, repo.ErrNotFound
	case res.IsError():
		metrics.CatalogLookups.WithLabelValues("error").Inc()
		return model.Product{}, fmt.Errorf("catalog: get product %d: status %d", productID, res.StatusCode())
	}

	//fakestoreapiは存在しないIDに200で空bodyを返す
	if p.ID == 0 {
		metrics.CatalogLookups.WithLabelValues("not_found").Inc()
		return model.Product{}, repo.ErrNotFound
	}

	metrics.CatalogLookups.WithLabelValues("ok").Inc()
	return p, nil
}

var _ repo.ProductRepository = (*Client)(nil)
