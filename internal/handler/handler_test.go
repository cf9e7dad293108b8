package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/dbtest"
	infrarepo "storefront/internal/infra/repository"
	"storefront/internal/middleware"
	repo "storefront/internal/repository"
	"storefront/internal/token"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// fakes
// =====================

// 送ったメールを覚えておく
type mailbox struct {
	sent []usecase.Message
}

func (m *mailbox) Send(ctx context.Context, msg usecase.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

// 最後に送ったメールのリンクからトークンを抜く
func (m *mailbox) lastToken(t *testing.T, to string, prefix string) string {
	t.Helper()
	for i := len(m.sent) - 1; i >= 0; i-- {
		msg := m.sent[i]
		if msg.To == to && strings.HasPrefix(msg.Link, prefix) {
			return strings.TrimPrefix(msg.Link, prefix)
		}
	}
	t.Fatalf("no mail to %s with %s", to, prefix)
	return ""
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

// =====================
// app
// =====================

const domain = "http://shop.test"

type app struct {
	e        *echo.Echo
	repos    repo.TxRepos
	mails    *mailbox
	products *ProductRepoMock
}

func newApp(t *testing.T) *app {
	t.Helper()

	gdb := dbtest.New(t)
	cfg := config.Config{
		SecretKey:         "test-secret",
		TokenTTL:          time.Hour,
		AdminEmail:        "admin@example.com",
		Domain:            domain,
		MailSubjectPrefix: "[BuyYourStuffHere]",
	}
	repos := infrarepo.NewRepos(gdb)
	tx := infrarepo.NewTxManagerGorm(gdb)
	mails := &mailbox{}
	products := &ProductRepoMock{}
	v := validator.New()

	require.NoError(t, usecase.NewRoleUsecase(tx).InsertRoles(context.Background()))

	accounts := usecase.NewAccountUsecase(
		cfg,
		repos.Users(),
		repos.Roles(),
		tx,
		token.NewSerializer(cfg.SecretKey),
		usecase.NewBcryptPasswordHasher(bcrypt.MinCost),
		usecase.NewBcryptPasswordVerifier(),
		v,
		mails,
		usecase.SystemClock{},
		dbtest.Logger(),
	)
	carts := usecase.NewCartUsecase(tx, repos.Carts(), products, v)
	orders := usecase.NewOrderUsecase(repos.Orders())

	e := echo.New()
	e.Use(middleware.Session(accounts, dbtest.Logger()))
	handler.NewAuthHandler(accounts).RegisterRoutes(e)
	handler.NewCartHandler(carts).RegisterRoutes(e)
	handler.NewOrderHandler(orders).RegisterRoutes(e)
	handler.NewAdminOrderHandler(orders).RegisterRoutes(e)
	handler.RegisterSecretRoute(e)

	return &app{e: e, repos: repos, mails: mails, products: products}
}

func (a *app) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// 登録してログインし、アクセストークンを返す
func (a *app) signup(t *testing.T, email, username string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "username": username, "password": "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return a.login(t, email, "password1")
}

func (a *app) login(t *testing.T, email, password string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[usecase.LoginOutput](t, rec).Token.AccessToken
}

// 確認メールのリンクを踏む
func (a *app) confirm(t *testing.T, email, access string) {
	t.Helper()

	raw := a.mails.lastToken(t, email, domain+"/auth/confirm/")
	rec := a.do(t, http.MethodGet, "/auth/confirm/"+raw, access, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
