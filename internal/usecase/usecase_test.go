package usecase_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/dbtest"
	infrarepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/token"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// =====================
// Mocks
// =====================

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Send(ctx context.Context, msg usecase.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

var _ repo.ProductRepository = (*ProductRepoMock)(nil)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// =====================
// helper
// =====================

type env struct {
	db       *gorm.DB
	cfg      config.Config
	repos    repo.TxRepos
	tx       repo.TransactionManager
	tokens   *token.Serializer
	clock    *fixedClock
	notifier *NotifierMock
	accounts *usecase.AccountUsecase
	roles    *usecase.RoleUsecase
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb := dbtest.New(t)
	cfg := config.Config{
		SecretKey:         "test-secret",
		TokenTTL:          time.Hour,
		AdminEmail:        "admin@example.com",
		Domain:            "http://shop.test",
		MailSubjectPrefix: "[BuyYourStuffHere]",
	}
	clock := &fixedClock{now: time.Now()}
	tokens := token.NewSerializer(cfg.SecretKey)
	repos := infrarepo.NewRepos(gdb)
	tx := infrarepo.NewTxManagerGorm(gdb)
	notifier := &NotifierMock{}
	v := validator.New()

	accounts := usecase.NewAccountUsecase(
		cfg,
		repos.Users(),
		repos.Roles(),
		tx,
		tokens,
		usecase.NewBcryptPasswordHasher(bcrypt.MinCost),
		usecase.NewBcryptPasswordVerifier(),
		v,
		notifier,
		clock,
		dbtest.Logger(),
	)

	return &env{
		db:       gdb,
		cfg:      cfg,
		repos:    repos,
		tx:       tx,
		tokens:   tokens,
		clock:    clock,
		notifier: notifier,
		accounts: accounts,
		roles:    usecase.NewRoleUsecase(tx),
	}
}

// ロールを入れてユーザーを1人登録する
func (e *env) register(t *testing.T, email, username, password string) *model.User {
	t.Helper()
	ctx := context.Background()

	e.notifier.On("Send", mock.Anything, mock.MatchedBy(func(m usecase.Message) bool {
		return m.To == email
	})).Return(nil).Once()

	_, err := e.accounts.Register(ctx, usecase.RegisterInput{Email: email, Username: username, Password: password})
	require.NoError(t, err)

	u, err := e.accounts.Authenticate(ctx, e.sessionToken(t, email, password))
	require.NoError(t, err)
	return u
}

func (e *env) sessionToken(t *testing.T, email, password string) string {
	t.Helper()
	out, err := e.accounts.Login(context.Background(), usecase.LoginInput{Email: email, Password: password})
	require.NoError(t, err)
	return out.Token.AccessToken
}

func (e *env) seedRoles(t *testing.T) {
	t.Helper()
	require.NoError(t, e.roles.InsertRoles(context.Background()))
}
