package main

import (
	"log/slog"
	"time"

	"storefront/internal/config"
	"storefront/internal/infra/catalog"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logging"
	"storefront/internal/token"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const catalogTimeout = 10 * time.Second

// コマンド共通の部品
type app struct {
	cfg config.Config
	log *slog.Logger
	db  *gorm.DB

	accounts *usecase.AccountUsecase
	roles    *usecase.RoleUsecase
	carts    *usecase.CartUsecase
	orders   *usecase.OrderUsecase
}

func bootstrap(cmd *cobra.Command) (*app, error) {
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.LoadDotenv(envFile)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg)

	//DB接続
	gdb, err := db.Connect(cfg.DatabaseURL, log, cfg.Debug)
	if err != nil {
		return nil, err
	}

	return newApp(cfg, log, gdb), nil
}

func newApp(cfg config.Config, log *slog.Logger, gdb *gorm.DB) *app {
	//Repository（GORM実装）生成
	repos := infraRepo.NewRepos(gdb)
	tx := infraRepo.NewTxManagerGorm(gdb)

	//usecaseに渡す部品
	v := validator.New()
	products := catalog.NewClient(cfg.CatalogAPI, catalogTimeout)

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(bcrypt.DefaultCost)
	verifier := usecase.NewBcryptPasswordVerifier()

	//Usecase生成
	accounts := usecase.NewAccountUsecase(
		cfg,
		repos.Users(),
		repos.Roles(),
		tx,
		token.NewSerializer(cfg.SecretKey),
		hasher,
		verifier,
		v,
		usecase.NewLogNotifier(log),
		usecase.SystemClock{},
		log,
	)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       gdb,
		accounts: accounts,
		roles:    usecase.NewRoleUsecase(tx),
		carts:    usecase.NewCartUsecase(tx, repos.Carts(), products, v),
		orders:   usecase.NewOrderUsecase(repos.Orders()),
	}
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
