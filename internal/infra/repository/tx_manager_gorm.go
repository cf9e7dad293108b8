package repository

import (
	"context"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	roles      repo.RoleRepository
	users      repo.UserRepository
	carts      repo.CartRepository
	orders     repo.OrderRepository
	usedTokens repo.UsedTokenRepository
}

func (r *txReposGorm) Roles() repo.RoleRepository           { return r.roles }
func (r *txReposGorm) Users() repo.UserRepository           { return r.users }
func (r *txReposGorm) Carts() repo.CartRepository           { return r.carts }
func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) UsedTokens() repo.UsedTokenRepository { return r.usedTokens }

func newRepos(db *gorm.DB) *txReposGorm {
	return &txReposGorm{
		roles:      NewRoleGormRepository(db),
		users:      NewUserGormRepository(db),
		carts:      NewCartGormRepository(db),
		orders:     NewOrderGormRepository(db),
		usedTokens: NewUsedTokenGormRepository(db),
	}
}

// トランザクション外で使うリポジトリ一式
func NewRepos(db *gorm.DB) repo.TxRepos {
	return newRepos(db)
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(newRepos(tx))
	})
}

var (
	_ repo.RoleRepository     = (*RoleGormRepository)(nil)
	_ repo.CartRepository     = (*CartGormRepository)(nil)
	_ repo.OrderRepository    = (*OrderGormRepository)(nil)
	_ repo.TransactionManager = (*TxManagerGorm)(nil)
)
