package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type RoleRepository interface {
	FindByID(ctx context.Context, roleID int64) (model.Role, error)
	FindByName(ctx context.Context, name string) (model.Role, error)
	// default=trueのロール
	FindDefault(ctx context.Context) (model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	// IDが0なら作成、それ以外は更新
	Save(ctx context.Context, role *model.Role) error
}
