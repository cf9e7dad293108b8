package usecase

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type RoleUsecase struct {
	tx repo.TransactionManager
}

func NewRoleUsecase(tx repo.TransactionManager) *RoleUsecase {
	return &RoleUsecase{tx: tx}
}

// InsertRoles は初期ロールを作成・更新する。何度実行しても結果は同じ。
func (u *RoleUsecase) InsertRoles(ctx context.Context) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, seed := range model.SeedRoles {
			role, err := r.Roles().FindByName(ctx, seed.Name)
			if errors.Is(err, repo.ErrNotFound) {
				role = model.Role{Name: seed.Name}
			} else if err != nil {
				return fmt.Errorf("find role %s: %w", seed.Name, err)
			}

			role.ResetPermissions()
			for _, perm := range seed.Permissions {
				role.AddPermission(perm)
			}
			role.Default = role.Name == model.DefaultRoleName

			if err := r.Roles().Save(ctx, &role); err != nil {
				return fmt.Errorf("save role %s: %w", seed.Name, err)
			}
		}
		return nil
	})
}

// 一覧（deployのログ用）
func (u *RoleUsecase) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		roles, err = r.Roles().List(ctx)
		return err
	})
	return roles, err
}
