package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
)

type RoleGormRepository struct {
	db *gorm.DB
}

// DI
func NewRoleGormRepository(db *gorm.DB) *RoleGormRepository {
	return &RoleGormRepository{db: db}
}

func (r *RoleGormRepository) FindByID(ctx context.Context, roleID int64) (model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("id = ?", roleID).First(&role).Error
	if err != nil {
		return model.Role{}, translate(err)
	}
	return role, nil
}

func (r *RoleGormRepository) FindByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		return model.Role{}, translate(err)
	}
	return role, nil
}

// defaultが複数あってもIDの小さい方を返す
func (r *RoleGormRepository) FindDefault(ctx context.Context) (model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).
		Where(&model.Role{Default: true}).
		Order("id asc").
		First(&role).Error
	if err != nil {
		return model.Role{}, translate(err)
	}
	return role, nil
}

func (r *RoleGormRepository) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.WithContext(ctx).Order("id asc").Find(&roles).Error; err != nil {
		return []model.Role{}, err
	}
	return roles, nil
}

// permissionsが0やdefaultがfalseでも保存されるようSaveを使う
func (r *RoleGormRepository) Save(ctx context.Context, role *model.Role) error {
	return translate(r.db.WithContext(ctx).Save(role).Error)
}
