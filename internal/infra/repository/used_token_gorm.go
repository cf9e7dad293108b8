package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type usedTokenGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewUsedTokenGormRepository(db *gorm.DB) repo.UsedTokenRepository {
	return &usedTokenGormRepository{db: db}
}

// jtiを主キーで保存する。入らなかった＝再利用。
// 重複をエラーにするとPostgresではトランザクションごと中断されるのでDO NOTHINGで受ける
func (r *usedTokenGormRepository) MarkUsed(ctx context.Context, token model.UsedToken) (bool, error) {
	if token.UsedAt.IsZero() {
		token.UsedAt = time.Now()
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&token)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// 期限切れのものは再利用されても署名検証で落ちるので消してよい
func (r *usedTokenGormRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.UsedToken{})

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
