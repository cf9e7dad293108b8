package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email/username重複はErrConflict）
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// ユーザー情報の更新（確認済み・パスワード・メール変更など）
	Update(ctx context.Context, user *model.User) error
	// last_seenだけ更新
	Touch(ctx context.Context, userID int64, at time.Time) error
}
