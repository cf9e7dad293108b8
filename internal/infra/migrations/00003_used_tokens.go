package migrations

import (
	"time"

	"gorm.io/gorm"
)

type usedTokenV3 struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Purpose   string    `gorm:"type:varchar(32);not null"`
	UserID    int64     `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	UsedAt    time.Time `gorm:"not null"`
}

func (usedTokenV3) TableName() string { return "used_tokens" }

func upUsedTokens(tx *gorm.DB) error {
	return tx.Migrator().CreateTable(&usedTokenV3{})
}

func downUsedTokens(tx *gorm.DB) error {
	return tx.Migrator().DropTable(&usedTokenV3{})
}
