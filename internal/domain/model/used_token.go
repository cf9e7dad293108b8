package model

import "time"

// 使用済みのワンタイムトークン（jti）
type UsedToken struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Purpose   string    `gorm:"type:varchar(32);not null" json:"purpose"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	UsedAt    time.Time `gorm:"not null" json:"used_at"`
}
