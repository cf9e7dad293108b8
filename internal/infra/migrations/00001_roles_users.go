package migrations

import (
	"time"

	"gorm.io/gorm"
)

// この版のスキーマ。モデルが変わってもここは変えない
type roleV1 struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Default     bool   `gorm:"not null;default:false;index"`
	Permissions int    `gorm:"not null;default:0"`
}

func (roleV1) TableName() string { return "roles" }

type userV1 struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Email        string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	RoleID       int64     `gorm:"index"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(128);not null"`
	Confirmed    bool      `gorm:"not null;default:false"`
	Name         string    `gorm:"type:varchar(64)"`
	Location     string    `gorm:"type:varchar(64)"`
	AboutMe      string    `gorm:"type:text"`
	MemberSince  time.Time `gorm:"not null"`
	LastSeen     time.Time `gorm:"not null"`
	AvatarHash   string    `gorm:"type:varchar(32)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userV1) TableName() string { return "users" }

func upRolesUsers(tx *gorm.DB) error {
	return tx.Migrator().CreateTable(&roleV1{}, &userV1{})
}

func downRolesUsers(tx *gorm.DB) error {
	return tx.Migrator().DropTable(&userV1{}, &roleV1{})
}
