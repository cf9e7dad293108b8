package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const gravatarURL = "https://secure.gravatar.com/avatar"

// リクエストの主体（ログインユーザー or 匿名）
type Principal interface {
	Can(perm Permission) bool
	IsAdministrator() bool
	IsAuthenticated() bool
}

type User struct {
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

	// RoleRepositoryで解決して詰める（DBには保存しない）
	Role *Role `gorm:"-"`
}

func (u *User) Can(perm Permission) bool {
	return u.Role != nil && u.Role.HasPermission(perm)
}

func (u *User) IsAdministrator() bool {
	return u.Can(PermissionAdmin)
}

func (u *User) IsAuthenticated() bool {
	return true
}

// emailを小文字にしたMD5
func (u *User) GravatarHash() string {
	sum := md5.Sum([]byte(strings.ToLower(u.Email)))
	return hex.EncodeToString(sum[:])
}

// 保存済みのハッシュがあればそれを使う
func (u *User) Gravatar(size int, def string, rating string) string {
	hash := u.AvatarHash
	if hash == "" {
		hash = u.GravatarHash()
	}
	return fmt.Sprintf("%s/%s?s=%d&d=%s&r=%s", gravatarURL, hash, size, def, rating)
}

// 未ログインの主体。何の権限も持たない
type AnonymousUser struct{}

func (AnonymousUser) Can(Permission) bool   { return false }
func (AnonymousUser) IsAdministrator() bool { return false }
func (AnonymousUser) IsAuthenticated() bool { return false }

var (
	_ Principal = (*User)(nil)
	_ Principal = AnonymousUser{}
)
