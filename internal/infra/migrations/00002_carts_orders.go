package migrations

import (
	"time"

	"gorm.io/gorm"
)

type cartV2 struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	UserID    int64   `gorm:"not null;index"`
	ProductID int64   `gorm:"not null"`
	Quantity  int64   `gorm:"not null"`
	Price     float64 `gorm:"not null"`
	Image     string  `gorm:"type:varchar(255)"`
	Title     string  `gorm:"type:varchar(255)"`
}

func (cartV2) TableName() string { return "carts" }

type orderV2 struct {
	OrderID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID         int64     `gorm:"not null;index"`
	UserName       string    `gorm:"type:varchar(64)"`
	AddressFirst   string    `gorm:"type:varchar(64)"`
	AddressLast    string    `gorm:"type:varchar(64)"`
	AddressZipcode string    `gorm:"type:varchar(64)"`
	AddressCity    string    `gorm:"type:varchar(64)"`
	AddressState   string    `gorm:"type:varchar(64)"`
	OrderCost      float64   `gorm:"not null"`
	ItemCount      int64     `gorm:"not null"`
	OrderStatus    string    `gorm:"type:varchar(64)"`
	PaymentStatus  string    `gorm:"type:varchar(64)"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (orderV2) TableName() string { return "orders" }

// cartsとordersはusersを外部キーで参照しない（注文はユーザー削除後も残す）
func upCartsOrders(tx *gorm.DB) error {
	return tx.Migrator().CreateTable(&cartV2{}, &orderV2{})
}

func downCartsOrders(tx *gorm.DB) error {
	return tx.Migrator().DropTable(&orderV2{}, &cartV2{})
}
