package model

import "time"

// 値の集合と遷移は決済側が決める（ここでは自由文字列）
const (
	OrderStatusPlaced    = "placed"
	PaymentStatusPending = "pending"
)

// チェックアウト時点のスナップショット。作成後は更新しない
type Order struct {
	OrderID        int64     `gorm:"primaryKey;autoIncrement" json:"order_id"`
	UserID         int64     `gorm:"not null;index" json:"user_id"`
	UserName       string    `gorm:"type:varchar(64)" json:"user_name"`
	AddressFirst   string    `gorm:"type:varchar(64)" json:"address_first"`
	AddressLast    string    `gorm:"type:varchar(64)" json:"address_last"`
	AddressZipcode string    `gorm:"type:varchar(64)" json:"address_zipcode"`
	AddressCity    string    `gorm:"type:varchar(64)" json:"address_city"`
	AddressState   string    `gorm:"type:varchar(64)" json:"address_state"`
	OrderCost      float64   `gorm:"not null" json:"order_cost"`
	ItemCount      int64     `gorm:"not null" json:"item_count"`
	OrderStatus    string    `gorm:"type:varchar(64)" json:"order_status"`
	PaymentStatus  string    `gorm:"type:varchar(64)" json:"payment_status"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 配送先（注文に非正規化して保存する）
type ShippingAddress struct {
	First   string `json:"first" validate:"required,max=64"`
	Last    string `json:"last" validate:"required,max=64"`
	Zipcode string `json:"zipcode" validate:"required,max=64"`
	City    string `json:"city" validate:"required,max=64"`
	State   string `json:"state" validate:"required,max=64"`
}
