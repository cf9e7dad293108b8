package model

// カートに入っている商品1行
// 同じ商品でも行はまとめない（重複可）
type CartItem struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64   `gorm:"not null;index" json:"user_id"`
	ProductID int64   `gorm:"not null" json:"product_id"`
	Quantity  int64   `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`
	Image     string  `gorm:"type:varchar(255)" json:"image"`
	Title     string  `gorm:"type:varchar(255)" json:"title"`
}

func (CartItem) TableName() string { return "carts" }
