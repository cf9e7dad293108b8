package model

// 外部カタログの商品（DBには持たない。カート追加時にスナップショットする）
type Product struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}
