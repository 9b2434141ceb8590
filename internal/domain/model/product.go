package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品。価格は固定小数点（numeric(10,2)）で持つ。
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	//選べるサイズ（空ならサイズなし商品）
	Sizes []Size `gorm:"many2many:product_sizes;" json:"sizes"`
	//商品写真（商品を消すと一緒に消える）
	Images    []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 商品写真。URLは保存先（CDNなど）の公開URL。
type ProductImage struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	URL       string `gorm:"type:varchar(500);not null" json:"url"`
	//表示順（小さい順）
	Position int `gorm:"not null;default:0" json:"position"`
}

// HasSize はsizeIDがこの商品で選べるか。
func (p Product) HasSize(sizeID int64) bool {
	for _, s := range p.Sizes {
		if s.ID == sizeID {
			return true
		}
	}
	return false
}

// サイズ（参照データ）
type Size struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Label string `gorm:"type:varchar(10);not null" json:"label"`
}
