package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog module related models

// Commodity a sellable product record
type Commodity struct {
	ID             int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Title          string              `gorm:"size:255;not null" json:"title"`
	Description    *string             `gorm:"type:text" json:"description"`
	Price          decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"price"`          // sale price
	OriginalPrice  decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"original_price"` // cost price, admin only
	PromotionPrice decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"promotion_price"`
	IsOnPromotion  bool                `gorm:"not null;default:false" json:"is_on_promotion"`
	DiscountAmount decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"discount_amount"`
	Stock          int                 `gorm:"not null;default:0" json:"stock"`
	ImageURL       string              `gorm:"column:image_url;size:255" json:"image_url"` // stored filename, not a path
	Categories     []Category          `gorm:"many2many:commodity_categories;" json:"categories"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// TableName Specify table name
func (Commodity) TableName() string {
	return "commodities"
}

// NormalizePromotion clears the promotion fields of a commodity that is not on promotion.
func (c *Commodity) NormalizePromotion() {
	if !c.IsOnPromotion {
		c.PromotionPrice = decimal.NullDecimal{}
		c.DiscountAmount = decimal.NullDecimal{}
	}
}

// PublicColumns the columns an anonymous caller may see
var PublicColumns = []string{
	"id",
	"title",
	"description",
	"price",
	"promotion_price",
	"is_on_promotion",
	"discount_amount",
	"stock",
	"image_url",
}
