package model

import (
	"time"

	"gorm.io/gorm"
)

type CartItem struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"not null;index:idx_cart_user_product,unique" json:"user_id"`
	ProductID uint `gorm:"not null;index:idx_cart_user_product,unique" json:"product_id"`
	Quantity  int  `gorm:"not null;default:1" json:"quantity"`
	// UnitPrice is captured when the item is added and not re-read from
	// the catalog afterwards.
	UnitPrice float64        `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartItemView is the wire shape consumed by the storefront clients.
// Subtotal is computed server side and is authoritative.
type CartItemView struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"image_url,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// ToView flattens a cart row into its wire shape
func (ci CartItem) ToView() CartItemView {
	return CartItemView{
		ProductID: ci.ProductID,
		Name:      ci.Product.Name,
		ImageURL:  ci.Product.ImageURL,
		UnitPrice: ci.UnitPrice,
		Quantity:  ci.Quantity,
		Subtotal:  ci.UnitPrice * float64(ci.Quantity),
	}
}
