package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

// CartItem captures price and restaurant at add time so checkout prices what
// the customer saw, not what the menu says now.
type CartItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CartID        uint            `gorm:"index" json:"cart_id"`
	MenuItemID    string          `gorm:"not null" json:"menu_item_id"`
	RestaurantID  string          `gorm:"not null" json:"restaurant_id"`
	ItemName      string          `json:"item_name"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(10,2)" json:"unit_price"`
	Quantity      int             `json:"quantity"`
	Customization string          `gorm:"type:jsonb" json:"customization,omitempty"`
	AddedAt       time.Time       `json:"added_at"`
}
