package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type MenuItem struct {
	ID           string          `gorm:"primaryKey" json:"id"`
	RestaurantID string          `gorm:"index;not null" json:"restaurant_id"`
	Name         string          `gorm:"not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	Available    bool            `gorm:"default:true" json:"available"`
	CreatedAt    time.Time       `json:"created_at"`
}
