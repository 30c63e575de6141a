package models

import "github.com/shopspring/decimal"

// DeliveryZone is a read-only lookup keyed by postal code. A zone without its
// own tax rate falls back to the configured static rate.
type DeliveryZone struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	PostalCode  string              `gorm:"uniqueIndex;not null" json:"postal_code"`
	DeliveryFee decimal.Decimal     `gorm:"type:numeric(10,2)" json:"delivery_fee"`
	TaxRate     decimal.NullDecimal `gorm:"type:numeric(6,4)" json:"tax_rate"`
	Active      bool                `gorm:"default:true" json:"active"`
}

type PromoType string

const (
	PromoTypePercentage PromoType = "percentage"
	PromoTypeFixed      PromoType = "fixed"
)

type PromoCode struct {
	ID     uint            `gorm:"primaryKey" json:"id"`
	Code   string          `gorm:"uniqueIndex;not null" json:"code"`
	Type   PromoType       `gorm:"type:VARCHAR(20)" json:"type"`
	Value  decimal.Decimal `gorm:"type:numeric(10,2)" json:"value"`
	Active bool            `gorm:"default:true" json:"active"`
}
