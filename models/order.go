package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string

const (
	// Delivery-fulfillment statuses
	OrderStatusPending        OrderStatus = "pending"          // Order placed, awaiting restaurant confirmation
	OrderStatusConfirmed      OrderStatus = "confirmed"        // Confirmed by restaurant
	OrderStatusPreparing      OrderStatus = "preparing"        // Kitchen is preparing the order
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery" // Courier en route to customer
	OrderStatusDelivered      OrderStatus = "delivered"        // Customer received the order
	OrderStatusCancelled      OrderStatus = "cancelled"        // Cancelled before completion

	// Payment statuses (settlement flag, independent of fulfillment)
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order is one restaurant's slice of a checkout attempt, the unit of
// fulfillment tracking. Guest checkouts leave UserID nil and carry contact
// info inline on the order instead.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null" json:"order_number"`
	CheckoutGroupID *uint           `gorm:"index" json:"checkout_group_id,omitempty"`
	UserID          *string         `gorm:"index" json:"user_id,omitempty"`
	RestaurantID    *string         `gorm:"index" json:"restaurant_id,omitempty"`
	GuestName       string          `json:"guest_name,omitempty"`
	GuestEmail      string          `json:"guest_email,omitempty"`
	GuestPhone      string          `json:"guest_phone,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(10,2)" json:"subtotal"`
	DiscountShare   decimal.Decimal `gorm:"type:numeric(10,2)" json:"discount_share"`
	DeliveryFee     decimal.Decimal `gorm:"type:numeric(10,2)" json:"delivery_fee_share"`
	TaxShare        decimal.Decimal `gorm:"type:numeric(10,2)" json:"tax_share"`
	Tip             decimal.Decimal `gorm:"type:numeric(10,2)" json:"tip"`
	Total           decimal.Decimal `gorm:"type:numeric(10,2)" json:"total"`
	DeliveryAddress string          `json:"delivery_address"`
	PostalCode      string          `json:"postal_code"`
	Status          OrderStatus     `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	DispatchID      *string         `gorm:"index" json:"dispatch_id,omitempty"`
	DeliveredAt     *time.Time      `json:"actual_delivery_time,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"index" json:"order_id"`
	MenuItemID    string          `json:"menu_item_id"`
	RestaurantID  string          `json:"restaurant_id"`
	ItemName      string          `json:"item_name"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(10,2)" json:"unit_price"`
	Quantity      int             `json:"quantity"`
	Customization string          `json:"customization,omitempty"`
}

// CheckoutGroup links one checkout attempt to the per-restaurant orders it
// produced and carries the checkout-level charges that are not split across
// them. The tip is computed once on the combined discounted subtotal and
// lives here, not on any single order.
type CheckoutGroup struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         *string         `gorm:"index" json:"user_id,omitempty"`
	Orders         []Order         `gorm:"foreignKey:CheckoutGroupID" json:"orders"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(10,2)" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(10,2)" json:"discount_amount"`
	DeliveryFee    decimal.Decimal `gorm:"type:numeric(10,2)" json:"delivery_fee"`
	Tax            decimal.Decimal `gorm:"type:numeric(10,2)" json:"tax"`
	Tip            decimal.Decimal `gorm:"type:numeric(10,2)" json:"tip"`
	CombinedTotal  decimal.Decimal `gorm:"type:numeric(10,2)" json:"combined_total"`
	PromoCode      string          `json:"promo_code,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Terminal reports whether s admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanonicalStatuses is the closed set of fulfillment states.
var CanonicalStatuses = map[OrderStatus]bool{
	OrderStatusPending:        true,
	OrderStatusConfirmed:      true,
	OrderStatusPreparing:      true,
	OrderStatusOutForDelivery: true,
	OrderStatusDelivered:      true,
	OrderStatusCancelled:      true,
}
