package models

import "time"

type IntentStatus string

const (
	IntentStatusRequiresConfirmation IntentStatus = "requires_confirmation"
	IntentStatusSucceeded            IntentStatus = "succeeded"
	IntentStatusFailed               IntentStatus = "failed"
)

// PaymentIntent is the local cache of a processor-issued intent. One intent
// covers the combined total of every order created by a single checkout
// attempt. OrderSetKey is the sorted, comma-joined order id list and is what
// retry detection keys on.
type PaymentIntent struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	IntentID        string       `gorm:"uniqueIndex;not null" json:"payment_intent_id"`
	ClientSecret    string       `json:"client_secret,omitempty"`
	AmountMinor     int64        `json:"amount_minor"`
	Currency        string       `gorm:"type:VARCHAR(3)" json:"currency"`
	Status          IntentStatus `gorm:"type:VARCHAR(30);default:'requires_confirmation'" json:"status"`
	OrderSetKey     string       `gorm:"index" json:"-"`
	OrderIDs        string       `json:"order_ids"` // comma-joined, same order as OrderSetKey
	CheckoutGroupID *uint        `gorm:"index" json:"checkout_group_id,omitempty"`
	FailureCode     string       `json:"failure_code,omitempty"`
	FailureReason   string       `json:"failure_reason,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (s IntentStatus) Terminal() bool {
	return s == IntentStatusSucceeded || s == IntentStatusFailed
}
