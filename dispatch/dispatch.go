// Package dispatch normalizes inbound delivery-provider webhooks. The
// provider's payload shape drifts between integrations (the order id shows up
// as order_id, id, or nested under data), so everything is parsed into one
// canonical Update at the boundary before any business logic runs.
package dispatch

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

var (
	ErrMissingIdentifier = errors.New("dispatch payload carries no order identifier")
	ErrMissingStatus     = errors.New("dispatch payload carries no status")
)

// UnknownStatusError rejects provider statuses outside the canonical set
// instead of silently storing them.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return "unrecognized dispatch status: " + e.Status
}

// Update is the canonical form of a provider webhook. ProviderID is the
// provider's own identifier for the delivery; Reference is the platform order
// number, used as fallback when the provider id is absent.
type Update struct {
	ProviderID string
	Reference  string
	Status     string
}

type payload struct {
	OrderID     string `json:"order_id"`
	ID          string `json:"id"`
	Reference   string `json:"reference"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Data        *struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

// Parse decodes a provider webhook body and fails fast on missing required
// fields. At least one identifier and a status must be present.
func Parse(body []byte) (Update, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Update{}, err
	}

	u := Update{
		Reference: p.Reference,
		Status:    p.Status,
	}
	switch {
	case p.OrderID != "":
		u.ProviderID = p.OrderID
	case p.ID != "":
		u.ProviderID = p.ID
	case p.Data != nil && p.Data.ID != "":
		u.ProviderID = p.Data.ID
	}
	if u.Reference == "" {
		u.Reference = p.OrderNumber
	}
	if u.Status == "" && p.Data != nil {
		u.Status = p.Data.Status
	}

	if u.ProviderID == "" && u.Reference == "" {
		return Update{}, ErrMissingIdentifier
	}
	if u.Status == "" {
		return Update{}, ErrMissingStatus
	}
	return u, nil
}

// statusMap folds the provider's courier vocabulary into the platform's
// fulfillment states.
var statusMap = map[string]models.OrderStatus{
	"assigned":         models.OrderStatusConfirmed,
	"accepted":         models.OrderStatusConfirmed,
	"courier_assigned": models.OrderStatusConfirmed,
	"picked_up":        models.OrderStatusPreparing,
	"pickedup":         models.OrderStatusPreparing,
	"pickup":           models.OrderStatusPreparing,
	"in_transit":       models.OrderStatusOutForDelivery,
	"on_the_way":       models.OrderStatusOutForDelivery,
	"enroute":          models.OrderStatusOutForDelivery,
	"dropped_off":      models.OrderStatusDelivered,
	"completed":        models.OrderStatusDelivered,
	"canceled":         models.OrderStatusCancelled,
}

// MapStatus translates a provider status string into a canonical status.
// Unmapped strings are lower-cased and passed through only if they already
// name a canonical state; anything else is rejected.
func MapStatus(s string) (models.OrderStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if mapped, ok := statusMap[normalized]; ok {
		return mapped, nil
	}
	if candidate := models.OrderStatus(normalized); models.CanonicalStatuses[candidate] {
		return candidate, nil
	}
	return "", &UnknownStatusError{Status: s}
}
