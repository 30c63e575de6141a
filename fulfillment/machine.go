package fulfillment

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wglickman33/mykosherdelivery-sub001/events"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

// Source identifies which of the independent actors requested a transition.
type Source string

const (
	SourceManual   Source = "manual"
	SourceDispatch Source = "dispatch"
)

// InvalidTransitionError covers both role violations and transitions out of a
// terminal state.
type InvalidTransitionError struct {
	From   models.OrderStatus
	To     models.OrderStatus
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s: %s", e.From, e.To, e.Reason)
}

// StatusChange is the order.updated payload: every committed transition
// carries the previous and new status.
type StatusChange struct {
	OrderID     uint               `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Previous    models.OrderStatus `json:"previous_status"`
	Status      models.OrderStatus `json:"status"`
	Source      Source             `json:"source"`
}

// Authorize checks whether the caller's role may request the transition.
// Staff and admins may set any status; a customer may only request
// cancellation, and only while the order is still pending or confirmed.
// Dispatch- and payment-driven transitions do not pass through here.
func Authorize(role models.Role, from, to models.OrderStatus) error {
	if role.Staffish() {
		return nil
	}
	if to != models.OrderStatusCancelled {
		return &InvalidTransitionError{From: from, To: to, Reason: "customers may only cancel"}
	}
	if from != models.OrderStatusPending && from != models.OrderStatusConfirmed {
		return &InvalidTransitionError{From: from, To: to, Reason: "order is already being prepared"}
	}
	return nil
}

// Check validates a transition against the state machine alone. A request for
// the current status is a legal no-op (changed=false), which is what makes
// duplicate webhook deliveries harmless.
func Check(from, to models.OrderStatus) (changed bool, err error) {
	if !models.CanonicalStatuses[to] {
		return false, &InvalidTransitionError{From: from, To: to, Reason: "unknown status"}
	}
	if to == from {
		return false, nil
	}
	if from.Terminal() {
		return false, &InvalidTransitionError{From: from, To: to, Reason: "order is in a terminal state"}
	}
	return true, nil
}

// Machine applies transitions to persisted orders and emits order.updated for
// every committed change. Transitions are applied in arrival order; the no-op
// rule above is the only ordering guard.
type Machine struct {
	DB  *gorm.DB
	Bus *events.Bus
}

// Apply moves the order to target. It returns changed=false without touching
// the row when the order is already at target. The delivered timestamp is
// stamped exactly once, on the first transition into delivered.
func (m *Machine) Apply(order *models.Order, target models.OrderStatus, source Source) (bool, error) {
	changed, err := Check(order.Status, target)
	if err != nil || !changed {
		return false, err
	}

	prev := order.Status
	updates := map[string]any{"status": target}
	if target == models.OrderStatusDelivered && order.DeliveredAt == nil {
		now := time.Now()
		order.DeliveredAt = &now
		updates["delivered_at"] = now
	}

	if err := m.DB.Model(order).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("update order %d status: %w", order.ID, err)
	}
	order.Status = target

	change := StatusChange{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Previous:    prev,
		Status:      target,
		Source:      source,
	}
	m.Bus.Publish(events.TopicOrderUpdated, change)

	logrus.WithFields(logrus.Fields{
		"order":  order.OrderNumber,
		"from":   prev,
		"to":     target,
		"source": source,
	}).Info("order status updated")
	return true, nil
}
