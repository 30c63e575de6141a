package payments

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wglickman33/mykosherdelivery-sub001/events"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
	"github.com/wglickman33/mykosherdelivery-sub001/pricing"
)

// Mailer sends the settlement confirmation. Sending is fire-and-forget:
// failures are logged, never rolled back against the payment.
type Mailer interface {
	SendPaymentConfirmation(orders []models.Order) error
}

// LogMailer stands in where no mail provider is wired; it just records the
// send. The real provider sits behind the same interface.
type LogMailer struct{}

func (LogMailer) SendPaymentConfirmation(orders []models.Order) error {
	numbers := make([]string, len(orders))
	for i, o := range orders {
		numbers[i] = o.OrderNumber
	}
	logrus.WithField("orders", strings.Join(numbers, ",")).Info("payment confirmation email dispatched")
	return nil
}

// NotifyFunc lets the orchestrator raise an admin notification without owning
// the notification store.
type NotifyFunc func(typ, title, message, refType, refID string)

// Orchestrator drives the payment-intent lifecycle for checkout attempts:
// intent creation with idempotent reuse, confirmation, and settlement fan-out
// to the linked orders.
type Orchestrator struct {
	Store    Store
	Gateway  Gateway
	Bus      *events.Bus
	Mailer   Mailer
	Notify   NotifyFunc
	Currency string
}

// orderSetKey gives every order-id set one canonical identity, so a retry of
// the same checkout attempt finds its prior intent.
func orderSetKey(ids []uint) (string, []uint) {
	uniq := make(map[uint]bool, len(ids))
	var sorted []uint
	for _, id := range ids {
		if !uniq[id] {
			uniq[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ","), sorted
}

func parseOrderSetKey(key string) []uint {
	if key == "" {
		return nil
	}
	parts := strings.Split(key, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		if v, err := strconv.ParseUint(p, 10, 64); err == nil {
			ids = append(ids, uint(v))
		}
	}
	return ids
}

// expectedAmount recomputes the combined total for the order set from the
// persisted rows: the sum of order totals plus the checkout-level tip when
// all orders belong to one checkout group. Client input is never trusted.
func (o *Orchestrator) expectedAmount(ctx context.Context, orders []models.Order) (int64, *uint, error) {
	var total int64
	var groupID *uint
	sameGroup := true
	for i, ord := range orders {
		total += pricing.MinorUnits(ord.Total)
		if i == 0 {
			groupID = ord.CheckoutGroupID
		} else if groupID == nil || ord.CheckoutGroupID == nil || *ord.CheckoutGroupID != *groupID {
			sameGroup = false
		}
	}
	if !sameGroup || groupID == nil {
		return total, nil, nil
	}

	group, err := o.Store.CheckoutGroup(ctx, *groupID)
	if err != nil {
		return 0, nil, err
	}
	if group != nil {
		total += pricing.MinorUnits(group.Tip)
	}
	return total, groupID, nil
}

// CreateIntent creates (or reuses) the payment intent covering the given
// order set. The supplied amount must exactly equal the server-side
// recomputation; a prior non-failed intent for the same set is returned
// as-is instead of creating a duplicate charge.
func (o *Orchestrator) CreateIntent(ctx context.Context, orderIDs []uint, amountMinor int64, currency string) (*models.PaymentIntent, error) {
	if len(orderIDs) == 0 {
		return nil, ErrUnknownOrders
	}
	key, sorted := orderSetKey(orderIDs)

	orders, err := o.Store.OrdersByIDs(ctx, sorted)
	if err != nil {
		return nil, err
	}
	if len(orders) != len(sorted) {
		return nil, ErrUnknownOrders
	}

	expected, groupID, err := o.expectedAmount(ctx, orders)
	if err != nil {
		return nil, err
	}
	if amountMinor != expected {
		return nil, &AmountMismatchError{ExpectedMinor: expected, GotMinor: amountMinor}
	}
	if currency == "" {
		currency = o.Currency
	}

	if existing, err := o.Store.IntentByOrderSet(ctx, key); err != nil {
		return nil, err
	} else if existing != nil && existing.Status != models.IntentStatusFailed {
		// Client retry/refresh of the same attempt: hand back the same
		// intent rather than charging twice.
		return existing, nil
	}

	res, err := o.Gateway.CreateIntent(ctx, expected, currency, map[string]string{
		"order_ids": key,
	})
	if err != nil {
		return nil, err
	}

	intent := &models.PaymentIntent{
		IntentID:        res.IntentID,
		ClientSecret:    res.ClientSecret,
		AmountMinor:     expected,
		Currency:        currency,
		Status:          res.Status,
		OrderSetKey:     key,
		OrderIDs:        key,
		CheckoutGroupID: groupID,
	}
	if err := o.Store.CreateIntent(ctx, intent); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"intent": intent.IntentID,
		"orders": key,
		"amount": expected,
	}).Info("payment intent created")

	// Stored payment methods can settle at creation time.
	if res.Status == models.IntentStatusSucceeded {
		if err := o.settle(ctx, intent); err != nil {
			return nil, err
		}
	}
	return intent, nil
}

// Confirm handles the processor's confirmation callback. Callbacks are
// at-least-once: confirming an already-succeeded intent is a no-op success.
func (o *Orchestrator) Confirm(ctx context.Context, intentID string) (*models.PaymentIntent, error) {
	intent, err := o.Store.IntentByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent == nil {
		return nil, ErrIntentNotFound
	}
	if intent.Status == models.IntentStatusSucceeded {
		return intent, nil
	}

	// Never trust the callback alone; ask the processor what it thinks.
	res, err := o.Gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}

	switch res.Status {
	case models.IntentStatusSucceeded:
		intent.Status = models.IntentStatusSucceeded
		if err := o.settle(ctx, intent); err != nil {
			return nil, err
		}
		return intent, nil
	case models.IntentStatusFailed:
		intent.Status = models.IntentStatusFailed
		intent.FailureCode = res.FailureCode
		intent.FailureReason = res.FailureMsg
		if err := o.Store.UpdateIntent(ctx, intent); err != nil {
			return nil, err
		}
		return intent, &DeclinedError{Code: res.FailureCode, Reason: res.FailureMsg}
	default:
		return intent, ErrIntentPending
	}
}

// settle persists the succeeded intent, flips every linked order to paid, and
// fans out the best-effort side effects (email, admin notification). Side
// effect failures never unwind the settlement.
func (o *Orchestrator) settle(ctx context.Context, intent *models.PaymentIntent) error {
	intent.Status = models.IntentStatusSucceeded
	if err := o.Store.UpdateIntent(ctx, intent); err != nil {
		return err
	}

	orders, err := o.Store.SettleOrders(ctx, parseOrderSetKey(intent.OrderIDs))
	if err != nil {
		return fmt.Errorf("mark orders settled for intent %s: %w", intent.IntentID, err)
	}

	for _, ord := range orders {
		o.Bus.Publish(events.TopicOrderUpdated, map[string]any{
			"order_id":       ord.ID,
			"order_number":   ord.OrderNumber,
			"status":         ord.Status,
			"payment_status": models.PaymentStatusPaid,
		})
	}
	if o.Notify != nil {
		o.Notify("payment.settled", "Payment received",
			fmt.Sprintf("Payment settled for %d order(s)", len(orders)),
			"payment_intent", intent.IntentID)
	}
	if o.Mailer != nil {
		go func(orders []models.Order) {
			if err := o.Mailer.SendPaymentConfirmation(orders); err != nil {
				logrus.WithError(err).WithField("intent", intent.IntentID).
					Warn("confirmation email failed")
			}
		}(orders)
	}

	logrus.WithFields(logrus.Fields{
		"intent": intent.IntentID,
		"orders": intent.OrderIDs,
	}).Info("payment settled")
	return nil
}
