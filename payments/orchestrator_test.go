package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wglickman33/mykosherdelivery-sub001/events"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

// fakeStore is a map-backed Store.
type fakeStore struct {
	orders      map[uint]*models.Order
	groups      map[uint]*models.CheckoutGroup
	intents     []*models.PaymentIntent
	settleCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: map[uint]*models.Order{},
		groups: map[uint]*models.CheckoutGroup{},
	}
}

func (s *fakeStore) OrdersByIDs(_ context.Context, ids []uint) ([]models.Order, error) {
	var out []models.Order
	for _, id := range ids {
		if o, ok := s.orders[id]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeStore) CheckoutGroup(_ context.Context, id uint) (*models.CheckoutGroup, error) {
	return s.groups[id], nil
}

func (s *fakeStore) IntentByOrderSet(_ context.Context, key string) (*models.PaymentIntent, error) {
	for i := len(s.intents) - 1; i >= 0; i-- {
		if s.intents[i].OrderSetKey == key {
			return s.intents[i], nil
		}
	}
	return nil, nil
}

func (s *fakeStore) IntentByIntentID(_ context.Context, intentID string) (*models.PaymentIntent, error) {
	for _, in := range s.intents {
		if in.IntentID == intentID {
			return in, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateIntent(_ context.Context, intent *models.PaymentIntent) error {
	s.intents = append(s.intents, intent)
	return nil
}

func (s *fakeStore) UpdateIntent(_ context.Context, intent *models.PaymentIntent) error {
	for i, in := range s.intents {
		if in.IntentID == intent.IntentID {
			s.intents[i] = intent
			return nil
		}
	}
	s.intents = append(s.intents, intent)
	return nil
}

func (s *fakeStore) SettleOrders(_ context.Context, ids []uint) ([]models.Order, error) {
	s.settleCalls++
	var out []models.Order
	for _, id := range ids {
		if o, ok := s.orders[id]; ok {
			o.PaymentStatus = models.PaymentStatusPaid
			out = append(out, *o)
		}
	}
	return out, nil
}

// fakeGateway scripts processor behavior.
type fakeGateway struct {
	createCalls   int
	retrieveCalls int
	createStatus  models.IntentStatus
	retrieve      IntentResult
	retrieveErr   error
	createErr     error
}

func (g *fakeGateway) CreateIntent(_ context.Context, amountMinor int64, currency string, _ map[string]string) (IntentResult, error) {
	g.createCalls++
	if g.createErr != nil {
		return IntentResult{}, g.createErr
	}
	status := g.createStatus
	if status == "" {
		status = models.IntentStatusRequiresConfirmation
	}
	return IntentResult{
		IntentID:     fmt.Sprintf("pi_%d", g.createCalls),
		ClientSecret: "secret",
		Status:       status,
	}, nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, intentID string) (IntentResult, error) {
	g.retrieveCalls++
	if g.retrieveErr != nil {
		return IntentResult{}, g.retrieveErr
	}
	res := g.retrieve
	if res.IntentID == "" {
		res.IntentID = intentID
	}
	return res, nil
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func fixture(t *testing.T) (*Orchestrator, *fakeStore, *fakeGateway) {
	t.Helper()
	store := newFakeStore()
	groupID := uint(1)
	store.groups[groupID] = &models.CheckoutGroup{ID: groupID, Tip: dec("5.00")}
	store.orders[10] = &models.Order{
		ID: 10, OrderNumber: "ORD-10", CheckoutGroupID: &groupID,
		Total: dec("19.24"), PaymentStatus: models.PaymentStatusPending,
	}
	store.orders[11] = &models.Order{
		ID: 11, OrderNumber: "ORD-11", CheckoutGroupID: &groupID,
		Total: dec("24.65"), PaymentStatus: models.PaymentStatusPending,
	}
	gw := &fakeGateway{}
	orch := &Orchestrator{
		Store:    store,
		Gateway:  gw,
		Bus:      events.NewBus(),
		Currency: "USD",
	}
	return orch, store, gw
}

// 19.24 + 24.65 + 5.00 tip = 48.89
const combinedMinor = int64(4889)

func TestCreateIntentAmountMismatch(t *testing.T) {
	orch, store, gw := fixture(t)

	_, err := orch.CreateIntent(context.Background(), []uint{10, 11}, combinedMinor+1, "USD")
	var mismatch *AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, combinedMinor, mismatch.ExpectedMinor)
	assert.Zero(t, gw.createCalls, "gateway must not be called on mismatch")
	assert.Empty(t, store.intents, "no intent persisted on mismatch")
}

func TestCreateIntentReusesPendingIntent(t *testing.T) {
	orch, _, gw := fixture(t)

	first, err := orch.CreateIntent(context.Background(), []uint{10, 11}, combinedMinor, "USD")
	require.NoError(t, err)

	// Same order set again (ids shuffled, duplicated): same intent back.
	second, err := orch.CreateIntent(context.Background(), []uint{11, 10, 10}, combinedMinor, "USD")
	require.NoError(t, err)

	assert.Equal(t, first.IntentID, second.IntentID)
	assert.Equal(t, 1, gw.createCalls, "only one processor intent for the attempt")
}

func TestCreateIntentAfterFailureCreatesFresh(t *testing.T) {
	orch, store, gw := fixture(t)

	first, err := orch.CreateIntent(context.Background(), []uint{10, 11}, combinedMinor, "USD")
	require.NoError(t, err)

	first.Status = models.IntentStatusFailed
	require.NoError(t, store.UpdateIntent(context.Background(), first))

	second, err := orch.CreateIntent(context.Background(), []uint{10, 11}, combinedMinor, "USD")
	require.NoError(t, err)
	assert.NotEqual(t, first.IntentID, second.IntentID)
	assert.Equal(t, 2, gw.createCalls)
}

func TestCreateIntentUnknownOrders(t *testing.T) {
	orch, _, _ := fixture(t)
	_, err := orch.CreateIntent(context.Background(), []uint{10, 99}, combinedMinor, "USD")
	assert.ErrorIs(t, err, ErrUnknownOrders)
}

func TestCreateIntentAutoSettle(t *testing.T) {
	orch, store, gw := fixture(t)
	gw.createStatus = models.IntentStatusSucceeded

	intent, err := orch.CreateIntent(context.Background(), []uint{10, 11}, combinedMinor, "USD")
	require.NoError(t, err)
	assert.Equal(t, models.IntentStatusSucceeded, intent.Status)
	assert.Equal(t, models.PaymentStatusPaid, store.orders[10].PaymentStatus)
	assert.Equal(t, models.PaymentStatusPaid, store.orders[11].PaymentStatus)
}

func TestConfirmSettlesOrders(t *testing.T) {
	orch, store, gw := fixture(t)

	intent, err := orch.CreateIntent(context.Background(), []uint{10, 11}, combinedMinor, "USD")
	require.NoError(t, err)

	gw.retrieve = IntentResult{Status: models.IntentStatusSucceeded}
	settled, err := orch.Confirm(context.Background(), intent.IntentID)
	require.NoError(t, err)
	assert.Equal(t, models.IntentStatusSucceeded, settled.Status)
	assert.Equal(t, models.PaymentStatusPaid, store.orders[10].PaymentStatus)
	assert.Equal(t, 1, store.settleCalls)
}

func TestConfirmDuplicateIsNoOp(t *testing.T) {
	orch, store, gw := fixture(t)

	intent, err := orch.CreateIntent(context.Background(), []uint{10, 11}, combinedMinor, "USD")
	require.NoError(t, err)

	gw.retrieve = IntentResult{Status: models.IntentStatusSucceeded}
	_, err = orch.Confirm(context.Background(), intent.IntentID)
	require.NoError(t, err)

	// At-least-once callback: the duplicate is a success and changes nothing.
	again, err := orch.Confirm(context.Background(), intent.IntentID)
	require.NoError(t, err)
	assert.Equal(t, models.IntentStatusSucceeded, again.Status)
	assert.Equal(t, 1, store.settleCalls, "settlement must not run twice")
	assert.Equal(t, 1, gw.retrieveCalls, "no processor round-trip for a settled intent")
}

func TestConfirmDeclined(t *testing.T) {
	orch, _, gw := fixture(t)

	intent, err := orch.CreateIntent(context.Background(), []uint{10, 11}, combinedMinor, "USD")
	require.NoError(t, err)

	gw.retrieve = IntentResult{
		Status:      models.IntentStatusFailed,
		FailureCode: "card_declined",
		FailureMsg:  "insufficient funds",
	}
	failed, err := orch.Confirm(context.Background(), intent.IntentID)
	var declined *DeclinedError
	require.ErrorAs(t, err, &declined)
	assert.Equal(t, "insufficient funds", declined.Reason)
	assert.Equal(t, models.IntentStatusFailed, failed.Status)
}

func TestConfirmUnknownIntent(t *testing.T) {
	orch, _, _ := fixture(t)
	_, err := orch.Confirm(context.Background(), "pi_missing")
	assert.ErrorIs(t, err, ErrIntentNotFound)
}

func TestConfirmTransientGatewayError(t *testing.T) {
	orch, _, gw := fixture(t)

	intent, err := orch.CreateIntent(context.Background(), []uint{10, 11}, combinedMinor, "USD")
	require.NoError(t, err)

	gw.retrieveErr = &TransientError{Err: errors.New("connection reset")}
	_, err = orch.Confirm(context.Background(), intent.IntentID)
	var transient *TransientError
	assert.ErrorAs(t, err, &transient)
}
