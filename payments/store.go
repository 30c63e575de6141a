package payments

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

// Store is the persistence surface the orchestrator needs. Kept narrow so
// tests can stand in a map-backed fake.
type Store interface {
	OrdersByIDs(ctx context.Context, ids []uint) ([]models.Order, error)
	CheckoutGroup(ctx context.Context, id uint) (*models.CheckoutGroup, error)
	IntentByOrderSet(ctx context.Context, key string) (*models.PaymentIntent, error)
	IntentByIntentID(ctx context.Context, intentID string) (*models.PaymentIntent, error)
	CreateIntent(ctx context.Context, intent *models.PaymentIntent) error
	UpdateIntent(ctx context.Context, intent *models.PaymentIntent) error
	// SettleOrders marks every order in ids paid and returns the refreshed
	// rows. Re-settling an already-paid order is a no-op.
	SettleOrders(ctx context.Context, ids []uint) ([]models.Order, error)
}

// GormStore is the production Store.
type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) OrdersByIDs(ctx context.Context, ids []uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return orders, nil
}

func (s *GormStore) CheckoutGroup(ctx context.Context, id uint) (*models.CheckoutGroup, error) {
	var group models.CheckoutGroup
	if err := s.DB.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load checkout group: %w", err)
	}
	return &group, nil
}

func (s *GormStore) IntentByOrderSet(ctx context.Context, key string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := s.DB.WithContext(ctx).
		Where("order_set_key = ?", key).
		Order("created_at DESC").
		First(&intent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup intent by order set: %w", err)
	}
	return &intent, nil
}

func (s *GormStore) IntentByIntentID(ctx context.Context, intentID string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := s.DB.WithContext(ctx).Where("intent_id = ?", intentID).First(&intent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup intent: %w", err)
	}
	return &intent, nil
}

func (s *GormStore) CreateIntent(ctx context.Context, intent *models.PaymentIntent) error {
	if err := s.DB.WithContext(ctx).Create(intent).Error; err != nil {
		return fmt.Errorf("create intent: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateIntent(ctx context.Context, intent *models.PaymentIntent) error {
	if err := s.DB.WithContext(ctx).Save(intent).Error; err != nil {
		return fmt.Errorf("update intent: %w", err)
	}
	return nil
}

func (s *GormStore) SettleOrders(ctx context.Context, ids []uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).
			Where("id IN ? AND payment_status <> ?", ids, models.PaymentStatusPaid).
			Update("payment_status", models.PaymentStatusPaid).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Find(&orders).Error
	})
	if err != nil {
		return nil, fmt.Errorf("settle orders: %w", err)
	}
	return orders, nil
}
