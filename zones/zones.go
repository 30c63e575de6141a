// Package zones resolves a delivery address into its fee and tax inputs. The
// zone table and the external tax service are read-only collaborators; the
// only policy here is the fallback: tax-service unavailability never blocks
// checkout.
package zones

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wglickman33/mykosherdelivery-sub001/models"
	"github.com/wglickman33/mykosherdelivery-sub001/pricing"
)

// ErrNotServed means no active zone covers the postal code.
var ErrNotServed = errors.New("address is not in a served delivery zone")

// TaxQuoter is the external tax service: given the cart and destination it
// returns an exact tax amount.
type TaxQuoter interface {
	QuoteTax(ctx context.Context, lines []pricing.Line, postalCode string) (decimal.Decimal, error)
}

type Service struct {
	DB            *gorm.DB
	StaticTaxRate decimal.Decimal
	Quoter        TaxQuoter // optional
}

// Zone looks up the active delivery zone for a postal code.
func (s *Service) Zone(ctx context.Context, postalCode string) (*models.DeliveryZone, error) {
	var zone models.DeliveryZone
	err := s.DB.WithContext(ctx).
		Where("postal_code = ? AND active", postalCode).
		First(&zone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotServed
	}
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

// Rate returns the zone's tax rate, or the static configured rate when the
// zone has none.
func (s *Service) Rate(zone *models.DeliveryZone) decimal.Decimal {
	if zone != nil && zone.TaxRate.Valid {
		return zone.TaxRate.Decimal
	}
	return s.StaticTaxRate
}

// TaxInput asks the external service for an exact amount and falls back to
// the zone/static rate when the call fails or no quoter is wired.
func (s *Service) TaxInput(ctx context.Context, lines []pricing.Line, zone *models.DeliveryZone, postalCode string) pricing.TaxInput {
	in := pricing.TaxInput{Rate: s.Rate(zone)}
	if s.Quoter == nil {
		return in
	}
	amount, err := s.Quoter.QuoteTax(ctx, lines, postalCode)
	if err != nil {
		logrus.WithError(err).WithField("postal_code", postalCode).
			Warn("tax service unavailable, using cached rate")
		return in
	}
	in.Amount = decimal.NullDecimal{Decimal: amount, Valid: true}
	return in
}
