package zoneControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

// ListZonesHandler returns every delivery zone, served or paused (admin only).
func ListZonesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var zones []models.DeliveryZone
		if err := db.Order("postal_code").Find(&zones).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch zones"})
			return
		}
		c.JSON(http.StatusOK, zones)
	}
}

type zoneInput struct {
	PostalCode  string `json:"postal_code" binding:"required"`
	DeliveryFee string `json:"delivery_fee" binding:"required"`
	TaxRate     string `json:"tax_rate"`
	Active      *bool  `json:"active"`
}

// UpsertZoneHandler creates or replaces the zone for a postal code (admin
// only). An empty tax_rate means the zone inherits the static rate.
func UpsertZoneHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input zoneInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}
		fee, err := decimal.NewFromString(input.DeliveryFee)
		if err != nil || fee.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid delivery_fee"})
			return
		}
		var rate decimal.NullDecimal
		if input.TaxRate != "" {
			r, err := decimal.NewFromString(input.TaxRate)
			if err != nil || r.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tax_rate"})
				return
			}
			rate = decimal.NewNullDecimal(r)
		}

		zone := models.DeliveryZone{
			PostalCode:  input.PostalCode,
			DeliveryFee: fee.Round(2),
			TaxRate:     rate,
			Active:      input.Active == nil || *input.Active,
		}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "postal_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"delivery_fee", "tax_rate", "active"}),
		}).Create(&zone).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save zone"})
			return
		}
		c.JSON(http.StatusOK, zone)
	}
}

// ListPromosHandler returns every promo code (admin only).
func ListPromosHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var promos []models.PromoCode
		if err := db.Order("code").Find(&promos).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch promo codes"})
			return
		}
		c.JSON(http.StatusOK, promos)
	}
}

type promoInput struct {
	Code   string           `json:"code" binding:"required"`
	Type   models.PromoType `json:"type" binding:"required"`
	Value  string           `json:"value" binding:"required"`
	Active *bool            `json:"active"`
}

// UpsertPromoHandler creates or replaces a promo code (admin only).
func UpsertPromoHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input promoInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}
		if input.Type != models.PromoTypePercentage && input.Type != models.PromoTypeFixed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown promo type"})
			return
		}
		value, err := decimal.NewFromString(input.Value)
		if err != nil || value.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid value"})
			return
		}

		promo := models.PromoCode{
			Code:   input.Code,
			Type:   input.Type,
			Value:  value,
			Active: input.Active == nil || *input.Active,
		}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "value", "active"}),
		}).Create(&promo).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save promo code"})
			return
		}
		c.JSON(http.StatusOK, promo)
	}
}
