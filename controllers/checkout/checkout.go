package checkoutControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wglickman33/mykosherdelivery-sub001/events"
	"github.com/wglickman33/mykosherdelivery-sub001/middleware"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
	"github.com/wglickman33/mykosherdelivery-sub001/notify"
	"github.com/wglickman33/mykosherdelivery-sub001/pricing"
	"github.com/wglickman33/mykosherdelivery-sub001/zones"
)

type LineInput struct {
	MenuItemID    string          `json:"menu_item_id" binding:"required"`
	RestaurantID  string          `json:"restaurant_id" binding:"required"`
	ItemName      string          `json:"item_name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity" binding:"required,min=1"`
	Customization string          `json:"customization"`
}

type CheckoutRequest struct {
	Lines           []LineInput     `json:"lines"`
	UseCart         bool            `json:"use_cart"`
	PromoCode       string          `json:"promo_code"`
	TipPercent      decimal.Decimal `json:"tip_percent"`
	CustomTip       decimal.Decimal `json:"custom_tip"`
	DeliveryAddress string          `json:"delivery_address"`
	PostalCode      string          `json:"postal_code" binding:"required"`
	GuestName       string          `json:"guest_name"`
	GuestEmail      string          `json:"guest_email"`
	GuestPhone      string          `json:"guest_phone"`
}

type orderSummary struct {
	ID          uint            `json:"id"`
	OrderNumber string          `json:"order_number"`
	Restaurant  string          `json:"restaurant_id"`
	Total       decimal.Decimal `json:"total"`
}

// generateOrderNumber follows the timestamp-plus-uuid reference format so
// numbers sort roughly by creation time but stay unguessable.
func generateOrderNumber() string {
	return "ORD-" + time.Now().Format("20060102150405") + "-" + uuid.NewString()[:8]
}

// resolveLines turns the request into priced cart lines, either inline or
// from the user's stored cart.
func resolveLines(db *gorm.DB, c *gin.Context, req *CheckoutRequest) ([]pricing.Line, *models.Cart, error) {
	if req.UseCart {
		userID, ok := middleware.CallerID(c)
		if !ok {
			return nil, nil, &pricing.ValidationError{Reason: "use_cart requires an authenticated customer"}
		}
		var cart models.Cart
		if err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, &pricing.ValidationError{Reason: "cart is empty"}
			}
			return nil, nil, err
		}
		lines := make([]pricing.Line, 0, len(cart.Items))
		for _, item := range cart.Items {
			lines = append(lines, pricing.Line{
				RestaurantID:  item.RestaurantID,
				MenuItemID:    item.MenuItemID,
				ItemName:      item.ItemName,
				UnitPrice:     item.UnitPrice,
				Quantity:      item.Quantity,
				Customization: item.Customization,
			})
		}
		return lines, &cart, nil
	}

	lines := make([]pricing.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		line := pricing.Line{
			RestaurantID:  l.RestaurantID,
			MenuItemID:    l.MenuItemID,
			ItemName:      l.ItemName,
			UnitPrice:     l.UnitPrice,
			Quantity:      l.Quantity,
			Customization: l.Customization,
		}
		// Inline lines are re-priced from the menu where possible so a
		// tampered client price never reaches the split.
		var item models.MenuItem
		if err := db.First(&item, "id = ?", l.MenuItemID).Error; err == nil {
			line.UnitPrice = item.Price
			if line.ItemName == "" {
				line.ItemName = item.Name
			}
		}
		lines = append(lines, line)
	}
	return lines, nil, nil
}

// resolvePromo looks the promo code up; an unknown or inactive code is an
// actionable checkout failure, not a silent zero discount.
func resolvePromo(db *gorm.DB, code string) (*pricing.Discount, error) {
	if code == "" {
		return nil, nil
	}
	var promo models.PromoCode
	if err := db.Where("code = ? AND active", code).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &pricing.ValidationError{Reason: "promo code is not valid"}
		}
		return nil, err
	}
	return &pricing.Discount{
		Type:  pricing.DiscountType(promo.Type),
		Value: promo.Value,
	}, nil
}

func quoteRequest(db *gorm.DB, zoneSvc *zones.Service, c *gin.Context, req *CheckoutRequest) ([]pricing.Line, *models.Cart, *models.DeliveryZone, pricing.Quote, error) {
	lines, cart, err := resolveLines(db, c, req)
	if err != nil {
		return nil, nil, nil, pricing.Quote{}, err
	}
	if err := pricing.Validate(lines); err != nil {
		return nil, nil, nil, pricing.Quote{}, err
	}

	zone, err := zoneSvc.Zone(c.Request.Context(), req.PostalCode)
	if err != nil {
		return nil, nil, nil, pricing.Quote{}, err
	}

	promo, err := resolvePromo(db, req.PromoCode)
	if err != nil {
		return nil, nil, nil, pricing.Quote{}, err
	}

	tax := zoneSvc.TaxInput(c.Request.Context(), lines, zone, req.PostalCode)
	tip := pricing.TipInput{
		Percent: req.TipPercent,
		Custom:  decimal.NullDecimal{Decimal: req.CustomTip, Valid: req.CustomTip.IsPositive()},
	}

	quote, err := pricing.Price(lines, promo, zone.DeliveryFee, tax, tip)
	if err != nil {
		return nil, nil, nil, pricing.Quote{}, err
	}
	return lines, cart, zone, quote, nil
}

func respondQuoteError(c *gin.Context, err error) {
	var verr *pricing.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, zones.ErrNotServed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "this address is not in a served delivery zone"})
	default:
		logrus.WithError(err).Error("checkout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed, please try again"})
	}
}

// PreviewHandler prices the cart without persisting anything. Caller-supplied
// totals never enter the system; this is the only quote the UI should show.
func PreviewHandler(db *gorm.DB, zoneSvc *zones.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		lines, _, _, quote, err := quoteRequest(db, zoneSvc, c, &req)
		if err != nil {
			respondQuoteError(c, err)
			return
		}

		groups, err := pricing.Split(lines, quote.Discount, quote.DeliveryFee, quote.Tax)
		if err != nil {
			respondQuoteError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"quote":  quote,
			"groups": groups,
		})
	}
}

// SubmitHandler turns the priced cart into one persisted order per
// restaurant plus a checkout group carrying the tip, then emits
// order.created for each. The combined total in the response is recomputed
// from the persisted rows and is the amount the payment step must present.
func SubmitHandler(db *gorm.DB, bus *events.Bus, zoneSvc *zones.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		if req.DeliveryAddress == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "delivery_address is required"})
			return
		}

		userID, authenticated := middleware.CallerID(c)
		if !authenticated && (req.GuestName == "" || req.GuestEmail == "") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "guest checkout requires name and email"})
			return
		}

		lines, cart, _, quote, err := quoteRequest(db, zoneSvc, c, &req)
		if err != nil {
			respondQuoteError(c, err)
			return
		}

		groups, err := pricing.Split(lines, quote.Discount, quote.DeliveryFee, quote.Tax)
		if err != nil {
			respondQuoteError(c, err)
			return
		}
		combined := pricing.CombinedTotal(groups).Add(quote.Tip)

		group := models.CheckoutGroup{
			Subtotal:       quote.Subtotal,
			DiscountAmount: quote.Discount,
			DeliveryFee:    quote.DeliveryFee,
			Tax:            quote.Tax,
			Tip:            quote.Tip,
			CombinedTotal:  combined,
			PromoCode:      req.PromoCode,
		}
		if authenticated {
			group.UserID = &userID
		}

		var orders []models.Order
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			for _, g := range groups {
				restaurantID := g.RestaurantID
				order := models.Order{
					OrderNumber:     generateOrderNumber(),
					CheckoutGroupID: &group.ID,
					RestaurantID:    &restaurantID,
					Subtotal:        g.Subtotal,
					DiscountShare:   g.DiscountShare,
					DeliveryFee:     g.DeliveryFeeShare,
					TaxShare:        g.TaxShare,
					Tip:             decimal.Zero,
					Total:           g.Total,
					DeliveryAddress: req.DeliveryAddress,
					PostalCode:      req.PostalCode,
					Status:          models.OrderStatusPending,
					PaymentStatus:   models.PaymentStatusPending,
				}
				if authenticated {
					order.UserID = &userID
				} else {
					order.GuestName = req.GuestName
					order.GuestEmail = req.GuestEmail
					order.GuestPhone = req.GuestPhone
				}
				for _, l := range g.Lines {
					order.Items = append(order.Items, models.OrderItem{
						MenuItemID:    l.MenuItemID,
						RestaurantID:  l.RestaurantID,
						ItemName:      l.ItemName,
						UnitPrice:     l.UnitPrice,
						Quantity:      l.Quantity,
						Customization: l.Customization,
					})
				}
				if err := tx.Create(&order).Error; err != nil {
					return err
				}
				orders = append(orders, order)
			}

			if cart != nil {
				if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			logrus.WithError(err).Error("failed to persist checkout")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed, please try again"})
			return
		}

		summaries := make([]orderSummary, len(orders))
		for i, o := range orders {
			summaries[i] = orderSummary{
				ID:          o.ID,
				OrderNumber: o.OrderNumber,
				Restaurant:  *o.RestaurantID,
				Total:       o.Total,
			}
			bus.Publish(events.TopicOrderCreated, o)
			notify.Create(db, bus, "order.created", "New order",
				"Order "+o.OrderNumber+" placed", "order", o.OrderNumber)
		}

		c.JSON(http.StatusCreated, gin.H{
			"checkout_group_id": group.ID,
			"orders":            summaries,
			"quote":             quote,
			"combined_total":    combined,
			"amount_minor":      pricing.MinorUnits(combined),
		})
	}
}
