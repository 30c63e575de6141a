package webhookControllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wglickman33/mykosherdelivery-sub001/dispatch"
	"github.com/wglickman33/mykosherdelivery-sub001/events"
	"github.com/wglickman33/mykosherdelivery-sub001/fulfillment"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
	"github.com/wglickman33/mykosherdelivery-sub001/notify"
)

// DispatchHandler consumes the delivery provider's status webhook. The
// provider retries on non-2xx, so the handler answers 200 for both "applied"
// and "already consistent", reserving 4xx for input the provider must fix and
// 5xx for "retry me". Authentication happens in middleware before this runs.
func DispatchHandler(db *gorm.DB, bus *events.Bus) gin.HandlerFunc {
	machine := &fulfillment.Machine{DB: db, Bus: bus}
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		update, err := dispatch.Parse(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		target, err := dispatch.MapStatus(update.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Provider id first, platform order number as fallback; no match is
		// a 404, never a silent success.
		var order models.Order
		lookup := db.Where("dispatch_id = ?", update.ProviderID)
		if update.ProviderID == "" {
			lookup = db.Where("order_number = ?", update.Reference)
		}
		if err := lookup.First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) && update.ProviderID != "" && update.Reference != "" {
				err = db.Where("order_number = ?", update.Reference).First(&order).Error
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
				return
			}
		}

		// First contact from the provider: remember its id for future lookups.
		if order.DispatchID == nil && update.ProviderID != "" {
			if err := db.Model(&order).Update("dispatch_id", update.ProviderID).Error; err != nil {
				logrus.WithError(err).WithField("order", order.OrderNumber).
					Warn("failed to record dispatch id")
			}
		}

		changed, err := machine.Apply(&order, target, fulfillment.SourceDispatch)
		if err != nil {
			var ite *fulfillment.InvalidTransitionError
			if errors.As(err, &ite) {
				// Duplicate/stale deliveries against a terminal order are the
				// provider's retries at work; acknowledge and move on.
				if target == order.Status {
					c.JSON(http.StatusOK, gin.H{"status": order.Status, "changed": false})
					return
				}
				c.JSON(http.StatusBadRequest, gin.H{"error": ite.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply status"})
			return
		}
		if changed {
			notify.Create(db, bus, "order.updated", "Courier update",
				"Order "+order.OrderNumber+" is now "+string(target), "order", order.OrderNumber)
		}

		c.JSON(http.StatusOK, gin.H{"status": order.Status, "changed": changed})
	}
}
