package orderControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wglickman33/mykosherdelivery-sub001/events"
	"github.com/wglickman33/mykosherdelivery-sub001/fulfillment"
	"github.com/wglickman33/mykosherdelivery-sub001/middleware"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
	"github.com/wglickman33/mykosherdelivery-sub001/notify"
)

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAllOrdersHandler lists every order, newest first (admin/staff).
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GetMyOrdersHandler lists the authenticated customer's orders.
func GetMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var orders []models.Order
		if err := db.Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GetOrderHandler fetches a single order by numeric id or order number.
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("orderID")
		var order models.Order
		if err := db.Preload("Items").
			Where("id::text = ? OR order_number = ?", key, key).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
			return
		}

		// Customers may only read their own orders.
		if role := middleware.CallerRole(c); !role.Staffish() {
			userID, _ := middleware.CallerID(c)
			if order.UserID == nil || *order.UserID != userID {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateStatusHandler is the manual transition source. Staff and admins may
// set any status; customers may only cancel early. Setting the current
// status again acknowledges without emitting anything.
func UpdateStatusHandler(db *gorm.DB, bus *events.Bus) gin.HandlerFunc {
	machine := &fulfillment.Machine{DB: db, Bus: bus}
	return func(c *gin.Context) {
		key := c.Param("orderID")
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		target := models.OrderStatus(req.Status)
		if !models.CanonicalStatuses[target] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + req.Status})
			return
		}

		var order models.Order
		if err := db.Where("id::text = ? OR order_number = ?", key, key).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
			return
		}

		role := middleware.CallerRole(c)
		if !role.Staffish() {
			userID, _ := middleware.CallerID(c)
			if order.UserID == nil || *order.UserID != userID {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
		}
		if err := fulfillment.Authorize(role, order.Status, target); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		changed, err := machine.Apply(&order, target, fulfillment.SourceManual)
		if err != nil {
			var ite *fulfillment.InvalidTransitionError
			if errors.As(err, &ite) {
				c.JSON(http.StatusBadRequest, gin.H{"error": ite.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}
		if changed {
			notify.Create(db, bus, "order.updated", "Order status changed",
				"Order "+order.OrderNumber+" is now "+string(target), "order", order.OrderNumber)
		}

		c.JSON(http.StatusOK, gin.H{
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"changed":      changed,
		})
	}
}
