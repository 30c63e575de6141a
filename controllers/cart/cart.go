package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wglickman33/mykosherdelivery-sub001/middleware"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

type CartItemInput struct {
	MenuItemID    string `json:"menu_item_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	Customization string `json:"customization"`
}

func callerCart(db *gorm.DB, c *gin.Context, create bool) (*models.Cart, bool) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	var cart models.Cart
	err := db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if !create {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
			return nil, false
		}
		cart = models.Cart{UserID: userID}
		if err := db.Create(&cart).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create cart"})
			return nil, false
		}
		return &cart, true
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cart"})
		return nil, false
	}
	return &cart, true
}

// UpsertItemHandler adds a menu item to the cart or updates its quantity.
// Price, name, and restaurant are captured from the menu at add time.
func UpsertItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}

		var item models.MenuItem
		if err := db.First(&item, "id = ? AND available", input.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "menu item is not available"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to validate menu item"})
			return
		}

		cart, ok := callerCart(db, c, true)
		if !ok {
			return
		}

		var existing models.CartItem
		err := db.Where("cart_id = ? AND menu_item_id = ?", cart.CartID, input.MenuItemID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			newItem := models.CartItem{
				CartID:        cart.CartID,
				MenuItemID:    item.ID,
				RestaurantID:  item.RestaurantID,
				ItemName:      item.Name,
				UnitPrice:     item.Price,
				Quantity:      input.Quantity,
				Customization: input.Customization,
				AddedAt:       time.Now(),
			}
			if err := db.Create(&newItem).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item to cart"})
				return
			}
			c.JSON(http.StatusCreated, newItem)
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cart item"})
			return
		}

		existing.Quantity = input.Quantity
		existing.Customization = input.Customization
		existing.AddedAt = time.Now()
		if err := db.Save(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart item"})
			return
		}
		c.JSON(http.StatusOK, existing)
	}
}

// DeleteItemHandler removes one menu item from the cart.
func DeleteItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, ok := callerCart(db, c, false)
		if !ok {
			return
		}

		result := db.Where("cart_id = ? AND menu_item_id = ?", cart.CartID, c.Param("menu_item_id")).
			Delete(&models.CartItem{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "cart item deleted"})
	}
}

// ClearHandler empties the cart.
func ClearHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, ok := callerCart(db, c, false)
		if !ok {
			return
		}
		if err := db.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}

// GetHandler returns the cart's items.
func GetHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, ok := callerCart(db, c, true)
		if !ok {
			return
		}
		var items []models.CartItem
		if err := db.Where("cart_id = ?", cart.CartID).Order("added_at").Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}
