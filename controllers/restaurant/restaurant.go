package restaurantControllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

// ListRestaurantsHandler returns active restaurants, newest first.
func ListRestaurantsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var restaurants []models.Restaurant
		if err := db.Where("active").Order("created_at DESC").Find(&restaurants).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch restaurants"})
			return
		}
		c.JSON(http.StatusOK, restaurants)
	}
}

// GetMenuHandler returns a restaurant's menu with optional search, price
// range, and sorting. Unavailable items are hidden unless ?all=true.
func GetMenuHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID := c.Param("id")

		var restaurant models.Restaurant
		if err := db.First(&restaurant, "id = ?", restaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "restaurant not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch restaurant"})
			return
		}

		query := db.Model(&models.MenuItem{}).Where("restaurant_id = ?", restaurantID)
		if c.Query("all") != "true" {
			query = query.Where("available")
		}
		if search := c.Query("search"); search != "" {
			query = query.Where("name ILIKE ?", "%"+search+"%")
		}
		if minStr := c.Query("min_price"); minStr != "" {
			min, err := decimal.NewFromString(minStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_price"})
				return
			}
			query = query.Where("price >= ?", min)
		}
		if maxStr := c.Query("max_price"); maxStr != "" {
			max, err := decimal.NewFromString(maxStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_price"})
				return
			}
			query = query.Where("price <= ?", max)
		}

		sortBy := c.DefaultQuery("sort_by", "name")
		if sortBy != "name" && sortBy != "price" && sortBy != "created_at" {
			sortBy = "name"
		}
		order := strings.ToLower(c.DefaultQuery("order", "asc"))
		if order != "asc" && order != "desc" {
			order = "asc"
		}

		var items []models.MenuItem
		if err := query.Order(sortBy + " " + order).Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch menu"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"restaurant": restaurant, "items": items})
	}
}

type restaurantInput struct {
	Name   string `json:"name" binding:"required"`
	Active *bool  `json:"active"`
}

// CreateRestaurantHandler registers a restaurant (admin only).
func CreateRestaurantHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input restaurantInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}
		restaurant := models.Restaurant{
			ID:     uuid.NewString(),
			Name:   input.Name,
			Active: input.Active == nil || *input.Active,
		}
		if err := db.Create(&restaurant).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create restaurant"})
			return
		}
		c.JSON(http.StatusCreated, restaurant)
	}
}

type menuItemInput struct {
	Name      string `json:"name" binding:"required"`
	Price     string `json:"price" binding:"required"`
	Available *bool  `json:"available"`
}

// CreateMenuItemHandler adds an item to a restaurant's menu (admin only).
func CreateMenuItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input menuItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}
		price, err := decimal.NewFromString(input.Price)
		if err != nil || price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}

		restaurantID := c.Param("id")
		var restaurant models.Restaurant
		if err := db.First(&restaurant, "id = ?", restaurantID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "restaurant not found"})
			return
		}

		item := models.MenuItem{
			ID:           uuid.NewString(),
			RestaurantID: restaurantID,
			Name:         input.Name,
			Price:        price.Round(2),
			Available:    input.Available == nil || *input.Available,
		}
		if err := db.Create(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create menu item"})
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

type menuItemUpdate struct {
	Name      *string `json:"name"`
	Price     *string `json:"price"`
	Available *bool   `json:"available"`
}

// UpdateMenuItemHandler patches name, price, or availability (admin only).
// Carts and orders keep the price they captured; only future adds see it.
func UpdateMenuItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input menuItemUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}

		var item models.MenuItem
		if err := db.First(&item, "id = ?", c.Param("itemID")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}

		updates := map[string]interface{}{}
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Price != nil {
			price, err := decimal.NewFromString(*input.Price)
			if err != nil || price.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
				return
			}
			updates["price"] = price.Round(2)
		}
		if input.Available != nil {
			updates["available"] = *input.Available
		}
		if len(updates) == 0 {
			c.JSON(http.StatusOK, item)
			return
		}
		if err := db.Model(&item).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update menu item"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DeleteMenuItemHandler removes a menu item (admin only). Existing order
// rows carry their own copies of name and price, so history survives.
func DeleteMenuItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Delete(&models.MenuItem{}, "id = ?", c.Param("itemID"))
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete menu item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "menu item deleted"})
	}
}
