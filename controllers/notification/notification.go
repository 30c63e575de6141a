package notificationControllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wglickman33/mykosherdelivery-sub001/middleware"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

// ListHandler returns notifications newest first, each annotated with
// whether the calling admin has read it.
func ListHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := middleware.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var notifications []models.AdminNotification
		if err := db.Preload("Reads", "admin_id = ?", adminID).
			Order("created_at DESC").
			Limit(200).
			Find(&notifications).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch notifications"})
			return
		}

		type annotated struct {
			models.AdminNotification
			Read bool `json:"read"`
		}
		out := make([]annotated, len(notifications))
		for i, n := range notifications {
			out[i] = annotated{AdminNotification: n, Read: len(n.Reads) > 0}
			out[i].Reads = nil
		}
		c.JSON(http.StatusOK, out)
	}
}

// MarkReadHandler sets the per-admin read marker. Re-reading is a no-op.
func MarkReadHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := middleware.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
			return
		}

		var n models.AdminNotification
		if err := db.First(&n, uint(id)).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}

		read := models.NotificationRead{
			NotificationID: n.ID,
			AdminID:        adminID,
			ReadAt:         time.Now(),
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&read).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark read"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "marked read"})
	}
}
