// Package notify creates admin notifications and announces them on the bus.
// Notification creation is always best-effort: producers call it after their
// primary write has committed, and a failure here is logged, never propagated.
package notify

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wglickman33/mykosherdelivery-sub001/events"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

func Create(db *gorm.DB, bus *events.Bus, typ, title, message, refType, refID string) {
	n := models.AdminNotification{
		Type:    typ,
		Title:   title,
		Message: message,
		RefType: refType,
		RefID:   refID,
	}
	if err := db.Create(&n).Error; err != nil {
		logrus.WithError(err).WithField("type", typ).Warn("failed to create admin notification")
		return
	}
	bus.Publish(events.TopicNotificationCreated, n)
}
