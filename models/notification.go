package models

import "time"

// AdminNotification is append-only; only the per-admin read markers mutate.
type AdminNotification struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	Type      string             `gorm:"index" json:"type"`
	Title     string             `json:"title"`
	Message   string             `json:"message"`
	RefType   string             `json:"ref_type"` // e.g. "order", "payment_intent"
	RefID     string             `json:"ref_id"`
	Reads     []NotificationRead `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"reads,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

type NotificationRead struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	NotificationID uint      `gorm:"uniqueIndex:idx_notification_admin" json:"notification_id"`
	AdminID        string    `gorm:"uniqueIndex:idx_notification_admin" json:"admin_id"`
	ReadAt         time.Time `json:"read_at"`
}
