package models

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Phone     string    `json:"phone"`
	Role      Role      `gorm:"type:VARCHAR(20);default:'customer'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Staffish reports whether r may set arbitrary fulfillment statuses.
func (r Role) Staffish() bool {
	return r == RoleStaff || r == RoleAdmin
}
