package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a staff member tracked by the dashboard.
type User struct {
	ID        uuid.UUID
	Name      string
	Phone     string // E.164, used to match inbound WhatsApp messages
	Role      UserRole
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleWorker  UserRole = "worker"
)
