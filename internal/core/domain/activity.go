package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a unit of logged work, either entered through the dashboard
// or derived from an inbound WhatsApp message.
type Activity struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	Description string
	Source      ActivitySource
	GeofenceID  *uuid.UUID // set when the activity was reported inside a geofence
	OccurredAt  time.Time
	CreatedAt   time.Time
}

type ActivitySource string

const (
	ActivitySourceDashboard ActivitySource = "dashboard"
	ActivitySourceWhatsApp  ActivitySource = "whatsapp"
)
