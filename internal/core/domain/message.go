package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a WhatsApp message that passed through the Twilio integration.
type Message struct {
	ID          uuid.UUID
	TwilioSID   string // MessageSid, unique per Twilio delivery
	Direction   MessageDirection
	From        string
	To          string
	Body        string
	ProfileName string
	UserID      *uuid.UUID // resolved from the sender's phone, if known
	ReceivedAt  time.Time
}

type MessageDirection string

const (
	MessageInbound  MessageDirection = "inbound"
	MessageOutbound MessageDirection = "outbound"
)
