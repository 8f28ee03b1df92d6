package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
	"github.com/workloadhq/insights/internal/infra/storage/resilience"
)

// MessageRepo implements storage.MessageRepository using PostgreSQL.
type MessageRepo struct {
	db *DB
}

// NewMessageRepo creates a new PostgreSQL message repository.
func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

type messageRow struct {
	ID          uuid.UUID     `db:"id"`
	TwilioSID   string        `db:"twilio_sid"`
	Direction   string        `db:"direction"`
	FromAddr    string        `db:"from_addr"`
	ToAddr      string        `db:"to_addr"`
	Body        string        `db:"body"`
	ProfileName string        `db:"profile_name"`
	UserID      uuid.NullUUID `db:"user_id"`
	ReceivedAt  time.Time     `db:"received_at"`
}

func (r messageRow) toDomain() *domain.Message {
	m := &domain.Message{
		ID:          r.ID,
		TwilioSID:   r.TwilioSID,
		Direction:   domain.MessageDirection(r.Direction),
		From:        r.FromAddr,
		To:          r.ToAddr,
		Body:        r.Body,
		ProfileName: r.ProfileName,
		ReceivedAt:  r.ReceivedAt,
	}
	if r.UserID.Valid {
		id := r.UserID.UUID
		m.UserID = &id
	}
	return m
}

// Save inserts a message record. Losing a webhook payload means losing the
// message forever (Twilio stops redelivering once we return 200), so the
// critical retry budget applies.
func (r *MessageRepo) Save(ctx context.Context, msg *domain.Message) error {
	var userID uuid.NullUUID
	if msg.UserID != nil {
		userID = uuid.NullUUID{UUID: *msg.UserID, Valid: true}
	}

	err := r.db.retry.Do(ctx, resilience.CriticalPolicy, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO messages (id, twilio_sid, direction, from_addr, to_addr, body, profile_name, user_id, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			msg.ID, msg.TwilioSID, string(msg.Direction), msg.From, msg.To,
			msg.Body, msg.ProfileName, userID, msg.ReceivedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// GetBySID retrieves a message by Twilio MessageSid.
func (r *MessageRepo) GetBySID(ctx context.Context, sid string) (*domain.Message, error) {
	row, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) (messageRow, error) {
			var row messageRow
			err := r.db.GetContext(ctx, &row, `
				SELECT id, twilio_sid, direction, from_addr, to_addr, body, profile_name, user_id, received_at
				FROM messages WHERE twilio_sid = $1`, sid)
			return row, err
		})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return row.toDomain(), nil
}

// ListRecent retrieves the most recent messages.
func (r *MessageRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Message, error) {
	rows, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) ([]messageRow, error) {
			var rows []messageRow
			err := r.db.SelectContext(ctx, &rows, `
				SELECT id, twilio_sid, direction, from_addr, to_addr, body, profile_name, user_id, received_at
				FROM messages ORDER BY received_at DESC LIMIT $1`, limit)
			return rows, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]*domain.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toDomain())
	}
	return messages, nil
}
