package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `id, sender_id, recipient_id, content, is_read, created_at`

func scanMessage(row interface{ Scan(...any) error }) (*domain.Message, error) {
	var m domain.Message
	var readInt int
	if err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &readInt, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Read = readInt != 0
	return &m, nil
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (sender_id, recipient_id, content) VALUES (?, ?, ?)`,
		m.SenderID, m.RecipientID, m.Content,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create message: %w", err)
	}
	return result.LastInsertId()
}

func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return m, nil
}

// Conversation returns the messages exchanged between two accounts, oldest
// first.
func (r *MessageRepository) Conversation(ctx context.Context, a, b int64, limit int) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`,
		a, b, b, a, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// Inbox returns the most recent messages received by an account.
func (r *MessageRepository) Inbox(ctx context.Context, recipientID int64, limit int) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE recipient_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		recipientID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func (r *MessageRepository) MarkRead(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id = ? AND is_read = 0`, recipientID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}
