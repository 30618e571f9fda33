package repositories

import (
	"context"

	"campus-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

// CreateFanOut inserts one notification row per recipient. Runs outside the
// originating transaction; a failure here never rolls back the mutation that
// triggered it.
func (r *NotificationRepository) CreateFanOut(ctx context.Context, n *models.CreateNotification) error {
	for _, recipientID := range n.RecipientIDs {
		_, err := r.DB.Exec(ctx,
			`INSERT INTO notifications(user_id, recipient_id, title, message,
                    resource_type, resource_id, notification_type)
             VALUES($1, $2, $3, $4, $5, $6, $7)`,
			n.UserID, recipientID, n.Title, n.Message,
			n.ResourceType, n.ResourceID, n.NotificationType)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int, unreadOnly bool) ([]*models.Notification, error) {
	query := `SELECT id, user_id, recipient_id, title, message, resource_type, resource_id,
                     notification_type, is_read, read_at, created_at
              FROM notifications WHERE recipient_id=$1`
	if unreadOnly {
		query += ` AND is_read=FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := r.DB.Query(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.RecipientID, &n.Title, &n.Message,
			&n.ResourceType, &n.ResourceID, &n.NotificationType, &n.IsRead, &n.ReadAt,
			&n.CreatedAt); err != nil {
			return nil, err
		}
		notifs = append(notifs, &n)
	}
	return notifs, rows.Err()
}

// MarkRead marks one notification read, scoped to the recipient so users
// cannot mark someone else's notifications.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE, read_at=NOW()
         WHERE id=$1 AND recipient_id=$2 AND is_read=FALSE`,
		id, recipientID)
	return err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE, read_at=NOW()
         WHERE recipient_id=$1 AND is_read=FALSE`,
		recipientID)
	return err
}

func (r *NotificationRepository) Delete(ctx context.Context, id, recipientID int) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM notifications WHERE id=$1 AND recipient_id=$2`, id, recipientID)
	return err
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID int) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND is_read=FALSE`,
		recipientID).Scan(&count)
	return count, err
}
