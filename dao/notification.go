package dao

import (
	"context"

	"github.com/petroshong/calofeed-sub001/models"
	"gorm.io/gorm"
)

type NotificationDAO struct {
	Repo[models.Notification]
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{Repo: NewRepo[models.Notification](db)}
}

func (d *NotificationDAO) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*models.Notification, error) {
	query := d.Db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var items []*models.Notification
	err := query.Order("created_at DESC").Find(&items).Error
	return items, err
}

// MarkRead ids 为空时标记全部
func (d *NotificationDAO) MarkRead(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		_, err := d.UpdateWhere(ctx, map[string]any{"is_read": true}, "user_id = ? AND is_read = ?", userID, false)
		return err
	}
	_, err := d.UpdateWhere(ctx, map[string]any{"is_read": true}, "user_id = ? AND id IN ?", userID, ids)
	return err
}
