package dao

import (
	"context"
	"errors"
	"time"

	"github.com/petroshong/calofeed-sub001/models"
	"gorm.io/gorm"
)

type UserFollowDAO struct {
	Repo[models.UserFollow]
}

func NewUserFollowDAO(db *gorm.DB) *UserFollowDAO {
	return &UserFollowDAO{
		Repo: NewRepo[models.UserFollow](db),
	}
}

// IsFollowing 检查是否已关注
func (d *UserFollowDAO) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return d.IsExist(ctx, "follower_id = ? AND following_id = ? AND status = 1", followerID, followingID)
}

// SetStatus 设置关注状态并维护双方计数，状态未变化时返回 false
func (d *UserFollowDAO) SetStatus(ctx context.Context, followerID, followingID string, following bool) (bool, error) {
	status := 0
	if following {
		status = 1
	}
	changed := false
	err := d.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.UserFollow
		err := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Limit(1).Find(&item).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		now := time.Now()
		switch {
		case item.ID == 0 && !following:
			return nil
		case item.ID == 0:
			item = models.UserFollow{FollowerID: followerID, FollowingID: followingID, Status: 1, CreatedAt: now, UpdatedAt: now}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		case item.Status == status:
			return nil
		default:
			err := tx.Model(&models.UserFollow{}).Where("id = ?", item.ID).
				Updates(map[string]any{"status": status, "updated_at": now}).Error
			if err != nil {
				return err
			}
		}
		changed = true
		delta := 1
		if !following {
			delta = -1
		}
		if err := tx.Model(&models.Profile{}).Where("id = ?", followerID).
			Update("following_count", gorm.Expr("following_count + ?", delta)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Profile{}).Where("id = ?", followingID).
			Update("followers_count", gorm.Expr("followers_count + ?", delta)).Error
	})
	return changed, err
}

// FollowerIDs 粉丝列表，按关注时间倒序
func (d *UserFollowDAO) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := d.Db.WithContext(ctx).Model(&models.UserFollow{}).
		Where("following_id = ? AND status = 1", userID).
		Order("created_at DESC").
		Pluck("follower_id", &ids).Error
	return ids, err
}

// FollowingIDs 关注列表，按关注时间倒序
func (d *UserFollowDAO) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := d.Db.WithContext(ctx).Model(&models.UserFollow{}).
		Where("follower_id = ? AND status = 1", userID).
		Order("created_at DESC").
		Pluck("following_id", &ids).Error
	return ids, err
}
