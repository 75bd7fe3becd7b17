package dao

import (
	"context"
	"errors"
	"time"

	"github.com/petroshong/calofeed-sub001/models"
	"gorm.io/gorm"
)

type MealDAO struct {
	Repo[models.Meal]
}

func NewMealDAO(db *gorm.DB) *MealDAO {
	return &MealDAO{Repo: NewRepo[models.Meal](db)}
}

// MealFilter 为空的条件不参与查询
type MealFilter struct {
	IDs        []string
	UserIDs    []string
	Visibility []string
	Limit      int
	Offset     int
}

// List 按发布时间倒序
func (d *MealDAO) List(ctx context.Context, f MealFilter) ([]*models.Meal, error) {
	query := d.Db.WithContext(ctx).Model(&models.Meal{})
	if len(f.IDs) > 0 {
		query = query.Where("id IN ?", f.IDs)
	}
	if len(f.UserIDs) > 0 {
		query = query.Where("user_id IN ?", f.UserIDs)
	}
	if len(f.Visibility) > 0 {
		query = query.Where("visibility IN ?", f.Visibility)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}
	var meals []*models.Meal
	err := query.Order("created_at DESC").Find(&meals).Error
	return meals, err
}

func (d *MealDAO) UpdateColumns(ctx context.Context, id string, cols map[string]any) error {
	return d.Db.WithContext(ctx).Model(&models.Meal{}).Where("id = ?", id).Updates(cols).Error
}

func (d *MealDAO) Delete(ctx context.Context, id string) error {
	return d.Db.WithContext(ctx).Where("id = ?", id).Delete(&models.Meal{}).Error
}

// Owner 动态作者，不存在返回空串
func (d *MealDAO) Owner(ctx context.Context, id string) (string, error) {
	var owners []string
	err := d.Db.WithContext(ctx).Model(&models.Meal{}).Where("id = ?", id).Limit(1).Pluck("user_id", &owners).Error
	if err != nil || len(owners) == 0 {
		return "", err
	}
	return owners[0], nil
}

type MealLikeDAO struct {
	Repo[models.MealLike]
}

func NewMealLikeDAO(db *gorm.DB) *MealLikeDAO {
	return &MealLikeDAO{Repo: NewRepo[models.MealLike](db)}
}

// SetStatus 设置点赞状态并同步动态点赞数，状态未变化时返回 false
func (d *MealLikeDAO) SetStatus(ctx context.Context, mealID, userID string, liked bool) (bool, error) {
	status := boolStatus(liked)
	changed := false
	err := d.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MealLike
		err := tx.Where("meal_id = ? AND user_id = ?", mealID, userID).Limit(1).Find(&item).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		now := time.Now()
		switch {
		case item.ID == 0 && !liked:
			return nil
		case item.ID == 0:
			item = models.MealLike{MealID: mealID, UserID: userID, Status: status, CreatedAt: now, UpdatedAt: now}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		case item.Status == status:
			return nil
		default:
			err := tx.Model(&models.MealLike{}).Where("id = ?", item.ID).
				Updates(map[string]any{"status": status, "updated_at": now}).Error
			if err != nil {
				return err
			}
		}
		changed = true
		delta := 1
		if !liked {
			delta = -1
		}
		return tx.Model(&models.Meal{}).Where("id = ?", mealID).
			Update("likes_count", gorm.Expr("likes_count + ?", delta)).Error
	})
	return changed, err
}

// LikedIn 返回 mealIDs 中用户已点赞的部分
func (d *MealLikeDAO) LikedIn(ctx context.Context, userID string, mealIDs []string) ([]string, error) {
	var ids []string
	err := d.Db.WithContext(ctx).Model(&models.MealLike{}).
		Where("user_id = ? AND meal_id IN ? AND status = 1", userID, mealIDs).
		Pluck("meal_id", &ids).Error
	return ids, err
}

type MealBookmarkDAO struct {
	Repo[models.MealBookmark]
}

func NewMealBookmarkDAO(db *gorm.DB) *MealBookmarkDAO {
	return &MealBookmarkDAO{Repo: NewRepo[models.MealBookmark](db)}
}

// SetStatus 设置收藏状态，如果不存在则创建
func (d *MealBookmarkDAO) SetStatus(ctx context.Context, mealID, userID string, bookmarked bool) error {
	now := time.Now()
	res := d.Db.WithContext(ctx).Model(&models.MealBookmark{}).
		Where("meal_id = ? AND user_id = ?", mealID, userID).
		Updates(map[string]any{"status": boolStatus(bookmarked), "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 || !bookmarked {
		return nil
	}
	item := models.MealBookmark{MealID: mealID, UserID: userID, Status: 1, CreatedAt: now, UpdatedAt: now}
	return d.Db.WithContext(ctx).Create(&item).Error
}

func (d *MealBookmarkDAO) BookmarkedIn(ctx context.Context, userID string, mealIDs []string) ([]string, error) {
	var ids []string
	err := d.Db.WithContext(ctx).Model(&models.MealBookmark{}).
		Where("user_id = ? AND meal_id IN ? AND status = 1", userID, mealIDs).
		Pluck("meal_id", &ids).Error
	return ids, err
}

func boolStatus(on bool) uint8 {
	if on {
		return 1
	}
	return 0
}
