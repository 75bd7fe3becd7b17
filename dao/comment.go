package dao

import (
	"context"

	"github.com/petroshong/calofeed-sub001/models"
	"gorm.io/gorm"
)

type Comment struct {
	Repo[models.Comment]
}

func NewComment(db *gorm.DB) *Comment {
	return &Comment{
		Repo: NewRepo[models.Comment](db),
	}
}

// Create 写入评论并累加动态评论数
func (d *Comment) Create(ctx context.Context, comment *models.Comment) error {
	return d.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Meal{}).Where("id = ?", comment.MealID).
			Update("comments_count", gorm.Expr("comments_count + 1")).Error
	})
}

// GetByID 根据ID获取评论
func (d *Comment) GetByID(ctx context.Context, commentID string) (*models.Comment, error) {
	return d.FindByWhere(ctx, "id = ? AND status = 1", commentID)
}

// ListByMeal 按时间正序
func (d *Comment) ListByMeal(ctx context.Context, mealID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := d.Db.WithContext(ctx).
		Where("meal_id = ? AND status = 1", mealID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// SoftDelete 标记删除并扣减评论数
func (d *Comment) SoftDelete(ctx context.Context, commentID string) error {
	return d.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Comment
		if err := tx.Where("id = ? AND status = 1", commentID).First(&c).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).Update("status", 0).Error; err != nil {
			return err
		}
		return tx.Model(&models.Meal{}).Where("id = ? AND comments_count > 0", c.MealID).
			Update("comments_count", gorm.Expr("comments_count - 1")).Error
	})
}
