package models

import (
	"time"

	"gorm.io/datatypes"
)

// Meal 动态，作者信息在发布时冻结
type Meal struct {
	ID               string                      `gorm:"column:id;primaryKey;size:32" json:"id"`
	UserID           string                      `gorm:"column:user_id;not null;size:64;index:idx_user_created,priority:1" json:"user_id"`
	OwnerUsername    string                      `gorm:"column:owner_username;size:20" json:"owner_username"`
	OwnerDisplayName string                      `gorm:"column:owner_display_name;size:64" json:"owner_display_name"`
	OwnerAvatar      string                      `gorm:"column:owner_avatar" json:"owner_avatar"`
	ImageURL         string                      `gorm:"column:image_url;not null" json:"image_url"`
	ImageKey         string                      `gorm:"column:image_key" json:"image_key"`
	Description      string                      `gorm:"column:description;type:text" json:"description"`
	Calories         float64                     `gorm:"column:calories" json:"calories"`
	Protein          float64                     `gorm:"column:protein" json:"protein"`
	Carbs            float64                     `gorm:"column:carbs" json:"carbs"`
	Fat              float64                     `gorm:"column:fat" json:"fat"`
	MealType         string                      `gorm:"column:meal_type;size:16" json:"meal_type"`
	Location         string                      `gorm:"column:location" json:"location"`
	Tags             datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Visibility       string                      `gorm:"column:visibility;size:16;index" json:"visibility"` // public/friends/private
	LikesCount       int                         `gorm:"column:likes_count;default:0" json:"likes_count"`
	CommentsCount    int                         `gorm:"column:comments_count;default:0" json:"comments_count"`
	SharesCount      int                         `gorm:"column:shares_count;default:0" json:"shares_count"`
	ViewsCount       int                         `gorm:"column:views_count;default:0" json:"views_count"`
	CreatedAt        time.Time                   `gorm:"column:created_at;index:idx_user_created,priority:2" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Meal) TableName() string { return "meals" }

// MealLike 点赞记录
// 唯一键: meal_id + user_id
// status: 1=已点赞, 0=已取消
type MealLike struct {
	ID        uint64    `gorm:"column:id;primaryKey;AUTO_INCREMENT" json:"id"`
	MealID    string    `gorm:"column:meal_id;not null;size:32;uniqueIndex:uk_meal_user,priority:1" json:"meal_id"`
	UserID    string    `gorm:"column:user_id;not null;size:64;uniqueIndex:uk_meal_user,priority:2" json:"user_id"`
	Status    uint8     `gorm:"column:status;not null;default:1" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (MealLike) TableName() string { return "meal_likes" }

// MealBookmark 收藏记录，status 语义同 MealLike
type MealBookmark struct {
	ID        uint64    `gorm:"column:id;primaryKey;AUTO_INCREMENT" json:"id"`
	MealID    string    `gorm:"column:meal_id;not null;size:32;uniqueIndex:uk_meal_user,priority:1" json:"meal_id"`
	UserID    string    `gorm:"column:user_id;not null;size:64;uniqueIndex:uk_meal_user,priority:2" json:"user_id"`
	Status    uint8     `gorm:"column:status;not null;default:1" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (MealBookmark) TableName() string { return "meal_bookmarks" }

// JSONTags 标签列，更新时需要显式包装
type JSONTags = datatypes.JSONSlice[string]
