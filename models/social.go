package models

import (
	"time"
)

// Profile 只读的用户资料，由身份服务维护
type Profile struct {
	ID             string `gorm:"column:id;primaryKey;size:64" json:"id"`
	Username       string `gorm:"column:username;size:20;uniqueIndex" json:"username"`
	DisplayName    string `gorm:"column:display_name;size:64" json:"display_name"`
	AvatarURL      string `gorm:"column:avatar_url" json:"avatar_url"`
	FollowersCount int    `gorm:"column:followers_count;default:0" json:"followers_count"`
	FollowingCount int    `gorm:"column:following_count;default:0" json:"following_count"`
}

func (Profile) TableName() string { return "profiles" }

type UserFollow struct {
	ID          uint64    `gorm:"column:id;primary_key;AUTO_INCREMENT" json:"id"`
	FollowerID  string    `gorm:"column:follower_id;not null;size:64;uniqueIndex:uk_follow,priority:1" json:"follower_id"`   // 关注人
	FollowingID string    `gorm:"column:following_id;not null;size:64;uniqueIndex:uk_follow,priority:2" json:"following_id"` // 被关注人
	Status      int       `gorm:"column:status;not null;default:1" json:"status"`                                            // 1:关注中 0:已取消
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (UserFollow) TableName() string {
	return "user_follow"
}

// Comment 评论表结构
type Comment struct {
	ID               string    `gorm:"column:id;primaryKey;size:32" json:"id"`
	MealID           string    `gorm:"column:meal_id;not null;size:32;index:idx_meal_created,priority:1" json:"meal_id"`
	UserID           string    `gorm:"column:user_id;not null;size:64" json:"user_id"`
	OwnerUsername    string    `gorm:"column:owner_username;size:20" json:"owner_username"`
	OwnerDisplayName string    `gorm:"column:owner_display_name;size:64" json:"owner_display_name"`
	OwnerAvatar      string    `gorm:"column:owner_avatar" json:"owner_avatar"`
	Content          string    `gorm:"column:content;type:text;not null" json:"content"`
	Status           int8      `gorm:"column:status;default:1" json:"status"` // 1-正常, 0-已删除
	CreatedAt        time.Time `gorm:"column:created_at;index:idx_meal_created,priority:2" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

type Notification struct {
	ID        string    `gorm:"column:id;primaryKey;size:32" json:"id"`
	UserID    string    `gorm:"column:user_id;not null;size:64;index:idx_user_read,priority:1" json:"user_id"` // 接收人
	ActorID   string    `gorm:"column:actor_id;size:64" json:"actor_id"`
	Kind      string    `gorm:"column:kind;size:16" json:"kind"`
	MealID    string    `gorm:"column:meal_id;size:32" json:"meal_id"`
	Message   string    `gorm:"column:message" json:"message"`
	IsRead    bool      `gorm:"column:is_read;default:false;index:idx_user_read,priority:2" json:"is_read"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
