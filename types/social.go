package types

import "time"

// Follow 关注关系，单向
type Follow struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Comment 餐食评论
type Comment struct {
	ID        string    `json:"id"`
	MealID    string    `json:"meal_id"`
	UserID    string    `json:"user_id"`
	User      Owner     `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type NewComment struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

type NotificationKind string

const (
	NotifyLike      NotificationKind = "like"
	NotifyComment   NotificationKind = "comment"
	NotifyFollow    NotificationKind = "follow"
	NotifyChallenge NotificationKind = "challenge"
)

// Notification 站内通知
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	ActorID   string           `json:"actor_id"`
	Kind      NotificationKind `json:"kind"`
	MealID    string           `json:"meal_id,omitempty"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

type MarkReadRequest struct {
	IDs []string `json:"ids" validate:"max=200"`
}
