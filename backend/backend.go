// Package backend 定义托管后端的访问接口，具体实现见各子包。
package backend

import (
	"context"
	"io"

	"github.com/petroshong/calofeed-sub001/types"
)

// Unsubscriber 取消监听，可重复调用
type Unsubscriber func()

type AuthHandler func(event types.AuthEvent, session *types.Session)

// Identity 账号与资料
type Identity interface {
	// GetSession 没有会话时返回 nil, nil
	GetSession(ctx context.Context) (*types.Session, error)
	SignIn(ctx context.Context, email, password string) (*types.Session, error)
	// SignUp 需要邮箱验证时 session 为 nil
	SignUp(ctx context.Context, req types.SignUpRequest) (*types.AuthUser, *types.Session, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(h AuthHandler) Unsubscriber
	GetProfile(ctx context.Context, userID string) (*types.User, error)
	CreateProfile(ctx context.Context, user types.User) error
	UpdateProfile(ctx context.Context, userID string, patch types.UserPatch) (*types.User, error)
	CheckUsernameAvailable(ctx context.Context, username string) (bool, error)
	ResetPassword(ctx context.Context, email string) error
}

// MealQuery 为空的条件不参与过滤
type MealQuery struct {
	IDs        []string
	UserIDs    []string
	Visibility []types.Visibility
	Limit      int
	Offset     int
}

// Reactions 当前用户对一批餐食的点赞与收藏
type Reactions struct {
	Liked      map[string]bool
	Bookmarked map[string]bool
}

type MealStore interface {
	ListMeals(ctx context.Context, q MealQuery) ([]types.Meal, error)
	InsertMeal(ctx context.Context, meal types.Meal) error
	UpdateMeal(ctx context.Context, id string, patch types.MealPatch) error
	DeleteMeal(ctx context.Context, id string) error
	// SetMealCounter 写入分享数、浏览数这类本地计算好的绝对值
	SetMealCounter(ctx context.Context, id, counter string, value int) error
	SetLike(ctx context.Context, userID, mealID string, liked bool) error
	SetBookmark(ctx context.Context, userID, mealID string, bookmarked bool) error
	Reactions(ctx context.Context, userID string, mealIDs []string) (Reactions, error)
}

type SocialStore interface {
	// Follow 返回是否新建了关系
	Follow(ctx context.Context, followerID, followingID string) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	Followers(ctx context.Context, userID string) ([]string, error)
	Following(ctx context.Context, userID string) ([]string, error)

	InsertComment(ctx context.Context, c types.Comment) error
	GetComment(ctx context.Context, id string) (*types.Comment, error)
	ListComments(ctx context.Context, mealID string) ([]types.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	InsertNotification(ctx context.Context, n types.Notification) error
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]types.Notification, error)
	// MarkNotificationsRead ids 为空时全部标记为已读
	MarkNotificationsRead(ctx context.Context, userID string, ids []string) error
}

type ChallengeStore interface {
	// ListChallenges 带上 userID 的参与状态与进度
	ListChallenges(ctx context.Context, userID string) ([]types.Challenge, error)
	JoinChallenge(ctx context.Context, challengeID, userID string) (bool, error)
	LeaveChallenge(ctx context.Context, challengeID, userID string) (bool, error)
	UpdateChallengeProgress(ctx context.Context, challengeID, userID string, progress float64) error
	Leaderboard(ctx context.Context, challengeID string, limit int) ([]types.LeaderboardEntry, error)
}

// Store 远端关系型存储
type Store interface {
	MealStore
	SocialStore
	ChallengeStore
}

// ObjectStorage 图片等对象
type ObjectStorage interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, path string) error
}

type EventHandler func(types.RealtimeEvent)

// Subscription Stop 可重复调用
type Subscription interface {
	Start(ctx context.Context) error
	Stop()
}

type Realtime interface {
	Subscribe(cfg types.SubscriptionConfig, h EventHandler) Subscription
}

// Recognizer 图片食物识别
type Recognizer interface {
	Analyze(ctx context.Context, imageURL string) (*types.FoodAnalysis, error)
}

// Client 启动时按配置组装好的后端
type Client struct {
	Identity   Identity
	Store      Store
	Storage    ObjectStorage
	Realtime   Realtime
	Recognizer Recognizer
}
