// Package sqlstore 自建 MySQL 上的 backend.Store 实现
package sqlstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/dao"
	"github.com/petroshong/calofeed-sub001/models"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/pkg/snowflake"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ProviderSet = wire.NewSet(dao.ProviderSet, wire.Struct(new(Store), "*"))

type Store struct {
	Meals         *dao.MealDAO
	Likes         *dao.MealLikeDAO
	Bookmarks     *dao.MealBookmarkDAO
	Follows       *dao.UserFollowDAO
	Comments      *dao.Comment
	Notifications *dao.NotificationDAO
	Challenges    *dao.ChallengeDAO
	Participants  *dao.ParticipantDAO
	Profiles      *dao.ProfileDAO
}

var _ backend.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{
		Meals:         dao.NewMealDAO(db),
		Likes:         dao.NewMealLikeDAO(db),
		Bookmarks:     dao.NewMealBookmarkDAO(db),
		Follows:       dao.NewUserFollowDAO(db),
		Comments:      dao.NewComment(db),
		Notifications: dao.NewNotificationDAO(db),
		Challenges:    dao.NewChallengeDAO(db),
		Participants:  dao.NewParticipantDAO(db),
		Profiles:      dao.NewProfileDAO(db),
	}
}

// Migrate 建表，仅用于自建部署初始化
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Meal{},
		&models.MealLike{},
		&models.MealBookmark{},
		&models.UserFollow{},
		&models.Comment{},
		&models.Notification{},
		&models.Challenge{},
		&models.ChallengeParticipant{},
	)
}

// wrap 数据库错误归类
func wrap(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.NotFound("%s", msg)
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, context.DeadlineExceeded):
		return errs.Network(msg, err)
	default:
		return errs.Unknown(msg, err)
	}
}

func (s *Store) ListMeals(ctx context.Context, q backend.MealQuery) ([]types.Meal, error) {
	vis := make([]string, len(q.Visibility))
	for i, v := range q.Visibility {
		vis[i] = string(v)
	}
	rows, err := s.Meals.List(ctx, dao.MealFilter{
		IDs:        q.IDs,
		UserIDs:    q.UserIDs,
		Visibility: vis,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, wrap(err, "list meals")
	}
	out := make([]types.Meal, len(rows))
	for i, r := range rows {
		out[i] = fromMealModel(r)
	}
	return out, nil
}

func (s *Store) InsertMeal(ctx context.Context, meal types.Meal) error {
	return wrap(s.Meals.Create(ctx, toMealModel(meal)), "insert meal")
}

func (s *Store) UpdateMeal(ctx context.Context, id string, patch types.MealPatch) error {
	cols := mealColumns(patch)
	if len(cols) == 0 {
		return nil
	}
	return wrap(s.Meals.UpdateColumns(ctx, id, cols), "update meal")
}

func (s *Store) DeleteMeal(ctx context.Context, id string) error {
	return wrap(s.Meals.Delete(ctx, id), "delete meal")
}

func (s *Store) SetMealCounter(ctx context.Context, id, counter string, value int) error {
	switch counter {
	case "shares", "views":
	default:
		return errs.Validation(fmt.Sprintf("unknown counter %q", counter), nil)
	}
	return wrap(s.Meals.UpdateColumns(ctx, id, map[string]any{counter + "_count": value}), "update meal counter")
}

func (s *Store) SetLike(ctx context.Context, userID, mealID string, liked bool) error {
	changed, err := s.Likes.SetStatus(ctx, mealID, userID, liked)
	if err != nil {
		return wrap(err, "set like")
	}
	if changed && liked {
		owner, err := s.Meals.Owner(ctx, mealID)
		if err != nil {
			log.L.Warn("lookup meal owner failed", zap.String("meal_id", mealID), zap.Error(err))
			return nil
		}
		s.notify(ctx, owner, userID, types.NotifyLike, mealID, "liked your meal")
	}
	return nil
}

func (s *Store) SetBookmark(ctx context.Context, userID, mealID string, bookmarked bool) error {
	return wrap(s.Bookmarks.SetStatus(ctx, mealID, userID, bookmarked), "set bookmark")
}

func (s *Store) Reactions(ctx context.Context, userID string, mealIDs []string) (backend.Reactions, error) {
	r := backend.Reactions{Liked: map[string]bool{}, Bookmarked: map[string]bool{}}
	if userID == "" || len(mealIDs) == 0 {
		return r, nil
	}
	liked, err := s.Likes.LikedIn(ctx, userID, mealIDs)
	if err != nil {
		return r, wrap(err, "load likes")
	}
	for _, id := range liked {
		r.Liked[id] = true
	}
	marked, err := s.Bookmarks.BookmarkedIn(ctx, userID, mealIDs)
	if err != nil {
		return r, wrap(err, "load bookmarks")
	}
	for _, id := range marked {
		r.Bookmarked[id] = true
	}
	return r, nil
}

func (s *Store) Follow(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == followingID {
		return false, errs.Validation("you cannot follow yourself", nil)
	}
	changed, err := s.Follows.SetStatus(ctx, followerID, followingID, true)
	if err != nil {
		return false, wrap(err, "follow")
	}
	if changed {
		s.notify(ctx, followingID, followerID, types.NotifyFollow, "", "started following you")
	}
	return changed, nil
}

func (s *Store) Unfollow(ctx context.Context, followerID, followingID string) (bool, error) {
	changed, err := s.Follows.SetStatus(ctx, followerID, followingID, false)
	return changed, wrap(err, "unfollow")
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	ok, err := s.Follows.IsFollowing(ctx, followerID, followingID)
	return ok, wrap(err, "check follow")
}

func (s *Store) Followers(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.Follows.FollowerIDs(ctx, userID)
	return ids, wrap(err, "list followers")
}

func (s *Store) Following(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.Follows.FollowingIDs(ctx, userID)
	return ids, wrap(err, "list following")
}

func (s *Store) InsertComment(ctx context.Context, c types.Comment) error {
	if err := s.Comments.Create(ctx, toCommentModel(c)); err != nil {
		return wrap(err, "insert comment")
	}
	owner, err := s.Meals.Owner(ctx, c.MealID)
	if err != nil {
		log.L.Warn("lookup meal owner failed", zap.String("meal_id", c.MealID), zap.Error(err))
		return nil
	}
	s.notify(ctx, owner, c.UserID, types.NotifyComment, c.MealID, "commented on your meal")
	return nil
}

func (s *Store) GetComment(ctx context.Context, id string) (*types.Comment, error) {
	m, err := s.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "comment "+id+" not found")
	}
	c := fromCommentModel(m)
	return &c, nil
}

func (s *Store) ListComments(ctx context.Context, mealID string) ([]types.Comment, error) {
	rows, err := s.Comments.ListByMeal(ctx, mealID)
	if err != nil {
		return nil, wrap(err, "list comments")
	}
	out := make([]types.Comment, len(rows))
	for i, r := range rows {
		out[i] = fromCommentModel(r)
	}
	return out, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	err := s.Comments.SoftDelete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return wrap(err, "delete comment")
}

func (s *Store) InsertNotification(ctx context.Context, n types.Notification) error {
	return wrap(s.Notifications.Create(ctx, toNotificationModel(n)), "insert notification")
}

func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]types.Notification, error) {
	rows, err := s.Notifications.List(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, wrap(err, "list notifications")
	}
	out := make([]types.Notification, len(rows))
	for i, r := range rows {
		out[i] = fromNotificationModel(r)
	}
	return out, nil
}

func (s *Store) MarkNotificationsRead(ctx context.Context, userID string, ids []string) error {
	return wrap(s.Notifications.MarkRead(ctx, userID, ids), "mark notifications read")
}

func (s *Store) ListChallenges(ctx context.Context, userID string) ([]types.Challenge, error) {
	rows, err := s.Challenges.List(ctx)
	if err != nil {
		return nil, wrap(err, "list challenges")
	}
	joined := map[string]float64{}
	if userID != "" {
		parts, err := s.Participants.JoinedBy(ctx, userID)
		if err != nil {
			return nil, wrap(err, "list participation")
		}
		for _, p := range parts {
			joined[p.ChallengeID] = p.Progress
		}
	}
	out := make([]types.Challenge, len(rows))
	for i, r := range rows {
		c := fromChallengeModel(r)
		if p, ok := joined[c.ID]; ok {
			c.IsJoined = true
			c.Progress = types.Ptr(p)
		}
		out[i] = c
	}
	return out, nil
}

func (s *Store) JoinChallenge(ctx context.Context, challengeID, userID string) (bool, error) {
	ok, err := s.Participants.Join(ctx, &models.ChallengeParticipant{
		ChallengeID: challengeID,
		UserID:      userID,
		CreatedAt:   time.Now(),
	})
	return ok, wrap(err, "join challenge")
}

func (s *Store) LeaveChallenge(ctx context.Context, challengeID, userID string) (bool, error) {
	ok, err := s.Participants.Leave(ctx, challengeID, userID)
	return ok, wrap(err, "leave challenge")
}

func (s *Store) UpdateChallengeProgress(ctx context.Context, challengeID, userID string, progress float64) error {
	n, err := s.Participants.UpdateProgress(ctx, challengeID, userID, progress)
	if err != nil {
		return wrap(err, "update challenge progress")
	}
	if n == 0 {
		return errs.Validation("challenge not joined", nil)
	}
	return nil
}

func (s *Store) Leaderboard(ctx context.Context, challengeID string, limit int) ([]types.LeaderboardEntry, error) {
	rows, err := s.Participants.Leaderboard(ctx, challengeID, limit)
	if err != nil {
		return nil, wrap(err, "load leaderboard")
	}
	out := make([]types.LeaderboardEntry, len(rows))
	for i, r := range rows {
		out[i] = types.LeaderboardEntry{
			Rank:     i + 1,
			UserID:   r.UserID,
			Owner:    types.Owner{Username: r.Username, DisplayName: r.DisplayName, Avatar: r.AvatarURL},
			Progress: r.Progress,
		}
	}
	return out, nil
}

// notify 通知写入失败只记录
func (s *Store) notify(ctx context.Context, to, actor string, kind types.NotificationKind, mealID, action string) {
	if to == "" || to == actor {
		return
	}
	n := &models.Notification{
		ID:        snowflake.GenStringID(),
		UserID:    to,
		ActorID:   actor,
		Kind:      string(kind),
		MealID:    mealID,
		Message:   s.Profiles.Username(ctx, actor) + " " + action,
		CreatedAt: time.Now(),
	}
	if err := s.Notifications.Create(ctx, n); err != nil {
		log.L.Warn("insert notification failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}
