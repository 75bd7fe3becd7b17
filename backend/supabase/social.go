package supabase

import (
	"context"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
)

func (b *Backend) Follow(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == followingID {
		return false, errs.Validation("you cannot follow yourself", nil)
	}
	exists, err := b.IsFollowing(ctx, followerID, followingID)
	if err != nil || exists {
		return false, err
	}
	row := followRow{FollowerID: followerID, FollowingID: followingID, CreatedAt: b.now()}
	if err := b.api.From(tableFollows).Insert(ctx, row, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Backend) Unfollow(ctx context.Context, followerID, followingID string) (bool, error) {
	var rows []followRow
	err := b.api.From(tableFollows).Eq("follower_id", followerID).Eq("following_id", followingID).Delete(ctx, &rows)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (b *Backend) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var rows []followRow
	err := b.api.From(tableFollows).Select("follower_id,following_id").
		Eq("follower_id", followerID).Eq("following_id", followingID).Limit(1).Execute(ctx, &rows)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (b *Backend) Followers(ctx context.Context, userID string) ([]string, error) {
	var rows []followRow
	err := b.api.From(tableFollows).Select("follower_id,following_id,created_at").
		Eq("following_id", userID).Order("created_at", false).Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.FollowerID
	}
	return out, nil
}

func (b *Backend) Following(ctx context.Context, userID string) ([]string, error) {
	var rows []followRow
	err := b.api.From(tableFollows).Select("follower_id,following_id,created_at").
		Eq("follower_id", userID).Order("created_at", false).Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.FollowingID
	}
	return out, nil
}

func (b *Backend) InsertComment(ctx context.Context, c types.Comment) error {
	return b.api.From(tableComments).Insert(ctx, newCommentRow(c), nil)
}

func (b *Backend) GetComment(ctx context.Context, id string) (*types.Comment, error) {
	var rows []commentRow
	if err := b.api.From(tableComments).Select("*").Eq("id", id).Limit(1).Execute(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NotFound("comment %s not found", id)
	}
	c := rows[0].comment()
	return &c, nil
}

func (b *Backend) ListComments(ctx context.Context, mealID string) ([]types.Comment, error) {
	var rows []commentRow
	err := b.api.From(tableComments).Select("*").Eq("meal_id", mealID).Order("created_at", true).Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}
	out := make([]types.Comment, len(rows))
	for i, r := range rows {
		out[i] = r.comment()
	}
	return out, nil
}

func (b *Backend) DeleteComment(ctx context.Context, id string) error {
	return b.api.From(tableComments).Eq("id", id).Delete(ctx, nil)
}

func (b *Backend) InsertNotification(ctx context.Context, n types.Notification) error {
	return b.api.From(tableNotification).Insert(ctx, n, nil)
}

func (b *Backend) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]types.Notification, error) {
	qb := b.api.From(tableNotification).Select("*").Eq("user_id", userID).Order("created_at", false)
	if unreadOnly {
		qb.Eq("read", false)
	}
	if limit > 0 {
		qb.Limit(limit)
	}
	out := make([]types.Notification, 0)
	if err := qb.Execute(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) MarkNotificationsRead(ctx context.Context, userID string, ids []string) error {
	qb := b.api.From(tableNotification).Eq("user_id", userID)
	if len(ids) > 0 {
		qb.In("id", ids)
	}
	return qb.Update(ctx, map[string]any{"read": true}, nil)
}
