package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
)

func (b *Backend) Follow(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == followingID {
		return false, errs.Validation("you cannot follow yourself", nil)
	}
	b.mu.Lock()
	if _, ok := b.profiles[followingID]; !ok {
		b.mu.Unlock()
		return false, errs.NotFound("user %s not found", followingID)
	}
	key := pair{followerID, followingID}
	if _, ok := b.follows[key]; ok {
		b.mu.Unlock()
		return false, nil
	}
	now := b.now()
	b.follows[key] = now
	b.bumpFollowCounters(followerID, followingID, 1)
	note := b.notify(followingID, followerID, types.NotifyFollow, "", "started following you")
	b.mu.Unlock()

	b.publish(types.TableFollows, types.EventInsert, types.Follow{FollowerID: followerID, FollowingID: followingID, CreatedAt: now})
	b.publish(types.TableNotifications, types.EventInsert, note)
	return true, nil
}

func (b *Backend) Unfollow(ctx context.Context, followerID, followingID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := pair{followerID, followingID}
	if _, ok := b.follows[key]; !ok {
		return false, nil
	}
	delete(b.follows, key)
	b.bumpFollowCounters(followerID, followingID, -1)
	return true, nil
}

func (b *Backend) bumpFollowCounters(followerID, followingID string, delta int) {
	if u, ok := b.profiles[followerID]; ok {
		u.Following = max(0, u.Following+delta)
		b.profiles[followerID] = u
	}
	if u, ok := b.profiles[followingID]; ok {
		u.Followers = max(0, u.Followers+delta)
		b.profiles[followingID] = u
	}
}

func (b *Backend) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.follows[pair{followerID, followingID}]
	return ok, nil
}

func (b *Backend) Followers(ctx context.Context, userID string) ([]string, error) {
	return b.edges(func(k pair) (string, bool) { return k.a, k.b == userID }), nil
}

func (b *Backend) Following(ctx context.Context, userID string) ([]string, error) {
	return b.edges(func(k pair) (string, bool) { return k.b, k.a == userID }), nil
}

// edges 按关注时间倒序
func (b *Backend) edges(pick func(pair) (string, bool)) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	type edge struct {
		id string
		at time.Time
	}
	var es []edge
	for k, at := range b.follows {
		if id, ok := pick(k); ok {
			es = append(es, edge{id, at})
		}
	}
	sort.Slice(es, func(i, j int) bool {
		if es[i].at.Equal(es[j].at) {
			return es[i].id < es[j].id
		}
		return es[i].at.After(es[j].at)
	})
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.id
	}
	return out
}

func (b *Backend) InsertComment(ctx context.Context, c types.Comment) error {
	b.mu.Lock()
	i := b.mealIndex(c.MealID)
	if i < 0 {
		b.mu.Unlock()
		return errs.NotFound("meal %s not found", c.MealID)
	}
	b.comments = append(b.comments, c)
	b.meals[i].Comments++
	var note *types.Notification
	if owner := b.meals[i].UserID; owner != c.UserID {
		note = b.notify(owner, c.UserID, types.NotifyComment, c.MealID, "commented on your meal")
	}
	b.mu.Unlock()

	b.publish(types.TableComments, types.EventInsert, c)
	if note != nil {
		b.publish(types.TableNotifications, types.EventInsert, note)
	}
	return nil
}

func (b *Backend) GetComment(ctx context.Context, id string) (*types.Comment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.comments {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, errs.NotFound("comment %s not found", id)
}

func (b *Backend) ListComments(ctx context.Context, mealID string) ([]types.Comment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]types.Comment, 0)
	for _, c := range b.comments {
		if c.MealID == mealID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (b *Backend) DeleteComment(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.comments, func(c types.Comment) bool { return c.ID == id })
	if i < 0 {
		return nil
	}
	mealID := b.comments[i].MealID
	b.comments = slices.Delete(b.comments, i, i+1)
	if m := b.mealIndex(mealID); m >= 0 && b.meals[m].Comments > 0 {
		b.meals[m].Comments--
	}
	return nil
}

func (b *Backend) InsertNotification(ctx context.Context, n types.Notification) error {
	b.mu.Lock()
	b.notifications = append(b.notifications, n)
	b.mu.Unlock()
	b.publish(types.TableNotifications, types.EventInsert, n)
	return nil
}

func (b *Backend) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]types.Notification, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]types.Notification, 0)
	for i := len(b.notifications) - 1; i >= 0; i-- {
		n := b.notifications[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (b *Backend) MarkNotificationsRead(ctx context.Context, userID string, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.notifications {
		n := &b.notifications[i]
		if n.UserID != userID {
			continue
		}
		if len(ids) == 0 || slices.Contains(ids, n.ID) {
			n.Read = true
		}
	}
	return nil
}
