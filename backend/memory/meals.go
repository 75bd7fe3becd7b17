package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/snowflake"
	"github.com/petroshong/calofeed-sub001/types"
)

func (b *Backend) ListMeals(ctx context.Context, q backend.MealQuery) ([]types.Meal, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]types.Meal, 0)
	skipped := 0
	for _, m := range b.meals {
		if len(q.IDs) > 0 && !slices.Contains(q.IDs, m.ID) {
			continue
		}
		if len(q.UserIDs) > 0 && !slices.Contains(q.UserIDs, m.UserID) {
			continue
		}
		if len(q.Visibility) > 0 && !slices.Contains(q.Visibility, m.Visibility) {
			continue
		}
		if skipped < q.Offset {
			skipped++
			continue
		}
		m.IsLiked, m.IsBookmarked = false, false
		m.Tags = slices.Clone(m.Tags)
		out = append(out, m)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (b *Backend) InsertMeal(ctx context.Context, meal types.Meal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mealIndex(meal.ID) >= 0 {
		return errs.Validation("meal already exists", map[string]string{"id": "is already used"})
	}
	meal.IsLiked, meal.IsBookmarked = false, false
	b.meals = append([]types.Meal{meal}, b.meals...)
	return nil
}

func (b *Backend) UpdateMeal(ctx context.Context, id string, patch types.MealPatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.mealIndex(id)
	if i < 0 {
		return errs.NotFound("meal %s not found", id)
	}
	b.meals[i] = patch.Apply(b.meals[i])
	return nil
}

func (b *Backend) DeleteMeal(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.mealIndex(id)
	if i < 0 {
		return nil
	}
	b.meals = slices.Delete(b.meals, i, i+1)
	b.comments = slices.DeleteFunc(b.comments, func(c types.Comment) bool { return c.MealID == id })
	for k := range b.likes {
		if k.b == id {
			delete(b.likes, k)
		}
	}
	for k := range b.bookmarks {
		if k.b == id {
			delete(b.bookmarks, k)
		}
	}
	return nil
}

func (b *Backend) SetMealCounter(ctx context.Context, id, counter string, value int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.mealIndex(id)
	if i < 0 {
		return errs.NotFound("meal %s not found", id)
	}
	switch counter {
	case "shares":
		b.meals[i].Shares = value
	case "views":
		b.meals[i].Views = value
	default:
		return errs.Validation(fmt.Sprintf("unknown counter %q", counter), nil)
	}
	return nil
}

func (b *Backend) SetLike(ctx context.Context, userID, mealID string, liked bool) error {
	b.mu.Lock()
	i := b.mealIndex(mealID)
	if i < 0 {
		b.mu.Unlock()
		return errs.NotFound("meal %s not found", mealID)
	}
	key := pair{userID, mealID}
	if b.likes[key] == liked {
		b.mu.Unlock()
		return nil
	}
	meal := &b.meals[i]
	owner := meal.UserID
	var note *types.Notification
	if liked {
		b.likes[key] = true
		meal.Likes++
		if owner != userID {
			note = b.notify(meal.UserID, userID, types.NotifyLike, mealID, "liked your meal")
		}
	} else {
		delete(b.likes, key)
		if meal.Likes > 0 {
			meal.Likes--
		}
	}
	b.mu.Unlock()

	row := map[string]any{"user_id": userID, "meal_id": mealID, "owner_id": owner}
	if liked {
		b.publish(types.TableLikes, types.EventInsert, row)
	} else {
		b.publish(types.TableLikes, types.EventDelete, row)
	}
	if note != nil {
		b.publish(types.TableNotifications, types.EventInsert, note)
	}
	return nil
}

func (b *Backend) SetBookmark(ctx context.Context, userID, mealID string, bookmarked bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mealIndex(mealID) < 0 {
		return errs.NotFound("meal %s not found", mealID)
	}
	key := pair{userID, mealID}
	if bookmarked {
		b.bookmarks[key] = true
	} else {
		delete(b.bookmarks, key)
	}
	return nil
}

func (b *Backend) Reactions(ctx context.Context, userID string, mealIDs []string) (backend.Reactions, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r := backend.Reactions{Liked: map[string]bool{}, Bookmarked: map[string]bool{}}
	for _, id := range mealIDs {
		if b.likes[pair{userID, id}] {
			r.Liked[id] = true
		}
		if b.bookmarks[pair{userID, id}] {
			r.Bookmarked[id] = true
		}
	}
	return r, nil
}

func (b *Backend) mealIndex(id string) int {
	return slices.IndexFunc(b.meals, func(m types.Meal) bool { return m.ID == id })
}

// notify 调用方持有 mu，返回的通知需在释放锁后发布
func (b *Backend) notify(to, actor string, kind types.NotificationKind, mealID, action string) *types.Notification {
	name := actor
	if p, ok := b.profiles[actor]; ok && p.Username != "" {
		name = p.Username
	}
	n := types.Notification{
		ID:        snowflake.GenStringID(),
		UserID:    to,
		ActorID:   actor,
		Kind:      kind,
		MealID:    mealID,
		Message:   name + " " + action,
		CreatedAt: b.now(),
	}
	b.notifications = append(b.notifications, n)
	return &n
}
