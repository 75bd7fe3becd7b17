package supabase

import (
	"context"
	"fmt"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
)

func (b *Backend) ListMeals(ctx context.Context, q backend.MealQuery) ([]types.Meal, error) {
	qb := b.api.From(tableMeals).Select("*").Order("created_at", false)
	if len(q.IDs) > 0 {
		qb.In("id", q.IDs)
	}
	if len(q.UserIDs) > 0 {
		qb.In("user_id", q.UserIDs)
	}
	if len(q.Visibility) > 0 {
		vs := make([]string, len(q.Visibility))
		for i, v := range q.Visibility {
			vs[i] = string(v)
		}
		qb.In("visibility", vs)
	}
	if q.Limit > 0 {
		qb.Limit(q.Limit)
	}
	if q.Offset > 0 {
		qb.Offset(q.Offset)
	}
	var rows []mealRow
	if err := qb.Execute(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]types.Meal, len(rows))
	for i, r := range rows {
		out[i] = r.meal()
	}
	return out, nil
}

func (b *Backend) InsertMeal(ctx context.Context, meal types.Meal) error {
	return b.api.From(tableMeals).Insert(ctx, newMealRow(meal), nil)
}

func (b *Backend) UpdateMeal(ctx context.Context, id string, patch types.MealPatch) error {
	cols := mealColumns(patch)
	if len(cols) == 0 {
		return nil
	}
	return b.api.From(tableMeals).Eq("id", id).Update(ctx, cols, nil)
}

func (b *Backend) DeleteMeal(ctx context.Context, id string) error {
	return b.api.From(tableMeals).Eq("id", id).Delete(ctx, nil)
}

func (b *Backend) SetMealCounter(ctx context.Context, id, counter string, value int) error {
	var col string
	switch counter {
	case "shares":
		col = "shares_count"
	case "views":
		col = "views_count"
	default:
		return errs.Validation(fmt.Sprintf("unknown counter %q", counter), nil)
	}
	return b.api.From(tableMeals).Eq("id", id).Update(ctx, map[string]any{col: value}, nil)
}

// SetLike 点赞数由后端触发器维护
func (b *Backend) SetLike(ctx context.Context, userID, mealID string, liked bool) error {
	return b.setReaction(ctx, tableLikes, userID, mealID, liked)
}

func (b *Backend) SetBookmark(ctx context.Context, userID, mealID string, bookmarked bool) error {
	return b.setReaction(ctx, tableBookmarks, userID, mealID, bookmarked)
}

func (b *Backend) setReaction(ctx context.Context, table, userID, mealID string, on bool) error {
	if on {
		return b.api.From(table).OnConflict("user_id,meal_id").
			Upsert(ctx, reactionRow{UserID: userID, MealID: mealID}, nil)
	}
	return b.api.From(table).Eq("user_id", userID).Eq("meal_id", mealID).Delete(ctx, nil)
}

func (b *Backend) Reactions(ctx context.Context, userID string, mealIDs []string) (backend.Reactions, error) {
	r := backend.Reactions{Liked: map[string]bool{}, Bookmarked: map[string]bool{}}
	if userID == "" || len(mealIDs) == 0 {
		return r, nil
	}
	for table, dst := range map[string]map[string]bool{tableLikes: r.Liked, tableBookmarks: r.Bookmarked} {
		var rows []reactionRow
		err := b.api.From(table).Select("user_id,meal_id").Eq("user_id", userID).In("meal_id", mealIDs).Execute(ctx, &rows)
		if err != nil {
			return r, err
		}
		for _, row := range rows {
			dst[row.MealID] = true
		}
	}
	return r, nil
}
