package service

import (
	"context"
	"testing"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMeals(t *testing.T, remote backend.Store) (*testEnv, *MealService, string) {
	t.Helper()
	env := newTestEnv(t)
	uid := env.register(t, "ann@example.com", "ann")
	return env, NewMealService(env.store, env.session, remote, "test-salt"), uid
}

func TestMeal_AddThenUserMealsFirst(t *testing.T) {
	ctx := context.Background()
	_, svc, uid := newMeals(t, nil)

	svc.AddMeal(ctx, types.NewMeal{Image: "a.jpg", Description: "older"})
	m := svc.AddMeal(ctx, types.NewMeal{Image: "b.jpg", Description: "newest", Tags: []string{"greens"}})

	list := svc.GetUserMeals(uid)
	require.Len(t, list, 2)
	assert.Equal(t, m.ID, list[0].ID)
	assert.Equal(t, types.VisibilityPublic, list[0].Visibility)
	assert.Equal(t, "ann", list[0].User.Username)
}

func TestMeal_ToggleLikeIsInvolution(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newMeals(t, nil)
	m := svc.AddMeal(ctx, types.NewMeal{Image: "a.jpg"})

	liked, ok := svc.ToggleLike(ctx, m.ID)
	require.True(t, ok)
	assert.True(t, liked.IsLiked)
	assert.Equal(t, 1, liked.Likes)

	back, ok := svc.ToggleLike(ctx, m.ID)
	require.True(t, ok)
	assert.False(t, back.IsLiked)
	assert.Equal(t, m.Likes, back.Likes)

	_, ok = svc.ToggleLike(ctx, "missing")
	assert.False(t, ok)
}

func TestMeal_LikeRevertedWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ann@example.com", "ann")
	svc := NewMealService(env.store, env.session, &flakyStore{Store: env.backend}, "test-salt")
	m := svc.AddMeal(ctx, types.NewMeal{Image: "a.jpg"})

	got, ok := svc.ToggleLike(ctx, m.ID)
	require.True(t, ok)
	assert.False(t, got.IsLiked)
	assert.Zero(t, got.Likes)

	got, ok = svc.ToggleBookmark(ctx, m.ID)
	require.True(t, ok)
	assert.False(t, got.IsBookmarked)

	stored, _ := svc.GetMeal(m.ID)
	assert.False(t, stored.IsLiked)
}

func TestMeal_DeleteUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	_, svc, uid := newMeals(t, nil)
	svc.AddMeal(ctx, types.NewMeal{Image: "a.jpg"})

	before := svc.GetUserMeals(uid)
	svc.DeleteMeal(ctx, "does-not-exist")
	assert.Equal(t, before, svc.GetUserMeals(uid))
}

func TestMeal_MirrorsToRemote(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	uid := env.register(t, "ann@example.com", "ann")
	svc := NewMealService(env.store, env.session, env.backend, "test-salt")

	m := svc.AddMeal(ctx, types.NewMeal{Image: "a.jpg", Description: "pasta"})
	remote, err := env.backend.ListMeals(ctx, backend.MealQuery{UserIDs: []string{uid}})
	require.NoError(t, err)
	require.Len(t, remote, 1)
	assert.Equal(t, m.ID, remote[0].ID)

	svc.DeleteMeal(ctx, m.ID)
	remote, err = env.backend.ListMeals(ctx, backend.MealQuery{UserIDs: []string{uid}})
	require.NoError(t, err)
	assert.Empty(t, remote)
}

func TestMeal_ShareCodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newMeals(t, nil)
	m := svc.AddMeal(ctx, types.NewMeal{Image: "a.jpg"})

	res, err := svc.ShareMeal(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Shares)

	got, err := svc.MealByShareCode(res.Code)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = svc.MealByShareCode("!!")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestMeal_FeedHidesPrivateMealsOfOthers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "bob@example.com", "bob")
	bobMeals := NewMealService(env.store, env.session, env.backend, "test-salt")
	bobMeals.AddMeal(ctx, types.NewMeal{Image: "pub.jpg", Description: "public"})
	bobMeals.AddMeal(ctx, types.NewMeal{Image: "priv.jpg", Description: "private", Visibility: types.VisibilityPrivate})
	env.session.Logout(ctx)

	env.register(t, "ann@example.com", "ann")
	annMeals := NewMealService(env.store, env.session, env.backend, "test-salt")
	feed, err := annMeals.Feed(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "public", feed[0].Description)
}
