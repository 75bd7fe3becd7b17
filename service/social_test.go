package service

import (
	"context"
	"testing"
	"time"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollow_RejectsSelf(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "ann@example.com", "ann")
	svc := &FollowService{Remote: env.backend, Session: env.session}

	_, err := svc.Follow(context.Background(), uid)
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = svc.Unfollow(context.Background(), uid)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestFollow_IdempotentAndCounted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.register(t, "bob@example.com", "bob")
	env.session.Logout(ctx)
	ann := env.register(t, "ann@example.com", "ann")
	svc := &FollowService{Remote: env.backend, Session: env.session}

	created, err := svc.Follow(ctx, bob)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.Follow(ctx, bob)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, env.session.CurrentUser().Following)

	followers, err := svc.Followers(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{ann}, followers)

	removed, err := svc.Unfollow(ctx, bob)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, env.session.CurrentUser().Following)

	following, err := svc.IsFollowing(ctx, bob)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestChallenge_JoinLeaveLockstep(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ann@example.com", "ann")
	svc := &ChallengeService{Remote: env.backend, Session: env.session}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	id := list[0].ID
	base := list[0].Participants

	c, err := svc.Join(ctx, id)
	require.NoError(t, err)
	assert.True(t, c.IsJoined)
	assert.Equal(t, base+1, c.Participants)

	c, err = svc.Join(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, base+1, c.Participants)

	c, err = svc.Leave(ctx, id)
	require.NoError(t, err)
	assert.False(t, c.IsJoined)
	assert.Equal(t, base, c.Participants)

	c, err = svc.Leave(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, base, c.Participants)

	_, err = svc.Join(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestChallenge_SyncStreakUpdatesLeaderboard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	uid := env.register(t, "ann@example.com", "ann")
	svc := &ChallengeService{Remote: env.backend, Session: env.session}

	_, err := svc.Join(ctx, "c-streak-30")
	require.NoError(t, err)
	require.NoError(t, svc.SyncStreak(ctx, 4))

	rows, err := svc.Leaderboard(ctx, "c-streak-30", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uid, rows[0].UserID)
	assert.Equal(t, 4.0, rows[0].Progress)
	assert.Equal(t, 1, rows[0].Rank)
}

func TestComment_AddAndDeleteBumpsCounter(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ann@example.com", "ann")
	meals := NewMealService(env.store, env.session, env.backend, "test-salt")
	svc := &CommentService{Remote: env.backend, Session: env.session, Meals: meals}
	m := meals.AddMeal(ctx, types.NewMeal{Image: "a.jpg"})

	_, err := svc.Add(ctx, m.ID, types.NewComment{Content: "   "})
	require.ErrorIs(t, err, errs.ErrValidation)

	c, err := svc.Add(ctx, m.ID, types.NewComment{Content: "  looks great  "})
	require.NoError(t, err)
	assert.Equal(t, "looks great", c.Content)
	got, _ := meals.GetMeal(m.ID)
	assert.Equal(t, 1, got.Comments)

	list, err := svc.List(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, c.ID))
	got, _ = meals.GetMeal(m.ID)
	assert.Equal(t, 0, got.Comments)
}

func TestNotificationFeed_PushesAndTracksUnread(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.register(t, "bob@example.com", "bob")
	env.session.Logout(ctx)
	ann := env.register(t, "ann@example.com", "ann")

	meals := NewMealService(env.store, env.session, env.backend, "test-salt")
	m := meals.AddMeal(ctx, types.NewMeal{Image: "a.jpg"})

	pusher := newRecordingPusher()
	feed := NewNotificationFeed(env.backend, env.backend, env.session, pusher)
	feed.Start()
	defer feed.Close()

	require.NoError(t, env.backend.SetLike(ctx, bob, m.ID, true))

	require.Eventually(t, func() bool { return len(feed.Unread()) == 1 }, 2*time.Second, 10*time.Millisecond)
	n := feed.Unread()[0]
	assert.Equal(t, ann, n.UserID)
	assert.Equal(t, types.NotifyLike, n.Kind)

	select {
	case msg := <-pusher.ch:
		assert.Equal(t, string(types.EventInsert), msg.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("no push delivered")
	}

	require.NoError(t, feed.MarkRead(ctx, nil))
	assert.Empty(t, feed.Unread())

	env.session.Logout(ctx)
	list, err := feed.List(ctx, false, 10)
	assert.Nil(t, list)
	assert.ErrorIs(t, err, errs.ErrAuth)
}
