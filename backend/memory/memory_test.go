package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	return New(&config.Jwt{Secret: "test", ExpiresSecs: 3600}, WithBcryptCost(bcrypt.MinCost))
}

func signUp(t *testing.T, b *Backend, email, username string) string {
	t.Helper()
	ctx := context.Background()
	user, sess, err := b.SignUp(ctx, types.SignUpRequest{Email: email, Password: "password1", Username: username, DisplayName: username})
	require.NoError(t, err)
	require.Nil(t, sess)
	require.NoError(t, b.CreateProfile(ctx, types.User{ID: user.ID, Email: email, Username: username, DisplayName: username}))
	return user.ID
}

func TestIdentity_SignInEmitsEvents(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	uid := signUp(t, b, "ann@example.com", "ann")

	var (
		mu     sync.Mutex
		events []types.AuthEvent
	)
	unsub := b.OnAuthStateChange(func(ev types.AuthEvent, _ *types.Session) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	_, err := b.SignIn(ctx, "ann@example.com", "wrong-password")
	require.ErrorIs(t, err, errs.ErrAuth)

	sess, err := b.SignIn(ctx, "ANN@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, uid, sess.User.ID)

	got, err := b.GetSession(ctx)
	require.NoError(t, err)
	require.Equal(t, sess.AccessToken, got.AccessToken)

	require.NoError(t, b.SignOut(ctx))
	got, err = b.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	unsub()
	unsub()
	_, err = b.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []types.AuthEvent{types.AuthSignedIn, types.AuthSignedOut}, events)
}

func TestIdentity_DuplicatesRejected(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	signUp(t, b, "ann@example.com", "ann")

	_, _, err := b.SignUp(ctx, types.SignUpRequest{Email: "ann@example.com", Password: "password1", Username: "other"})
	require.ErrorIs(t, err, errs.ErrValidation)

	ok, err := b.CheckUsernameAvailable(ctx, "ANN")
	require.NoError(t, err)
	require.False(t, ok)

	bob := signUp(t, b, "bob@example.com", "bob")
	_, err = b.UpdateProfile(ctx, bob, types.UserPatch{Username: types.Ptr("ann")})
	require.ErrorIs(t, err, errs.ErrValidation)

	u, err := b.UpdateProfile(ctx, bob, types.UserPatch{Bio: types.Ptr("hello")})
	require.NoError(t, err)
	require.Equal(t, "hello", u.Bio)
}

func TestStore_LikeCountsAndNotifies(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	ann := signUp(t, b, "ann@example.com", "ann")
	bob := signUp(t, b, "bob@example.com", "bob")

	received := make(chan types.RealtimeEvent, 4)
	sub := b.Subscribe(types.SubscriptionConfig{Table: types.TableNotifications, Event: types.EventInsert, Column: "user_id", Value: ann},
		func(ev types.RealtimeEvent) { received <- ev })
	require.NoError(t, sub.Start(ctx))
	defer sub.Stop()

	require.NoError(t, b.InsertMeal(ctx, types.Meal{ID: "m1", UserID: ann, Visibility: types.VisibilityPublic}))
	require.NoError(t, b.SetLike(ctx, bob, "m1", true))
	require.NoError(t, b.SetLike(ctx, bob, "m1", true))

	meals, err := b.ListMeals(ctx, backendQuery("m1"))
	require.NoError(t, err)
	require.Equal(t, 1, meals[0].Likes)

	select {
	case ev := <-received:
		var n types.Notification
		require.NoError(t, ev.Decode(&n))
		require.Equal(t, types.NotifyLike, n.Kind)
		require.Equal(t, bob, n.ActorID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}

	r, err := b.Reactions(ctx, bob, []string{"m1"})
	require.NoError(t, err)
	require.True(t, r.Liked["m1"])

	require.NoError(t, b.SetLike(ctx, bob, "m1", false))
	meals, err = b.ListMeals(ctx, backendQuery("m1"))
	require.NoError(t, err)
	require.Equal(t, 0, meals[0].Likes)

	require.ErrorIs(t, b.SetLike(ctx, bob, "missing", true), errs.ErrNotFound)
}

func TestSocial_FollowCountersSymmetric(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	ann := signUp(t, b, "ann@example.com", "ann")
	bob := signUp(t, b, "bob@example.com", "bob")

	_, err := b.Follow(ctx, ann, ann)
	require.ErrorIs(t, err, errs.ErrValidation)

	created, err := b.Follow(ctx, ann, bob)
	require.NoError(t, err)
	require.True(t, created)
	created, err = b.Follow(ctx, ann, bob)
	require.NoError(t, err)
	require.False(t, created)

	pa, _ := b.GetProfile(ctx, ann)
	pb, _ := b.GetProfile(ctx, bob)
	require.Equal(t, 1, pa.Following)
	require.Equal(t, 1, pb.Followers)

	followers, err := b.Followers(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, []string{ann}, followers)

	removed, err := b.Unfollow(ctx, ann, bob)
	require.NoError(t, err)
	require.True(t, removed)
	pa, _ = b.GetProfile(ctx, ann)
	pb, _ = b.GetProfile(ctx, bob)
	require.Equal(t, 0, pa.Following)
	require.Equal(t, 0, pb.Followers)
}

func TestChallenge_JoinLeaveLockstep(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	ann := signUp(t, b, "ann@example.com", "ann")
	bob := signUp(t, b, "bob@example.com", "bob")

	changed, err := b.JoinChallenge(ctx, "c-streak-30", ann)
	require.NoError(t, err)
	require.True(t, changed)
	changed, err = b.JoinChallenge(ctx, "c-streak-30", ann)
	require.NoError(t, err)
	require.False(t, changed)

	list, err := b.ListChallenges(ctx, ann)
	require.NoError(t, err)
	c := find(list, "c-streak-30")
	require.True(t, c.IsJoined)
	require.Equal(t, 1, c.Participants)

	_, err = b.JoinChallenge(ctx, "c-streak-30", bob)
	require.NoError(t, err)
	require.NoError(t, b.UpdateChallengeProgress(ctx, "c-streak-30", bob, 5))
	require.NoError(t, b.UpdateChallengeProgress(ctx, "c-streak-30", ann, 2))

	board, err := b.Leaderboard(ctx, "c-streak-30", 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Equal(t, bob, board[0].UserID)
	require.Equal(t, 1, board[0].Rank)
	require.Equal(t, "bob", board[0].Owner.Username)

	changed, err = b.LeaveChallenge(ctx, "c-streak-30", ann)
	require.NoError(t, err)
	require.True(t, changed)
	list, err = b.ListChallenges(ctx, ann)
	require.NoError(t, err)
	c = find(list, "c-streak-30")
	require.False(t, c.IsJoined)
	require.Equal(t, 1, c.Participants)

	_, err = b.JoinChallenge(ctx, "nope", ann)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRealtime_StopIsIdempotent(t *testing.T) {
	b := newBackend(t)
	sub := b.Subscribe(types.SubscriptionConfig{Table: types.TableFollows}, func(types.RealtimeEvent) {})
	require.NoError(t, sub.Start(context.Background()))
	sub.Stop()
	sub.Stop()
	require.Empty(t, b.broker.subs)
}
