package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/localstore"
	sb "github.com/petroshong/calofeed-sub001/pkg/supabase"
	"github.com/petroshong/calofeed-sub001/types"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestBackend(t *testing.T, h http.HandlerFunc) (*Backend, localstore.Store) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	api, err := sb.New(sb.Config{URL: srv.URL, APIKey: "anon"})
	require.NoError(t, err)
	local := localstore.NewMemory()
	return NewWithClient(api, local, ""), local
}

func TestSignIn_PersistsSessionAndEmits(t *testing.T) {
	b, local := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		_, _ = io.WriteString(w, `{"access_token":"at","refresh_token":"rt","expires_in":3600,
			"user":{"id":"u1","email":"a@b.co","email_confirmed_at":"2024-01-01"}}`)
	})
	var events []types.AuthEvent
	unsub := b.OnAuthStateChange(func(e types.AuthEvent, _ *types.Session) { events = append(events, e) })
	defer unsub()

	s, err := b.SignIn(context.Background(), "a@b.co", "secret1")
	require.NoError(t, err)
	require.Equal(t, "u1", s.User.ID)
	require.True(t, s.User.EmailConfirmed)
	require.Equal(t, []types.AuthEvent{types.AuthSignedIn}, events)

	stored := localstore.Get[*types.Session](local, sessionKey, nil)
	require.NotNil(t, stored)
	require.Equal(t, "rt", stored.RefreshToken)
}

func TestGetSession_RefreshFailureClearsSession(t *testing.T) {
	b, local := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Refresh Token Not Found"}`)
	})
	expired := &types.Session{AccessToken: "old", RefreshToken: "rt", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, localstore.Set(local, sessionKey, expired))

	s, err := b.GetSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, s)
	_, ok := local.GetRaw(sessionKey)
	require.False(t, ok)
}

func TestSignOut_ClearsLocalEvenWhenRemoteFails(t *testing.T) {
	b, local := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	s := &types.Session{AccessToken: "at", RefreshToken: "rt", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, localstore.Set(local, sessionKey, s))

	err := b.SignOut(context.Background())
	require.ErrorIs(t, err, errs.ErrNetwork)
	_, ok := local.GetRaw(sessionKey)
	require.False(t, ok)
}

func TestGetProfile_MissingRowIsNotFound(t *testing.T) {
	b, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = io.WriteString(w, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`)
	})
	_, err := b.GetProfile(context.Background(), "nobody")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListMeals_BuildsFilters(t *testing.T) {
	b, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "/rest/v1/meals", r.URL.Path)
		require.Equal(t, `in.("u1","u2")`, q.Get("user_id"))
		require.Equal(t, `in.("public")`, q.Get("visibility"))
		require.Equal(t, "created_at.desc", q.Get("order"))
		require.Equal(t, "10", q.Get("limit"))
		_, _ = io.WriteString(w, `[{"id":"m1","user_id":"u1","owner_username":"alice","image_url":"https://img/x.jpg",
			"calories":420,"likes_count":3,"tags":["lunch"],"visibility":"public","created_at":"2024-05-01T12:00:00Z"}]`)
	})
	meals, err := b.ListMeals(context.Background(), backend.MealQuery{
		UserIDs:    []string{"u1", "u2"},
		Visibility: []types.Visibility{types.VisibilityPublic},
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, meals, 1)
	require.Equal(t, "alice", meals[0].User.Username)
	require.Equal(t, 3, meals[0].Likes)
	require.Equal(t, []string{"lunch"}, meals[0].Tags)
}

func TestSetLike_UpsertsAndDeletes(t *testing.T) {
	var methods []string
	b, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/likes", r.URL.Path)
		methods = append(methods, r.Method)
		if r.Method == http.MethodPost {
			require.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")
			require.Equal(t, "user_id,meal_id", r.URL.Query().Get("on_conflict"))
			body, _ := io.ReadAll(r.Body)
			require.Equal(t, "m1", gjson.GetBytes(body, "meal_id").String())
		} else {
			require.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
		}
		_, _ = io.WriteString(w, `[]`)
	})
	ctx := context.Background()
	require.NoError(t, b.SetLike(ctx, "u1", "m1", true))
	require.NoError(t, b.SetLike(ctx, "u1", "m1", false))
	require.Equal(t, []string{http.MethodPost, http.MethodDelete}, methods)
}

func TestFollow_SkipsExisting(t *testing.T) {
	inserted := false
	b, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			inserted = true
		}
		_, _ = io.WriteString(w, `[{"follower_id":"a","following_id":"b"}]`)
	})
	created, err := b.Follow(context.Background(), "a", "b")
	require.NoError(t, err)
	require.False(t, created)
	require.False(t, inserted)

	_, err = b.Follow(context.Background(), "a", "a")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestLeaderboard_JoinsProfiles(t *testing.T) {
	b, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/challenge_participants"):
			_, _ = io.WriteString(w, `[{"challenge_id":"c1","user_id":"u2","progress":9},{"challenge_id":"c1","user_id":"u1","progress":4}]`)
		case strings.HasSuffix(r.URL.Path, "/profiles"):
			_, _ = io.WriteString(w, `[{"id":"u1","username":"alice"},{"id":"u2","username":"bob"}]`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	board, err := b.Leaderboard(context.Background(), "c1", 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Equal(t, 1, board[0].Rank)
	require.Equal(t, "bob", board[0].Owner.Username)
	require.Equal(t, "alice", board[1].Owner.Username)
}

func TestUpload_ReturnsPublicURL(t *testing.T) {
	b, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/storage/v1/object/meal-images/u1/a.jpg", r.URL.Path)
		require.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		_ = json.NewEncoder(w).Encode(map[string]string{"Key": "meal-images/u1/a.jpg"})
	})
	u, err := b.Upload(context.Background(), "u1/a.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(u, "/storage/v1/object/public/meal-images/u1/a.jpg"))
}

func TestToEvent_CopiesRecord(t *testing.T) {
	payload := gjson.Parse(`{"data":{"type":"INSERT","schema":"public","table":"notifications",
		"commit_timestamp":"2024-05-01T12:00:00Z","record":{"id":"n1","user_id":"u1"}}}`)
	c, ok := sb.ParseChange(payload)
	require.True(t, ok)
	ev := toEvent(c)
	require.Equal(t, types.EventInsert, ev.Type)
	require.Equal(t, "n1", ev.Record["id"])
	require.Nil(t, ev.OldRecord)
}
