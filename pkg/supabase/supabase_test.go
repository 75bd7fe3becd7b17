package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{URL: srv.URL, APIKey: "anon"})
	require.NoError(t, err)
	return c
}

func TestQueryBuilder_URL(t *testing.T) {
	c, err := New(Config{URL: "https://x.supabase.co/", APIKey: "anon"})
	require.NoError(t, err)

	raw := c.From("meals").Select("*").Eq("visibility", "public").
		In("user_id", []string{"a", "b"}).Order("created_at", false).Limit(20).Offset(40).URL()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/rest/v1/meals", u.Path)

	q := u.Query()
	require.Equal(t, "eq.public", q.Get("visibility"))
	require.Equal(t, `in.("a","b")`, q.Get("user_id"))
	require.Equal(t, "created_at.desc", q.Get("order"))
	require.Equal(t, "20", q.Get("limit"))
	require.Equal(t, "40", q.Get("offset"))
}

func TestExecute_SendsKeysAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "anon", r.Header.Get("apikey"))
		require.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[{"id":"1"},{"id":"2"}]`)
	})
	c.SetAccessToken("user-token")

	var rows []struct {
		ID string `json:"id"`
	}
	require.NoError(t, c.From("meals").Select("id").Execute(context.Background(), &rows))
	require.Len(t, rows, 2)
}

func TestInsert_PrefersRepresentation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "return=representation", r.Header.Get("Prefer"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "m1", body["id"])
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":"m1"}]`)
	})
	require.NoError(t, c.From("meals").Insert(context.Background(), map[string]any{"id": "m1"}, nil))
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"message":"JWT expired"}`, errs.ErrAuth},
		{http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`, errs.ErrAuth},
		{http.StatusConflict, `{"message":"duplicate key value"}`, errs.ErrValidation},
		{http.StatusServiceUnavailable, `{}`, errs.ErrNetwork},
		{http.StatusInternalServerError, `{"message":"boom"}`, errs.ErrUnknown},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, tc.body)
		})
		err := c.From("meals").Execute(context.Background(), nil)
		require.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}
}

func TestTransportFailureIsNetwork(t *testing.T) {
	c, err := New(Config{URL: "http://127.0.0.1:1", APIKey: "anon"})
	require.NoError(t, err)
	err = c.From("meals").Execute(context.Background(), nil)
	require.ErrorIs(t, err, errs.ErrNetwork)
}

func TestSignUp_WithoutSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/signup", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"u1","email":"a@b.co"}`)
	})
	user, sess, err := c.SignUp(context.Background(), "a@b.co", "password1", map[string]any{"username": "ab_c"})
	require.NoError(t, err)
	require.Nil(t, sess)
	require.Equal(t, "u1", user.ID)
}

func TestSignIn(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		_, _ = io.WriteString(w, `{"access_token":"at","refresh_token":"rt","expires_in":3600,"user":{"id":"u1","email":"a@b.co"}}`)
	})
	ar, err := c.SignInWithPassword(context.Background(), "a@b.co", "password1")
	require.NoError(t, err)
	require.Equal(t, "at", ar.AccessToken)
	require.Equal(t, "u1", ar.User.ID)
}

func TestParseChange(t *testing.T) {
	payload := gjson.Parse(`{"data":{"type":"INSERT","schema":"public","table":"notifications",
		"commit_timestamp":"2026-01-02T03:04:05Z","record":{"id":"n1","user_id":"u1"}}}`)
	c, ok := ParseChange(payload)
	require.True(t, ok)
	require.Equal(t, "INSERT", c.Type)
	require.Equal(t, "n1", c.Record.Get("id").String())
	require.Equal(t, 2026, c.CommitTimestamp.Year())

	_, ok = ParseChange(gjson.Parse(`{"status":"ok"}`))
	require.False(t, ok)
}

func TestRealtimeURL(t *testing.T) {
	require.Equal(t, "wss://x.supabase.co/realtime/v1/websocket?apikey=k&vsn=1.0.0", RealtimeURL("https://x.supabase.co", "k"))
}
