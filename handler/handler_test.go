package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/backend/memory"
	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/localstore"
	"github.com/petroshong/calofeed-sub001/pkg/response"
	"github.com/petroshong/calofeed-sub001/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	be := memory.New(&config.Jwt{Secret: "test", ExpiresSecs: 3600}, memory.WithBcryptCost(bcrypt.MinCost))
	store := localstore.NewMemory()
	session := service.NewSessionService(be)
	t.Cleanup(session.Close)
	calorie := service.NewCalorieService(store, session)
	meals := service.NewMealService(store, session, be, "test-salt")
	follows := &service.FollowService{Remote: be, Session: session}

	r := gin.New()
	api := r.Group("/api/v1")
	(&Auth{Session: session}).RegisterRouter(api)
	(&User{Session: session, Meals: meals, Follows: follows}).RegisterRouter(api)
	(&Entry{Session: session, Calorie: calorie}).RegisterRouter(api)
	(&Meal{Session: session, Meals: meals, Calorie: calorie}).RegisterRouter(api)
	(&Follow{Session: session, Follows: follows}).RegisterRouter(api)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, response.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	code, resp := do(t, r, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"email": "ann@example.com", "password": "password1", "username": "ann", "display_name": "Ann",
	})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	uid := resp.Data.(map[string]any)["user_id"].(string)

	code, resp = do(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "ann@example.com", "password": "password1"})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	return uid
}

func TestRoutes_RequireSession(t *testing.T) {
	r := newTestRouter(t)
	code, resp := do(t, r, http.MethodGet, "/api/v1/user/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuth_SignUpValidationFields(t *testing.T) {
	r := newTestRouter(t)
	code, resp := do(t, r, http.MethodPost, "/api/v1/auth/signup", gin.H{"email": "nope", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Fields, "email")
	assert.Contains(t, resp.Fields, "password")
}

func TestMeal_CreateAndListForOwner(t *testing.T) {
	r := newTestRouter(t)
	uid := login(t, r)

	code, resp := do(t, r, http.MethodPost, "/api/v1/meals", gin.H{
		"image": "memory://objects/a.png", "description": "bowl", "calories": 420, "meal_type": "lunch", "log_entry": true,
	})
	require.Equal(t, http.StatusOK, code, resp.Msg)
	mealID := resp.Data.(map[string]any)["id"].(string)

	code, resp = do(t, r, http.MethodGet, "/api/v1/user/"+uid+"/meals", nil)
	require.Equal(t, http.StatusOK, code)
	list := resp.Data.([]any)
	require.Len(t, list, 1)
	assert.Equal(t, mealID, list[0].(map[string]any)["id"])

	code, resp = do(t, r, http.MethodGet, "/api/v1/stats/daily", nil)
	require.Equal(t, http.StatusOK, code)
	totals := resp.Data.(map[string]any)["totals"].(map[string]any)
	assert.Equal(t, 420.0, totals["calories"])

	code, _ = do(t, r, http.MethodPost, "/api/v1/meals/"+mealID+"/like", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, r, http.MethodPost, "/api/v1/meals/unknown/like", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFollow_SelfIsBadRequest(t *testing.T) {
	r := newTestRouter(t)
	uid := login(t, r)
	code, resp := do(t, r, http.MethodPost, "/api/v1/follow/"+uid, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
