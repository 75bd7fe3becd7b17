package service

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/localstore"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/pkg/snowflake"
	"github.com/petroshong/calofeed-sub001/pkg/utils"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
)

// 本地餐食集合的键
const mealsKey = "meals"

// 远端同步时拉取的公开动态条数
const syncPublicLimit = 100

var _ IMealService = (*MealService)(nil)

type IMealService interface {
	AddMeal(ctx context.Context, payload types.NewMeal) types.Meal
	UpdateMeal(ctx context.Context, id string, patch types.MealPatch)
	DeleteMeal(ctx context.Context, id string)
	GetMeal(id string) (types.Meal, bool)
	GetUserMeals(userID string) []types.Meal
	GetPublicMeals() []types.Meal
	ToggleLike(ctx context.Context, id string) (types.Meal, bool)
	ToggleBookmark(ctx context.Context, id string) (types.Meal, bool)
	ShareMeal(ctx context.Context, id string) (*types.ShareResponse, error)
	MealByShareCode(code string) (types.Meal, error)
	ViewMeal(ctx context.Context, id string) (types.Meal, bool)
	Feed(ctx context.Context, limit, offset int) ([]types.Meal, error)
	SyncFromRemote(ctx context.Context) error
	BumpComments(id string, delta int)
}

// MealService 本地集合为准，远端存储配置时在本地写入后镜像
type MealService struct {
	Store     localstore.Store
	Session   ISessionService
	Remote    backend.Store
	ShareSalt string
	Now       func() time.Time

	mu sync.Mutex
}

func NewMealService(store localstore.Store, session ISessionService, remote backend.Store, salt string) *MealService {
	return &MealService{Store: store, Session: session, Remote: remote, ShareSalt: salt, Now: time.Now}
}

func (s *MealService) AddMeal(ctx context.Context, payload types.NewMeal) types.Meal {
	visibility := payload.Visibility
	if visibility == "" {
		visibility = types.VisibilityPublic
	}
	tags := payload.Tags
	if tags == nil {
		tags = []string{}
	}
	meal := types.Meal{
		ID:          snowflake.GenStringID(),
		UserID:      s.Session.UserID(),
		User:        s.Session.CurrentUser().Snapshot(),
		Image:       payload.Image,
		ImageKey:    payload.ImageKey,
		Description: payload.Description,
		Calories:    payload.Calories,
		Protein:     payload.Protein,
		Carbs:       payload.Carbs,
		Fat:         payload.Fat,
		MealType:    payload.MealType,
		Location:    payload.Location,
		Tags:        slices.Clone(tags),
		Visibility:  visibility,
		CreatedAt:   s.Now(),
	}

	s.mu.Lock()
	all := s.load()
	all = append([]types.Meal{meal}, all...)
	s.save(all)
	s.mu.Unlock()

	s.mirror("insert meal", meal.ID, func() error { return s.Remote.InsertMeal(ctx, meal) })
	return meal
}

func (s *MealService) UpdateMeal(ctx context.Context, id string, patch types.MealPatch) {
	uid := s.Session.UserID()
	updated, ok := s.mutate(id, func(m *types.Meal) bool {
		*m = patch.Apply(*m)
		return true
	})
	if !ok || updated.UserID != uid {
		return
	}
	s.mirror("update meal", id, func() error { return s.Remote.UpdateMeal(ctx, id, patch) })
}

// DeleteMeal 远端删除失败不回滚本地
func (s *MealService) DeleteMeal(ctx context.Context, id string) {
	s.mu.Lock()
	all := s.load()
	i := slices.IndexFunc(all, func(m types.Meal) bool { return m.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return
	}
	removed := all[i]
	all = slices.Delete(all, i, i+1)
	s.save(all)
	s.mu.Unlock()

	if removed.UserID == s.Session.UserID() {
		s.mirror("delete meal", id, func() error { return s.Remote.DeleteMeal(ctx, id) })
	}
}

func (s *MealService) GetMeal(id string) (types.Meal, bool) {
	for _, m := range s.all() {
		if m.ID == id {
			return m, true
		}
	}
	return types.Meal{}, false
}

// GetUserMeals 保持集合原有顺序
func (s *MealService) GetUserMeals(userID string) []types.Meal {
	out := make([]types.Meal, 0)
	for _, m := range s.all() {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out
}

func (s *MealService) GetPublicMeals() []types.Meal {
	out := make([]types.Meal, 0)
	for _, m := range s.all() {
		if m.Visibility == types.VisibilityPublic {
			out = append(out, m)
		}
	}
	return out
}

// ToggleLike 点赞状态与点赞数在同一次写入中变化，远端失败时翻转回去
func (s *MealService) ToggleLike(ctx context.Context, id string) (types.Meal, bool) {
	meal, ok := s.mutate(id, flipLike)
	if !ok {
		return meal, false
	}
	uid := s.Session.UserID()
	if s.Remote == nil || uid == "" {
		return meal, true
	}
	if err := s.Remote.SetLike(ctx, uid, id, meal.IsLiked); err != nil {
		log.L.Warn("mirror like failed, reverting", zap.String("meal_id", id), zap.Error(err))
		if reverted, ok := s.mutate(id, flipLike); ok {
			return reverted, true
		}
	}
	return meal, true
}

func (s *MealService) ToggleBookmark(ctx context.Context, id string) (types.Meal, bool) {
	meal, ok := s.mutate(id, flipBookmark)
	if !ok {
		return meal, false
	}
	uid := s.Session.UserID()
	if s.Remote == nil || uid == "" {
		return meal, true
	}
	if err := s.Remote.SetBookmark(ctx, uid, id, meal.IsBookmarked); err != nil {
		log.L.Warn("mirror bookmark failed, reverting", zap.String("meal_id", id), zap.Error(err))
		if reverted, ok := s.mutate(id, flipBookmark); ok {
			return reverted, true
		}
	}
	return meal, true
}

// ShareMeal 分享数加一并生成分享码
func (s *MealService) ShareMeal(ctx context.Context, id string) (*types.ShareResponse, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, errs.Validation("meal cannot be shared", map[string]string{"id": "is not a shareable id"})
	}
	meal, ok := s.mutate(id, func(m *types.Meal) bool {
		m.Shares++
		return true
	})
	if !ok {
		return nil, errs.NotFound("meal %s not found", id)
	}
	s.mirror("update shares", id, func() error { return s.Remote.SetMealCounter(ctx, id, "shares", meal.Shares) })
	return &types.ShareResponse{Code: utils.GenHashID(s.ShareSalt, n), Shares: meal.Shares}, nil
}

func (s *MealService) MealByShareCode(code string) (types.Meal, error) {
	n, err := utils.DecodeHashID(s.ShareSalt, code)
	if err != nil {
		return types.Meal{}, errs.Validation("invalid share code", map[string]string{"code": "is invalid"})
	}
	m, ok := s.GetMeal(strconv.FormatInt(n, 10))
	if !ok || !m.CanView(s.Session.UserID(), false) {
		return types.Meal{}, errs.NotFound("shared meal not found")
	}
	return m, nil
}

func (s *MealService) ViewMeal(ctx context.Context, id string) (types.Meal, bool) {
	meal, ok := s.mutate(id, func(m *types.Meal) bool {
		m.Views++
		return true
	})
	if ok {
		s.mirror("update views", id, func() error { return s.Remote.SetMealCounter(ctx, id, "views", meal.Views) })
	}
	return meal, ok
}

// Feed 合并远端公开与关注的动态和本地动态，按可见性过滤后倒序分页
func (s *MealService) Feed(ctx context.Context, limit, offset int) ([]types.Meal, error) {
	if limit <= 0 {
		limit = types.DefaultPageSize
	}
	limit = min(limit, types.MaxPageSize)
	offset = max(offset, 0)
	uid := s.Session.UserID()

	byID := make(map[string]types.Meal)
	for _, m := range s.all() {
		byID[m.ID] = m
	}

	mutual := make(map[string]bool)
	if s.Remote != nil {
		window := offset + limit
		public, err := s.Remote.ListMeals(ctx, backend.MealQuery{
			Visibility: []types.Visibility{types.VisibilityPublic},
			Limit:      window,
		})
		if err != nil {
			return nil, err
		}
		remote := public
		if uid != "" {
			following, err := s.Remote.Following(ctx, uid)
			if err != nil {
				return nil, err
			}
			followers, err := s.Remote.Followers(ctx, uid)
			if err != nil {
				return nil, err
			}
			for _, id := range following {
				if slices.Contains(followers, id) {
					mutual[id] = true
				}
			}
			owners := append(slices.Clone(following), uid)
			followed, err := s.Remote.ListMeals(ctx, backend.MealQuery{UserIDs: owners, Limit: window})
			if err != nil {
				return nil, err
			}
			remote = append(remote, followed...)
		}
		ids := make([]string, 0, len(remote))
		for _, m := range remote {
			ids = append(ids, m.ID)
		}
		reactions, err := s.Remote.Reactions(ctx, uid, ids)
		if err != nil {
			log.L.Warn("load reactions failed", zap.Error(err))
		}
		for _, m := range remote {
			m.IsLiked = reactions.Liked[m.ID]
			m.IsBookmarked = reactions.Bookmarked[m.ID]
			byID[m.ID] = m
		}
	}

	feed := make([]types.Meal, 0, len(byID))
	for _, m := range byID {
		if m.CanView(uid, mutual[m.UserID]) {
			feed = append(feed, m)
		}
	}
	slices.SortFunc(feed, func(a, b types.Meal) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	if offset >= len(feed) {
		return []types.Meal{}, nil
	}
	return feed[offset:min(offset+limit, len(feed))], nil
}

// SyncFromRemote 用远端数据刷新本地缓存，保留尚未同步的本地动态
func (s *MealService) SyncFromRemote(ctx context.Context) error {
	if s.Remote == nil {
		return nil
	}
	uid := s.Session.UserID()
	fetched, err := s.Remote.ListMeals(ctx, backend.MealQuery{
		Visibility: []types.Visibility{types.VisibilityPublic},
		Limit:      syncPublicLimit,
	})
	if err != nil {
		return err
	}
	if uid != "" {
		own, err := s.Remote.ListMeals(ctx, backend.MealQuery{UserIDs: []string{uid}})
		if err != nil {
			return err
		}
		fetched = append(own, fetched...)
	}

	seen := make(map[string]bool, len(fetched))
	merged := make([]types.Meal, 0, len(fetched))
	ids := make([]string, 0, len(fetched))
	for _, m := range fetched {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		merged = append(merged, m)
		ids = append(ids, m.ID)
	}
	reactions, err := s.Remote.Reactions(ctx, uid, ids)
	if err != nil {
		return err
	}
	for i := range merged {
		merged[i].IsLiked = reactions.Liked[merged[i].ID]
		merged[i].IsBookmarked = reactions.Bookmarked[merged[i].ID]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.load() {
		if !seen[m.ID] && m.UserID == uid && uid != "" {
			merged = append(merged, m)
		}
	}
	slices.SortStableFunc(merged, func(a, b types.Meal) int { return b.CreatedAt.Compare(a.CreatedAt) })
	s.save(merged)
	log.L.Info("meals synced from remote", zap.Int("count", len(merged)))
	return nil
}

// BumpComments 评论增删后同步本地评论数
func (s *MealService) BumpComments(id string, delta int) {
	s.mutate(id, func(m *types.Meal) bool {
		m.Comments = max(m.Comments+delta, 0)
		return true
	})
}

// mutate 在锁内修改单条餐食，fn 返回 false 时不写回
func (s *MealService) mutate(id string, fn func(m *types.Meal) bool) (types.Meal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.load()
	i := slices.IndexFunc(all, func(m types.Meal) bool { return m.ID == id })
	if i < 0 {
		return types.Meal{}, false
	}
	if fn(&all[i]) {
		s.save(all)
	}
	return all[i], true
}

func (s *MealService) mirror(op, id string, fn func() error) {
	if s.Remote == nil || s.Session.UserID() == "" {
		return
	}
	if err := fn(); err != nil {
		log.L.Warn("mirror to remote failed", zap.String("op", op), zap.String("meal_id", id), zap.Error(err))
	}
}

func (s *MealService) all() []types.Meal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *MealService) load() []types.Meal {
	return localstore.Get(s.Store, mealsKey, []types.Meal{})
}

func (s *MealService) save(all []types.Meal) {
	if err := localstore.Set(s.Store, mealsKey, all); err != nil {
		log.L.Error("persist meals failed", zap.Int("count", len(all)), zap.Error(err))
	}
}

func flipLike(m *types.Meal) bool {
	m.IsLiked = !m.IsLiked
	if m.IsLiked {
		m.Likes++
	} else {
		m.Likes--
	}
	return true
}

func flipBookmark(m *types.Meal) bool {
	m.IsBookmarked = !m.IsBookmarked
	return true
}
