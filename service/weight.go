package service

import (
	"slices"
	"sync"
	"time"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/localstore"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/pkg/snowflake"
	"github.com/petroshong/calofeed-sub001/pkg/validate"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
)

const weightsKey = "weight_entries"

var _ IWeightService = (*WeightService)(nil)

type IWeightService interface {
	Add(req types.NewWeightEntry) (*types.WeightEntry, error)
	List() []types.WeightEntry
	Delete(id string)
}

type WeightService struct {
	Store   localstore.Store
	Session ISessionService

	mu sync.Mutex `wire:"-"`
}

func (s *WeightService) Add(req types.NewWeightEntry) (*types.WeightEntry, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	uid := s.Session.UserID()
	if uid == "" {
		return nil, errs.Auth("not signed in", nil)
	}
	e := types.WeightEntry{
		ID:         snowflake.GenStringID(),
		UserID:     uid,
		WeightKg:   req.WeightKg,
		Note:       req.Note,
		RecordedAt: time.Now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all := localstore.Get(s.Store, weightsKey, []types.WeightEntry{})
	all = append(all, e)
	if err := localstore.Set(s.Store, weightsKey, all); err != nil {
		log.L.Error("persist weight entries failed", zap.Error(err))
		return nil, errs.Unknown("save weight entry", err)
	}
	return &e, nil
}

// List 当前用户的记录，最新的在前
func (s *WeightService) List() []types.WeightEntry {
	uid := s.Session.UserID()
	s.mu.Lock()
	all := localstore.Get(s.Store, weightsKey, []types.WeightEntry{})
	s.mu.Unlock()
	out := slices.DeleteFunc(all, func(e types.WeightEntry) bool { return e.UserID != uid || uid == "" })
	slices.SortStableFunc(out, func(a, b types.WeightEntry) int { return b.RecordedAt.Compare(a.RecordedAt) })
	return out
}

func (s *WeightService) Delete(id string) {
	uid := s.Session.UserID()
	s.mu.Lock()
	defer s.mu.Unlock()
	all := localstore.Get(s.Store, weightsKey, []types.WeightEntry{})
	n := len(all)
	all = slices.DeleteFunc(all, func(e types.WeightEntry) bool { return e.ID == id && e.UserID == uid })
	if len(all) == n {
		return
	}
	if err := localstore.Set(s.Store, weightsKey, all); err != nil {
		log.L.Error("persist weight entries failed", zap.Error(err))
	}
}
