package service

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/petroshong/calofeed-sub001/pkg/localstore"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/pkg/snowflake"
	"github.com/petroshong/calofeed-sub001/pkg/utils"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
)

// 本地记录集合的键
const entriesKey = "calorie_entries"

// 记录变更后同步资料的超时
const profileSyncTimeout = 5 * time.Second

var _ ICalorieService = (*CalorieService)(nil)

type ICalorieService interface {
	AddEntry(e types.NewEntry) types.CalorieEntry
	UpdateEntry(id string, patch types.EntryPatch)
	DeleteEntry(id string)
	Entries(from, to time.Time) []types.CalorieEntry
	DailyTotals() types.Macros
	WeeklyAverage() types.Macros
	GoalProgress() types.Progress
	Streak() int
	DailyStats() types.DailyStats
	Recompute(ctx context.Context) error
}

// CalorieService 汇总全部按需从记录重新计算，不落盘
type CalorieService struct {
	Store   localstore.Store
	Session ISessionService
	Now     func() time.Time

	mu sync.Mutex
}

func NewCalorieService(store localstore.Store, session ISessionService) *CalorieService {
	return &CalorieService{Store: store, Session: session, Now: time.Now}
}

func (s *CalorieService) AddEntry(e types.NewEntry) types.CalorieEntry {
	source := e.Source
	if source == "" {
		source = types.SourceManual
	}
	entry := types.CalorieEntry{
		ID:         snowflake.GenStringID(),
		UserID:     s.Session.UserID(),
		Date:       s.Now(),
		Calories:   e.Calories,
		Protein:    e.Protein,
		Carbs:      e.Carbs,
		Fat:        e.Fat,
		MealType:   e.MealType,
		Source:     source,
		Confidence: e.Confidence,
		Name:       e.Name,
	}

	s.mu.Lock()
	all := s.load()
	all = append(all, entry)
	s.save(all)
	s.mu.Unlock()
	s.syncProfile()
	return entry
}

// UpdateEntry 不存在的 id 直接忽略
func (s *CalorieService) UpdateEntry(id string, patch types.EntryPatch) {
	uid := s.Session.UserID()
	s.mu.Lock()
	all := s.load()
	i := slices.IndexFunc(all, func(e types.CalorieEntry) bool { return e.ID == id && e.UserID == uid })
	if i < 0 {
		s.mu.Unlock()
		return
	}
	all[i] = patch.Apply(all[i])
	s.save(all)
	s.mu.Unlock()
	s.syncProfile()
}

func (s *CalorieService) DeleteEntry(id string) {
	uid := s.Session.UserID()
	s.mu.Lock()
	all := s.load()
	n := len(all)
	all = slices.DeleteFunc(all, func(e types.CalorieEntry) bool { return e.ID == id && e.UserID == uid })
	if len(all) == n {
		s.mu.Unlock()
		return
	}
	s.save(all)
	s.mu.Unlock()
	s.syncProfile()
}

// Entries [from, to) 内当前用户的记录，按时间正序
func (s *CalorieService) Entries(from, to time.Time) []types.CalorieEntry {
	out := make([]types.CalorieEntry, 0)
	for _, e := range s.mine() {
		if !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b types.CalorieEntry) int { return a.Date.Compare(b.Date) })
	return out
}

func (s *CalorieService) DailyTotals() types.Macros {
	today := utils.DayKey(s.Now())
	var total types.Macros
	for _, e := range s.mine() {
		if utils.DayKey(e.Date) == today {
			total = total.Add(e.Macros())
		}
	}
	return total
}

// WeeklyAverage 含今天在内的七个日历日，按有记录的天数求平均
func (s *CalorieService) WeeklyAverage() types.Macros {
	since := utils.DayKey(s.Now().AddDate(0, 0, -6))
	var total types.Macros
	days := make(map[string]struct{})
	for _, e := range s.mine() {
		key := utils.DayKey(e.Date)
		if key < since {
			continue
		}
		total = total.Add(e.Macros())
		days[key] = struct{}{}
	}
	return total.Div(float64(min(len(days), 7)))
}

func (s *CalorieService) GoalProgress() types.Progress {
	goals := types.DefaultGoals()
	if u := s.Session.CurrentUser(); u != nil {
		goals = u.Goals
	}
	return progress(s.DailyTotals(), goals)
}

// Streak 以今天或昨天结尾的连续记录天数
func (s *CalorieService) Streak() int {
	days := make(map[string]struct{})
	for _, e := range s.mine() {
		days[utils.DayKey(e.Date)] = struct{}{}
	}
	day := utils.StartOfDay(s.Now())
	if _, ok := days[utils.DayKey(day)]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for {
		if _, ok := days[utils.DayKey(day)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

func (s *CalorieService) DailyStats() types.DailyStats {
	goals := types.DefaultGoals()
	if u := s.Session.CurrentUser(); u != nil {
		goals = u.Goals
	}
	totals := s.DailyTotals()
	return types.DailyStats{
		Date:     utils.DayKey(s.Now()),
		Totals:   totals,
		Goals:    goals,
		Progress: progress(totals, goals),
		Streak:   s.Streak(),
	}
}

// Recompute 把今日摄入与连续天数写回资料，本地先生效，远端失败不回退本地
func (s *CalorieService) Recompute(ctx context.Context) error {
	if s.Session.UserID() == "" {
		return nil
	}
	totals := s.DailyTotals()
	streak := s.Streak()
	s.Session.ApplyLocal(func(u *types.User) {
		u.Consumed = totals
		u.Streak = streak
	})
	_, err := s.Session.UpdateUser(ctx, types.UserPatch{Consumed: &totals, Streak: &streak})
	return err
}

func (s *CalorieService) syncProfile() {
	ctx, cancel := context.WithTimeout(context.Background(), profileSyncTimeout)
	defer cancel()
	if err := s.Recompute(ctx); err != nil {
		log.L.Warn("sync consumed totals to profile failed", zap.String("user_id", s.Session.UserID()), zap.Error(err))
	}
}

func (s *CalorieService) mine() []types.CalorieEntry {
	uid := s.Session.UserID()
	s.mu.Lock()
	all := s.load()
	s.mu.Unlock()
	return slices.DeleteFunc(all, func(e types.CalorieEntry) bool { return e.UserID != uid })
}

func (s *CalorieService) load() []types.CalorieEntry {
	return localstore.Get(s.Store, entriesKey, []types.CalorieEntry{})
}

func (s *CalorieService) save(all []types.CalorieEntry) {
	if err := localstore.Set(s.Store, entriesKey, all); err != nil {
		log.L.Error("persist calorie entries failed", zap.Int("count", len(all)), zap.Error(err))
	}
}

// progress 目标非正数时记为 0
func progress(total types.Macros, goals types.Goals) types.Progress {
	pct := func(v float64, goal int) int {
		if goal <= 0 {
			return 0
		}
		return int(math.Round(v / float64(goal) * 100))
	}
	return types.Progress{
		Calories: pct(total.Calories, goals.Calories),
		Protein:  pct(total.Protein, goals.Protein),
		Carbs:    pct(total.Carbs, goals.Carbs),
		Fat:      pct(total.Fat, goals.Fat),
	}
}
