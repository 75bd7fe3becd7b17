package service

import (
	"context"
	"time"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
)

// 排行榜默认条数
const defaultLeaderboardSize = 50

var _ IChallengeService = (*ChallengeService)(nil)

type IChallengeService interface {
	List(ctx context.Context) ([]types.Challenge, error)
	Join(ctx context.Context, id string) (*types.Challenge, error)
	Leave(ctx context.Context, id string) (*types.Challenge, error)
	Leaderboard(ctx context.Context, id string, limit int) ([]types.LeaderboardEntry, error)
	SyncStreak(ctx context.Context, streak int) error
}

type ChallengeService struct {
	Remote  backend.Store
	Session ISessionService
}

func (s *ChallengeService) List(ctx context.Context) ([]types.Challenge, error) {
	return s.Remote.ListChallenges(ctx, s.Session.UserID())
}

// Join 重复参与不改变人数
func (s *ChallengeService) Join(ctx context.Context, id string) (*types.Challenge, error) {
	uid := s.Session.UserID()
	if uid == "" {
		return nil, errs.Auth("not signed in", nil)
	}
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsJoined && time.Now().After(c.EndDate) {
		return nil, errs.Validation("challenge has ended", nil)
	}
	if _, err := s.Remote.JoinChallenge(ctx, id, uid); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *ChallengeService) Leave(ctx context.Context, id string) (*types.Challenge, error) {
	uid := s.Session.UserID()
	if uid == "" {
		return nil, errs.Auth("not signed in", nil)
	}
	if _, err := s.Remote.LeaveChallenge(ctx, id, uid); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *ChallengeService) Leaderboard(ctx context.Context, id string, limit int) ([]types.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	return s.Remote.Leaderboard(ctx, id, min(limit, types.MaxPageSize))
}

// SyncStreak 把连续天数写入已参与且进行中的连续打卡挑战
func (s *ChallengeService) SyncStreak(ctx context.Context, streak int) error {
	uid := s.Session.UserID()
	if uid == "" {
		return nil
	}
	list, err := s.Remote.ListChallenges(ctx, uid)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, c := range list {
		if !c.IsJoined || c.Type != types.ChallengeStreak || !c.Active(now) {
			continue
		}
		if err := s.Remote.UpdateChallengeProgress(ctx, c.ID, uid, float64(streak)); err != nil {
			log.L.Warn("update challenge progress failed", zap.String("challenge_id", c.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *ChallengeService) find(ctx context.Context, id string) (*types.Challenge, error) {
	list, err := s.Remote.ListChallenges(ctx, s.Session.UserID())
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, errs.NotFound("challenge %s not found", id)
}
