package service

import (
	"context"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
)

var _ IFollowService = (*FollowService)(nil)

type IFollowService interface {
	Follow(ctx context.Context, targetID string) (bool, error)
	Unfollow(ctx context.Context, targetID string) (bool, error)
	IsFollowing(ctx context.Context, targetID string) (bool, error)
	Followers(ctx context.Context, userID string) ([]string, error)
	Following(ctx context.Context, userID string) ([]string, error)
}

type FollowService struct {
	Remote  backend.Store
	Session ISessionService
}

// Follow 重复关注直接返回成功
func (s *FollowService) Follow(ctx context.Context, targetID string) (bool, error) {
	uid := s.Session.UserID()
	if uid == "" {
		return false, errs.Auth("not signed in", nil)
	}
	// 不能关注自己
	if uid == targetID {
		return false, errs.Validation("you cannot follow yourself", map[string]string{"id": "must not be your own id"})
	}
	created, err := s.Remote.Follow(ctx, uid, targetID)
	if err != nil {
		return false, err
	}
	if created {
		s.Session.ApplyLocal(func(u *types.User) { u.Following++ })
	}
	return created, nil
}

func (s *FollowService) Unfollow(ctx context.Context, targetID string) (bool, error) {
	uid := s.Session.UserID()
	if uid == "" {
		return false, errs.Auth("not signed in", nil)
	}
	if uid == targetID {
		return false, errs.Validation("you cannot unfollow yourself", map[string]string{"id": "must not be your own id"})
	}
	removed, err := s.Remote.Unfollow(ctx, uid, targetID)
	if err != nil {
		return false, err
	}
	if removed {
		s.Session.ApplyLocal(func(u *types.User) { u.Following = max(u.Following-1, 0) })
	}
	return removed, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, targetID string) (bool, error) {
	uid := s.Session.UserID()
	if uid == "" {
		return false, nil
	}
	return s.Remote.IsFollowing(ctx, uid, targetID)
}

func (s *FollowService) Followers(ctx context.Context, userID string) ([]string, error) {
	return s.Remote.Followers(ctx, userID)
}

func (s *FollowService) Following(ctx context.Context, userID string) ([]string, error) {
	return s.Remote.Following(ctx, userID)
}
