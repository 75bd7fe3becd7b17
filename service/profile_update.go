package service

import (
	"context"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/pkg/validate"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
)

// ProfileUpdate 资料修改命令：记录快照，先改本地，再提交远端，失败时恢复快照
type ProfileUpdate struct {
	Patch types.UserPatch

	snapshot *types.User
	applied  *types.User
}

func (c *ProfileUpdate) Execute(ctx context.Context, s *SessionService) (*types.User, error) {
	if err := validate.Struct(c.Patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state != StateAuthenticated || s.session == nil {
		s.mu.Unlock()
		return nil, errs.Auth("not signed in", nil)
	}
	if s.user == nil {
		s.mu.Unlock()
		return nil, errs.NotFound("profile not loaded")
	}
	userID := s.user.ID
	current := s.user.Clone()
	s.mu.Unlock()

	if c.Patch.Empty() {
		return current, nil
	}
	if c.Patch.Username != nil && *c.Patch.Username != current.Username {
		ok, err := s.Identity.CheckUsernameAvailable(ctx, *c.Patch.Username)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.Validation("username is already taken", map[string]string{"username": "is already taken"})
		}
	}

	c.apply(s)

	updated, err := s.Identity.UpdateProfile(ctx, userID, c.Patch)
	if err != nil {
		c.compensate(s)
		log.L.Warn("update profile failed, local changes reverted", zap.String("user_id", userID), zap.Error(err))
		switch errs.KindOf(err) {
		case errs.KindNetwork, errs.KindValidation, errs.KindAuth:
			return nil, err
		default:
			return nil, errs.Unknown("update profile failed", err)
		}
	}

	s.mu.Lock()
	if c.applied != nil && s.user == c.applied {
		s.user = updated.Clone()
	}
	out := s.user.Clone()
	s.mu.Unlock()
	return out, nil
}

func (c *ProfileUpdate) apply(s *SessionService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	c.snapshot = s.user
	next := c.Patch.Apply(*s.user)
	c.applied = &next
	s.user = c.applied
}

// compensate 只在本地资料仍是本次写入的结果时恢复
func (c *ProfileUpdate) compensate(s *SessionService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.applied != nil && s.user == c.applied {
		s.user = c.snapshot
	}
}
