package service

import (
	"context"
	"strings"
	"time"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/snowflake"
	"github.com/petroshong/calofeed-sub001/pkg/validate"
	"github.com/petroshong/calofeed-sub001/types"
)

var _ ICommentService = (*CommentService)(nil)

type ICommentService interface {
	Add(ctx context.Context, mealID string, req types.NewComment) (*types.Comment, error)
	List(ctx context.Context, mealID string) ([]types.Comment, error)
	Delete(ctx context.Context, commentID string) error
}

type CommentService struct {
	Remote  backend.Store
	Session ISessionService
	Meals   IMealService
}

func (s *CommentService) Add(ctx context.Context, mealID string, req types.NewComment) (*types.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	user := s.Session.CurrentUser()
	if user == nil {
		return nil, errs.Auth("not signed in", nil)
	}
	c := types.Comment{
		ID:        snowflake.GenStringID(),
		MealID:    mealID,
		UserID:    user.ID,
		User:      user.Snapshot(),
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := s.Remote.InsertComment(ctx, c); err != nil {
		return nil, err
	}
	s.Meals.BumpComments(mealID, 1)
	return &c, nil
}

// List 按时间正序
func (s *CommentService) List(ctx context.Context, mealID string) ([]types.Comment, error) {
	return s.Remote.ListComments(ctx, mealID)
}

// Delete 只能删除自己的评论
func (s *CommentService) Delete(ctx context.Context, commentID string) error {
	uid := s.Session.UserID()
	if uid == "" {
		return errs.Auth("not signed in", nil)
	}
	c, err := s.Remote.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != uid {
		return errs.Auth("you can only delete your own comments", nil)
	}
	if err := s.Remote.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.Meals.BumpComments(c.MealID, -1)
	return nil
}
