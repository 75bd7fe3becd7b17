package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/middleware"
	"github.com/petroshong/calofeed-sub001/pkg/context"
	"github.com/petroshong/calofeed-sub001/pkg/response"
	"github.com/petroshong/calofeed-sub001/service"
)

type Follow struct {
	Session service.ISessionService
	Follows service.IFollowService
}

func (f *Follow) RegisterRouter(r gin.IRouter) {
	authorize := middleware.RequireSession(f.Session)
	g := r.Group("/follow", authorize)
	g.POST("/:id", context.Wrap(f.FollowUser))
	g.DELETE("/:id", context.Wrap(f.UnfollowUser))
	g.GET("/:id", context.Wrap(f.Status))
	g.GET("/:id/followers", context.Wrap(f.Followers))
	g.GET("/:id/following", context.Wrap(f.Following))
}

// FollowUser 关注用户
func (f *Follow) FollowUser(c *gin.Context) error {
	created, err := f.Follows.Follow(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	response.Success(c, gin.H{"followed": true, "created": created})
	return nil
}

// UnfollowUser 取消关注用户
func (f *Follow) UnfollowUser(c *gin.Context) error {
	removed, err := f.Follows.Unfollow(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	response.Success(c, gin.H{"followed": false, "removed": removed})
	return nil
}

func (f *Follow) Status(c *gin.Context) error {
	following, err := f.Follows.IsFollowing(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	response.Success(c, gin.H{"followed": following})
	return nil
}

func (f *Follow) Followers(c *gin.Context) error {
	ids, err := f.Follows.Followers(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	response.Success(c, gin.H{"user_ids": ids, "count": len(ids)})
	return nil
}

func (f *Follow) Following(c *gin.Context) error {
	ids, err := f.Follows.Following(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	response.Success(c, gin.H{"user_ids": ids, "count": len(ids)})
	return nil
}
