package handler

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/middleware"
	"github.com/petroshong/calofeed-sub001/pkg/context"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/response"
	"github.com/petroshong/calofeed-sub001/service"
	"github.com/petroshong/calofeed-sub001/types"
)

type User struct {
	Session service.ISessionService
	Meals   service.IMealService
	Follows service.IFollowService
}

func (u *User) RegisterRouter(r gin.IRouter) {
	authorize := middleware.RequireSession(u.Session)
	g := r.Group("/user", authorize)
	g.GET("/me", context.Wrap(u.Me))
	g.PUT("/me", context.Wrap(u.UpdateMe))
	g.POST("/me/refresh", context.Wrap(u.Refresh))
	g.GET("/:id/meals", context.Wrap(u.UserMeals))
}

func (u *User) Me(c *gin.Context) error {
	user := u.Session.CurrentUser()
	if user == nil {
		return errs.NotFound("profile not loaded")
	}
	response.Success(c, user)
	return nil
}

func (u *User) UpdateMe(c *gin.Context) error {
	var req types.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, err := u.Session.UpdateUser(c.Request.Context(), req.Patch())
	if err != nil {
		return err
	}
	response.Success(c, user)
	return nil
}

func (u *User) Refresh(c *gin.Context) error {
	user, err := u.Session.RefreshProfile(c.Request.Context())
	if err != nil {
		return err
	}
	response.Success(c, user)
	return nil
}

// UserMeals 他人的餐食按可见性过滤
func (u *User) UserMeals(c *gin.Context) error {
	target := c.Param("id")
	viewer := u.Session.UserID()
	meals := u.Meals.GetUserMeals(target)
	if target == viewer {
		response.Success(c, meals)
		return nil
	}
	following, err := u.Follows.IsFollowing(c.Request.Context(), target)
	if err != nil {
		return err
	}
	followsBack := false
	if following {
		ids, err := u.Follows.Following(c.Request.Context(), target)
		if err != nil {
			return err
		}
		followsBack = slices.Contains(ids, viewer)
	}
	visible := make([]types.Meal, 0, len(meals))
	for _, m := range meals {
		if m.CanView(viewer, following && followsBack) {
			visible = append(visible, m)
		}
	}
	response.Success(c, visible)
	return nil
}
