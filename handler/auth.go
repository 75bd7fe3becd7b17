package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/pkg/context"
	"github.com/petroshong/calofeed-sub001/pkg/response"
	"github.com/petroshong/calofeed-sub001/service"
	"github.com/petroshong/calofeed-sub001/types"
)

type Auth struct {
	Session service.ISessionService
}

func (a *Auth) RegisterRouter(r gin.IRouter) {
	g := r.Group("/auth")
	g.POST("/signup", context.Wrap(a.SignUp))
	g.POST("/login", context.Wrap(a.Login))
	g.POST("/logout", context.Wrap(a.Logout))
	g.GET("/session", context.Wrap(a.GetSession))
	g.POST("/reset", context.Wrap(a.ResetPassword))
}

func (a *Auth) SignUp(c *gin.Context) error {
	var req types.SignUpRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	res, err := a.Session.SignUp(c.Request.Context(), req)
	if err != nil {
		return err
	}
	response.Success(c, res)
	return nil
}

func (a *Auth) Login(c *gin.Context) error {
	var req types.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	view, err := a.Session.Login(c.Request.Context(), req)
	if err != nil {
		return err
	}
	response.Success(c, view)
	return nil
}

// Logout 远端失败也会清掉本地会话
func (a *Auth) Logout(c *gin.Context) error {
	a.Session.Logout(c.Request.Context())
	response.Success(c, a.Session.View())
	return nil
}

func (a *Auth) GetSession(c *gin.Context) error {
	response.Success(c, a.Session.View())
	return nil
}

func (a *Auth) ResetPassword(c *gin.Context) error {
	var req types.ResetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := a.Session.ResetPassword(c.Request.Context(), req.Email); err != nil {
		return err
	}
	response.Success(c, nil)
	return nil
}
