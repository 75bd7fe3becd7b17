package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/middleware"
	"github.com/petroshong/calofeed-sub001/pkg/context"
	"github.com/petroshong/calofeed-sub001/pkg/response"
	"github.com/petroshong/calofeed-sub001/service"
)

type Challenge struct {
	Session    service.ISessionService
	Challenges service.IChallengeService
}

func (h *Challenge) RegisterRouter(r gin.IRouter) {
	authorize := middleware.RequireSession(h.Session)
	g := r.Group("/challenges")
	g.GET("", context.Wrap(h.List))
	g.GET("/:id/leaderboard", context.Wrap(h.Leaderboard))
	g.POST("/:id/join", authorize, context.Wrap(h.Join))
	g.POST("/:id/leave", authorize, context.Wrap(h.Leave))
}

func (h *Challenge) List(c *gin.Context) error {
	list, err := h.Challenges.List(c.Request.Context())
	if err != nil {
		return err
	}
	response.Success(c, list)
	return nil
}

func (h *Challenge) Join(c *gin.Context) error {
	ch, err := h.Challenges.Join(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	response.Success(c, ch)
	return nil
}

func (h *Challenge) Leave(c *gin.Context) error {
	ch, err := h.Challenges.Leave(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	response.Success(c, ch)
	return nil
}

func (h *Challenge) Leaderboard(c *gin.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	rows, err := h.Challenges.Leaderboard(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}
	response.Success(c, rows)
	return nil
}
