package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/middleware"
	"github.com/petroshong/calofeed-sub001/pkg/context"
	"github.com/petroshong/calofeed-sub001/pkg/response"
	"github.com/petroshong/calofeed-sub001/service"
	"github.com/petroshong/calofeed-sub001/types"
)

type Weight struct {
	Session service.ISessionService
	Weights service.IWeightService
}

func (w *Weight) RegisterRouter(r gin.IRouter) {
	authorize := middleware.RequireSession(w.Session)
	g := r.Group("/weights", authorize)
	g.POST("", context.Wrap(w.Create))
	g.GET("", context.Wrap(w.List))
	g.DELETE("/:id", context.Wrap(w.Delete))
}

func (w *Weight) Create(c *gin.Context) error {
	var req types.NewWeightEntry
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	entry, err := w.Weights.Add(req)
	if err != nil {
		return err
	}
	response.Success(c, entry)
	return nil
}

func (w *Weight) List(c *gin.Context) error {
	response.Success(c, w.Weights.List())
	return nil
}

func (w *Weight) Delete(c *gin.Context) error {
	w.Weights.Delete(c.Param("id"))
	response.Success(c, nil)
	return nil
}
