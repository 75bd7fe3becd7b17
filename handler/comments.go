package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/middleware"
	"github.com/petroshong/calofeed-sub001/pkg/context"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/response"
	"github.com/petroshong/calofeed-sub001/service"
	"github.com/petroshong/calofeed-sub001/types"
)

type Comments struct {
	Session  service.ISessionService
	Comments service.ICommentService
}

func (h *Comments) RegisterRouter(r gin.IRouter) {
	authorize := middleware.RequireSession(h.Session)
	r.GET("/meals/:id/comments", context.Wrap(h.List))
	r.POST("/meals/:id/comments", authorize, context.Wrap(h.Create))
	r.DELETE("/comments/:id", authorize, context.Wrap(h.Delete))
}

func (h *Comments) List(c *gin.Context) error {
	list, err := h.Comments.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	response.Success(c, list)
	return nil
}

func (h *Comments) Create(c *gin.Context) error {
	var req types.NewComment
	// 去掉首尾空白后由服务端校验
	if err := c.ShouldBindJSON(&req); err != nil {
		return errs.Validation("invalid request body", map[string]string{"body": err.Error()})
	}
	comment, err := h.Comments.Add(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	response.Success(c, comment)
	return nil
}

func (h *Comments) Delete(c *gin.Context) error {
	if err := h.Comments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		return err
	}
	response.Success(c, nil)
	return nil
}
