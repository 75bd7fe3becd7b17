package context

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/pkg/response"
	"go.uber.org/zap"
)

const (
	CtxUserID = "user_id"
)

type HandlerFunc func(*gin.Context) error

func Wrap(h func(*gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h(c); err != nil {

			// 如果已经写过响应，直接返回
			if c.Writer.Written() {
				return
			}
			be := response.FromError(err)
			if be.Code >= http.StatusInternalServerError {
				log.L.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
			}
			c.JSON(statusOf(be.Code), response.Response{
				Code:   be.Code,
				Msg:    be.Msg,
				Fields: be.Fields,
			})
		}
	}
}

func statusOf(code int) int {
	if code >= http.StatusBadRequest && code < 600 {
		return code
	}
	return http.StatusOK
}

func GetUserID(c *gin.Context) (string, error) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", errors.New("user_id not found in context")
	}

	uid, ok := v.(string)
	if !ok || uid == "" {
		return "", errors.New("user_id has unexpected type")
	}

	return uid, nil
}
