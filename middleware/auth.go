package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/pkg/context"
	"github.com/petroshong/calofeed-sub001/pkg/response"
)

// Viewer 当前会话的用户
type Viewer interface {
	UserID() string
}

// RequireSession 未登录时返回 401，登录后把 user_id 放进上下文
func RequireSession(v Viewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := v.UserID()
		if uid == "" {
			response.Abort(c, http.StatusUnauthorized, "not signed in")
			return
		}
		c.Set(context.CtxUserID, uid)
		c.Next()
	}
}
