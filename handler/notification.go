package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/petroshong/calofeed-sub001/middleware"
	"github.com/petroshong/calofeed-sub001/pkg/context"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/pkg/response"
	"github.com/petroshong/calofeed-sub001/pkg/socket"
	"github.com/petroshong/calofeed-sub001/service"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Notification 通知列表与本地推送连接
type Notification struct {
	Session service.ISessionService
	Feed    service.INotificationFeed
	Hub     *socket.Hub
}

func (n *Notification) RegisterRouter(r gin.IRouter) {
	authorize := middleware.RequireSession(n.Session)
	r.GET("/notifications", authorize, context.Wrap(n.List))
	r.POST("/notifications/read", authorize, context.Wrap(n.MarkRead))
	r.GET("/ws", authorize, n.Connect)
}

// List unread=1 时只看未读
func (n *Notification) List(c *gin.Context) error {
	limit, err := queryInt(c, "limit", types.DefaultPageSize)
	if err != nil {
		return err
	}
	list, err := n.Feed.List(c.Request.Context(), c.Query("unread") == "1", limit)
	if err != nil {
		return err
	}
	response.Success(c, gin.H{
		"items":  list,
		"unread": len(n.Feed.Unread()),
	})
	return nil
}

func (n *Notification) MarkRead(c *gin.Context) error {
	var req types.MarkReadRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := n.Feed.MarkRead(c.Request.Context(), req.IDs); err != nil {
		return err
	}
	response.Success(c, nil)
	return nil
}

func (n *Notification) Connect(c *gin.Context) {
	uid, err := context.GetUserID(c)
	if err != nil {
		response.Abort(c, http.StatusUnauthorized, "not signed in")
		return
	}
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.L.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	n.Hub.Serve(c.Request.Context(), conn, uid)
}
