package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/middleware"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/pkg/socket"
	"github.com/petroshong/calofeed-sub001/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider struct {
	Config   *config.Config
	Engine   *gin.Engine
	Session  service.ISessionService
	Calorie  service.ICalorieService
	Meals    service.IMealService
	Feed     service.INotificationFeed
	Rollover *service.RolloverJob
	Hub      *socket.Hub
}

func NewGinEngine(conf *config.Config, h *Handlers) *gin.Engine {
	if !conf.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(CORSMiddleware())
	r.Use(middleware.GinZap(), middleware.GinRecovery(), middleware.Prometheus())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api/v1")
	h.Auth.RegisterRouter(api)
	h.User.RegisterRouter(api)
	h.Entry.RegisterRouter(api)
	h.Meal.RegisterRouter(api)
	h.Upload.RegisterRouter(api)
	h.Comments.RegisterRouter(api)
	h.Follow.RegisterRouter(api)
	h.Challenge.RegisterRouter(api)
	h.Notification.RegisterRouter(api)
	h.Weight.RegisterRouter(api)
	return r
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Content-Length, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func Run(ctx *cli.Context, app *AppProvider) error {
	eg, groupCtx := errgroup.WithContext(ctx.Context)
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)

	log.L.Info("server starting",
		zap.Int("port", app.Config.Server.Http),
		zap.String("env", app.Config.App.Env),
		zap.String("backend", app.Config.Backend.Driver),
	)

	// 会话恢复失败不影响启动，按未登录处理
	if err := app.Session.Bootstrap(groupCtx); err != nil {
		log.L.Warn("restore session failed", zap.Error(err))
	}
	if err := app.Meals.SyncFromRemote(groupCtx); err != nil {
		log.L.Warn("initial meal sync failed", zap.Error(err))
	}
	app.Feed.Start()
	if err := app.Rollover.Start(); err != nil {
		return fmt.Errorf("schedule rollover: %w", err)
	}
	defer func() {
		app.Rollover.Stop()
		app.Feed.Close()
		app.Session.Close()
	}()

	return run(c, eg, groupCtx, app)
}

func run(c chan os.Signal, eg *errgroup.Group, ctx context.Context, app *AppProvider) error {
	serv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config.Server.Http),
		Handler:           app.Engine,
		ReadHeaderTimeout: time.Duration(app.Config.Server.TimeoutSecs) * time.Second,
	}

	hubCtx, hubCancel := context.WithCancel(ctx)
	defer hubCancel()
	eg.Go(func() error {
		return app.Hub.Start(hubCtx)
	})

	eg.Go(func() error {
		err := serv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		defer func() {
			log.L.Info("server stopping")
			hubCancel()

			timeCtx, timeCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer timeCancel()

			if err := serv.Shutdown(timeCtx); err != nil {
				log.L.Info("server shutdown", zap.Error(err))
			}
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c:
			return nil
		}
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.L.Info("server stopping", zap.Error(err))
	}

	log.L.Info("server stopped")
	return nil
}
