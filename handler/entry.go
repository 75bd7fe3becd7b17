package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/middleware"
	"github.com/petroshong/calofeed-sub001/pkg/context"
	"github.com/petroshong/calofeed-sub001/pkg/response"
	"github.com/petroshong/calofeed-sub001/pkg/utils"
	"github.com/petroshong/calofeed-sub001/service"
	"github.com/petroshong/calofeed-sub001/types"
)

// Entry 营养记录与统计
type Entry struct {
	Session service.ISessionService
	Calorie service.ICalorieService
}

func (e *Entry) RegisterRouter(r gin.IRouter) {
	authorize := middleware.RequireSession(e.Session)
	g := r.Group("", authorize)
	g.POST("/entries", context.Wrap(e.Create))
	g.PUT("/entries/:id", context.Wrap(e.Update))
	g.DELETE("/entries/:id", context.Wrap(e.Delete))
	g.GET("/entries", context.Wrap(e.List))
	g.GET("/stats/daily", context.Wrap(e.Daily))
	g.GET("/stats/weekly", context.Wrap(e.Weekly))
	g.GET("/stats/progress", context.Wrap(e.Progress))
}

func (e *Entry) Create(c *gin.Context) error {
	var req types.NewEntry
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	response.Success(c, e.Calorie.AddEntry(req))
	return nil
}

func (e *Entry) Update(c *gin.Context) error {
	var patch types.EntryPatch
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	e.Calorie.UpdateEntry(c.Param("id"), patch)
	response.Success(c, nil)
	return nil
}

func (e *Entry) Delete(c *gin.Context) error {
	e.Calorie.DeleteEntry(c.Param("id"))
	response.Success(c, nil)
	return nil
}

// List 默认今天，to 包含当天
func (e *Entry) List(c *gin.Context) error {
	today := utils.StartOfDay(time.Now())
	from, err := queryDate(c, "from", today)
	if err != nil {
		return err
	}
	to, err := queryDate(c, "to", from)
	if err != nil {
		return err
	}
	response.Success(c, e.Calorie.Entries(from, to.AddDate(0, 0, 1)))
	return nil
}

func (e *Entry) Daily(c *gin.Context) error {
	response.Success(c, e.Calorie.DailyStats())
	return nil
}

func (e *Entry) Weekly(c *gin.Context) error {
	response.Success(c, e.Calorie.WeeklyAverage())
	return nil
}

func (e *Entry) Progress(c *gin.Context) error {
	response.Success(c, gin.H{
		"progress": e.Calorie.GoalProgress(),
		"streak":   e.Calorie.Streak(),
	})
	return nil
}
