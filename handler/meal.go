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

type Meal struct {
	Session service.ISessionService
	Meals   service.IMealService
	Calorie service.ICalorieService
}

func (m *Meal) RegisterRouter(r gin.IRouter) {
	authorize := middleware.RequireSession(m.Session)
	g := r.Group("/meals")
	g.GET("/public", context.Wrap(m.Public))
	g.GET("/shared/:code", context.Wrap(m.Shared))

	a := g.Group("", authorize)
	a.POST("", context.Wrap(m.Create))
	a.GET("/feed", context.Wrap(m.Feed))
	a.POST("/sync", context.Wrap(m.Sync))
	a.GET("/:id", context.Wrap(m.Get))
	a.PUT("/:id", context.Wrap(m.Update))
	a.DELETE("/:id", context.Wrap(m.Delete))
	a.POST("/:id/like", context.Wrap(m.Like))
	a.POST("/:id/bookmark", context.Wrap(m.Bookmark))
	a.POST("/:id/share", context.Wrap(m.Share))
	a.POST("/:id/view", context.Wrap(m.View))
}

// Create log_entry 为 true 时同时记一条手动营养记录
func (m *Meal) Create(c *gin.Context) error {
	var req types.NewMeal
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	meal := m.Meals.AddMeal(c.Request.Context(), req)
	if req.LogEntry {
		mealType := req.MealType
		if mealType == "" {
			mealType = types.MealSnack
		}
		m.Calorie.AddEntry(types.NewEntry{
			Name:     req.Description,
			Calories: req.Calories,
			Protein:  req.Protein,
			Carbs:    req.Carbs,
			Fat:      req.Fat,
			MealType: mealType,
			Source:   types.SourceManual,
		})
	}
	response.Success(c, meal)
	return nil
}

func (m *Meal) Get(c *gin.Context) error {
	meal, err := m.owned(c.Param("id"), false)
	if err != nil {
		return err
	}
	response.Success(c, meal)
	return nil
}

func (m *Meal) Update(c *gin.Context) error {
	var patch types.MealPatch
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	id := c.Param("id")
	if _, err := m.owned(id, true); err != nil {
		return err
	}
	m.Meals.UpdateMeal(c.Request.Context(), id, patch)
	meal, _ := m.Meals.GetMeal(id)
	response.Success(c, meal)
	return nil
}

// Delete 不存在的 id 直接成功
func (m *Meal) Delete(c *gin.Context) error {
	id := c.Param("id")
	meal, ok := m.Meals.GetMeal(id)
	if ok && meal.UserID != m.Session.UserID() {
		return errs.Auth("you can only delete your own meals", nil)
	}
	m.Meals.DeleteMeal(c.Request.Context(), id)
	response.Success(c, nil)
	return nil
}

func (m *Meal) Public(c *gin.Context) error {
	response.Success(c, m.Meals.GetPublicMeals())
	return nil
}

func (m *Meal) Feed(c *gin.Context) error {
	limit, err := queryInt(c, "limit", types.DefaultPageSize)
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return err
	}
	meals, err := m.Meals.Feed(c.Request.Context(), limit, offset)
	if err != nil {
		return err
	}
	response.Success(c, meals)
	return nil
}

func (m *Meal) Sync(c *gin.Context) error {
	if err := m.Meals.SyncFromRemote(c.Request.Context()); err != nil {
		return err
	}
	response.Success(c, nil)
	return nil
}

func (m *Meal) Like(c *gin.Context) error {
	meal, ok := m.Meals.ToggleLike(c.Request.Context(), c.Param("id"))
	if !ok {
		return errs.NotFound("meal %s not found", c.Param("id"))
	}
	response.Success(c, meal)
	return nil
}

func (m *Meal) Bookmark(c *gin.Context) error {
	meal, ok := m.Meals.ToggleBookmark(c.Request.Context(), c.Param("id"))
	if !ok {
		return errs.NotFound("meal %s not found", c.Param("id"))
	}
	response.Success(c, meal)
	return nil
}

func (m *Meal) Share(c *gin.Context) error {
	res, err := m.Meals.ShareMeal(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	response.Success(c, res)
	return nil
}

func (m *Meal) Shared(c *gin.Context) error {
	meal, err := m.Meals.MealByShareCode(c.Param("code"))
	if err != nil {
		return err
	}
	response.Success(c, meal)
	return nil
}

func (m *Meal) View(c *gin.Context) error {
	meal, ok := m.Meals.ViewMeal(c.Request.Context(), c.Param("id"))
	if !ok {
		return errs.NotFound("meal %s not found", c.Param("id"))
	}
	response.Success(c, meal)
	return nil
}

// owned mustOwn 为 false 时只校验可见性
func (m *Meal) owned(id string, mustOwn bool) (types.Meal, error) {
	meal, ok := m.Meals.GetMeal(id)
	if !ok {
		return meal, errs.NotFound("meal %s not found", id)
	}
	uid := m.Session.UserID()
	if mustOwn && meal.UserID != uid {
		return meal, errs.Auth("you can only edit your own meals", nil)
	}
	if !meal.CanView(uid, false) {
		return meal, errs.NotFound("meal %s not found", id)
	}
	return meal, nil
}
