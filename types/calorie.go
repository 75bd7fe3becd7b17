package types

import "time"

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

type EntrySource string

const (
	SourceManual     EntrySource = "manual"
	SourceAIAnalysis EntrySource = "ai_analysis"
)

// Macros 热量与三大营养素
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

func (m Macros) Div(n float64) Macros {
	if n == 0 {
		return Macros{}
	}
	return Macros{
		Calories: m.Calories / n,
		Protein:  m.Protein / n,
		Carbs:    m.Carbs / n,
		Fat:      m.Fat / n,
	}
}

// CalorieEntry 一次营养摄入记录，创建后日期不可修改
type CalorieEntry struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Date       time.Time   `json:"date"`
	Calories   float64     `json:"calories"`
	Protein    float64     `json:"protein"`
	Carbs      float64     `json:"carbs"`
	Fat        float64     `json:"fat"`
	MealType   MealType    `json:"meal_type"`
	Source     EntrySource `json:"source"`
	Confidence *float64    `json:"confidence,omitempty"`
	Name       string      `json:"name,omitempty"`
}

func (e CalorieEntry) Macros() Macros {
	return Macros{Calories: e.Calories, Protein: e.Protein, Carbs: e.Carbs, Fat: e.Fat}
}

// NewEntry 新增记录的参数
type NewEntry struct {
	Name       string      `json:"name" validate:"max=100"`
	Calories   float64     `json:"calories" validate:"gte=0,lte=20000"`
	Protein    float64     `json:"protein" validate:"gte=0,lte=2000"`
	Carbs      float64     `json:"carbs" validate:"gte=0,lte=2000"`
	Fat        float64     `json:"fat" validate:"gte=0,lte=2000"`
	MealType   MealType    `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	Source     EntrySource `json:"source" validate:"omitempty,oneof=manual ai_analysis"`
	Confidence *float64    `json:"confidence" validate:"required_if=Source ai_analysis,omitempty,gte=0,lte=1"`
}

// EntryPatch 记录的局部修改，日期与归属不可改
type EntryPatch struct {
	Name     *string   `json:"name" validate:"omitempty,max=100"`
	Calories *float64  `json:"calories" validate:"omitempty,gte=0,lte=20000"`
	Protein  *float64  `json:"protein" validate:"omitempty,gte=0,lte=2000"`
	Carbs    *float64  `json:"carbs" validate:"omitempty,gte=0,lte=2000"`
	Fat      *float64  `json:"fat" validate:"omitempty,gte=0,lte=2000"`
	MealType *MealType `json:"meal_type" validate:"omitempty,oneof=breakfast lunch dinner snack"`
}

func (p EntryPatch) Apply(e CalorieEntry) CalorieEntry {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Calories != nil {
		e.Calories = *p.Calories
	}
	if p.Protein != nil {
		e.Protein = *p.Protein
	}
	if p.Carbs != nil {
		e.Carbs = *p.Carbs
	}
	if p.Fat != nil {
		e.Fat = *p.Fat
	}
	if p.MealType != nil {
		e.MealType = *p.MealType
	}
	return e
}

// Progress 各项目标完成百分比
type Progress struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// DailyStats 今日汇总
type DailyStats struct {
	Date     string   `json:"date"`
	Totals   Macros   `json:"totals"`
	Goals    Goals    `json:"goals"`
	Progress Progress `json:"progress"`
	Streak   int      `json:"streak"`
}

// WeightEntry 体重记录
type WeightEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	WeightKg   float64   `json:"weight_kg"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

type NewWeightEntry struct {
	WeightKg float64 `json:"weight_kg" validate:"required,gte=20,lte=500"`
	Note     string  `json:"note" validate:"max=200"`
}
