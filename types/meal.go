package types

import "time"

// Visibility 餐食可见范围
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
	VisibilityPrivate Visibility = "private"
)

// Pagination
const (
	DefaultPageSize int = 20
	MaxPageSize     int = 100
)

// Owner 发帖时冻结的作者快照，不随资料变化
type Owner struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// Meal 一条餐食动态
type Meal struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	User         Owner      `json:"user"`
	Image        string     `json:"image"`
	ImageKey     string     `json:"image_key,omitempty"`
	Description  string     `json:"description"`
	Calories     float64    `json:"calories"`
	Protein      float64    `json:"protein"`
	Carbs        float64    `json:"carbs"`
	Fat          float64    `json:"fat"`
	MealType     MealType   `json:"meal_type,omitempty"`
	Location     string     `json:"location,omitempty"`
	Tags         []string   `json:"tags"`
	Visibility   Visibility `json:"visibility"`
	Likes        int        `json:"likes"`
	Comments     int        `json:"comments"`
	Shares       int        `json:"shares"`
	Views        int        `json:"views"`
	IsLiked      bool       `json:"is_liked"`
	IsBookmarked bool       `json:"is_bookmarked"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewMeal 发布餐食的参数
type NewMeal struct {
	Image       string     `json:"image" validate:"required,max=1024"`
	ImageKey    string     `json:"image_key" validate:"max=512"`
	Description string     `json:"description" validate:"max=500"`
	Calories    float64    `json:"calories" validate:"gte=0,lte=20000"`
	Protein     float64    `json:"protein" validate:"gte=0,lte=2000"`
	Carbs       float64    `json:"carbs" validate:"gte=0,lte=2000"`
	Fat         float64    `json:"fat" validate:"gte=0,lte=2000"`
	MealType    MealType   `json:"meal_type" validate:"omitempty,oneof=breakfast lunch dinner snack"`
	Location    string     `json:"location" validate:"max=100"`
	Tags        []string   `json:"tags" validate:"max=10,dive,min=1,max=30"`
	Visibility  Visibility `json:"visibility" validate:"omitempty,oneof=public friends private"`
	LogEntry    bool       `json:"log_entry"` // 同时写入一条营养记录
}

// MealPatch 餐食局部修改
type MealPatch struct {
	Description *string     `json:"description" validate:"omitempty,max=500"`
	Location    *string     `json:"location" validate:"omitempty,max=100"`
	Tags        *[]string   `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
	Visibility  *Visibility `json:"visibility" validate:"omitempty,oneof=public friends private"`
	Calories    *float64    `json:"calories" validate:"omitempty,gte=0,lte=20000"`
	Protein     *float64    `json:"protein" validate:"omitempty,gte=0,lte=2000"`
	Carbs       *float64    `json:"carbs" validate:"omitempty,gte=0,lte=2000"`
	Fat         *float64    `json:"fat" validate:"omitempty,gte=0,lte=2000"`
}

func (p MealPatch) Apply(m Meal) Meal {
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Location != nil {
		m.Location = *p.Location
	}
	if p.Tags != nil {
		m.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Visibility != nil {
		m.Visibility = *p.Visibility
	}
	if p.Calories != nil {
		m.Calories = *p.Calories
	}
	if p.Protein != nil {
		m.Protein = *p.Protein
	}
	if p.Carbs != nil {
		m.Carbs = *p.Carbs
	}
	if p.Fat != nil {
		m.Fat = *p.Fat
	}
	return m
}

// CanView 可见性规则：公开所有人可见，好友仅作者与互相关注者可见，私密仅作者可见
func (m Meal) CanView(viewerID string, mutual bool) bool {
	if viewerID != "" && viewerID == m.UserID {
		return true
	}
	switch m.Visibility {
	case VisibilityPublic, "":
		return true
	case VisibilityFriends:
		return mutual
	default:
		return false
	}
}

// ShareResponse 分享结果
type ShareResponse struct {
	Code   string `json:"code"`
	Shares int    `json:"shares"`
}

type UploadImageResp struct {
	Url    string `json:"url"`
	Key    string `json:"key"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
