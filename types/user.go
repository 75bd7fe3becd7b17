package types

import "time"

// Badge 成就徽章，按获得顺序保存
type Badge struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Icon     string    `json:"icon"`
	EarnedAt time.Time `json:"earned_at"`
}

// Goals 每日营养目标
type Goals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// DefaultGoals 新用户的默认每日目标
func DefaultGoals() Goals {
	return Goals{Calories: 2000, Protein: 150, Carbs: 250, Fat: 65}
}

// User 用户资料与每日目标
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Avatar       string    `json:"avatar"`
	Bio          string    `json:"bio"`
	Goals        Goals     `json:"goals"`
	Consumed     Macros    `json:"consumed_today"` // 只由汇总重算写入
	Streak       int       `json:"streak"`
	Followers    int       `json:"followers"`
	Following    int       `json:"following"`
	Badges       []Badge   `json:"badges"`
	IsVerified   bool      `json:"is_verified"`
	IsPremium    bool      `json:"is_premium"`
	IsInfluencer bool      `json:"is_influencer"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot 生成发帖时冻结的作者信息
func (u *User) Snapshot() Owner {
	if u == nil {
		return Owner{}
	}
	return Owner{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
	}
}

// Clone 深拷贝，避免调用方修改会话内部状态
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Badges != nil {
		c.Badges = append([]Badge(nil), u.Badges...)
	}
	return &c
}

// UserPatch 资料局部更新，nil 字段不修改
type UserPatch struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,username"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=50"`
	Avatar      *string `json:"avatar,omitempty" validate:"omitempty,max=512"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=160"`

	CalorieGoal *int `json:"calorie_goal,omitempty" validate:"omitempty,gt=0,lte=20000"`
	ProteinGoal *int `json:"protein_goal,omitempty" validate:"omitempty,gt=0,lte=1000"`
	CarbsGoal   *int `json:"carbs_goal,omitempty" validate:"omitempty,gt=0,lte=2000"`
	FatGoal     *int `json:"fat_goal,omitempty" validate:"omitempty,gt=0,lte=1000"`

	// 以下字段只由汇总重算产生，不对外开放
	Consumed *Macros `json:"consumed_today,omitempty" validate:"-"`
	Streak   *int    `json:"streak,omitempty" validate:"-"`
}

// Empty 没有任何字段需要更新
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.DisplayName == nil && p.Avatar == nil && p.Bio == nil &&
		p.CalorieGoal == nil && p.ProteinGoal == nil && p.CarbsGoal == nil && p.FatGoal == nil &&
		p.Consumed == nil && p.Streak == nil
}

// Apply 返回合并后的新副本，原对象不变
func (p UserPatch) Apply(u User) User {
	out := *u.Clone()
	if p.Username != nil {
		out.Username = *p.Username
	}
	if p.DisplayName != nil {
		out.DisplayName = *p.DisplayName
	}
	if p.Avatar != nil {
		out.Avatar = *p.Avatar
	}
	if p.Bio != nil {
		out.Bio = *p.Bio
	}
	if p.CalorieGoal != nil {
		out.Goals.Calories = *p.CalorieGoal
	}
	if p.ProteinGoal != nil {
		out.Goals.Protein = *p.ProteinGoal
	}
	if p.CarbsGoal != nil {
		out.Goals.Carbs = *p.CarbsGoal
	}
	if p.FatGoal != nil {
		out.Goals.Fat = *p.FatGoal
	}
	if p.Consumed != nil {
		out.Consumed = *p.Consumed
	}
	if p.Streak != nil {
		out.Streak = *p.Streak
	}
	return out
}

// Inverse 生成能把 u 上被本次修改触及的字段恢复原值的补丁
func (p UserPatch) Inverse(u User) UserPatch {
	var inv UserPatch
	if p.Username != nil {
		inv.Username = Ptr(u.Username)
	}
	if p.DisplayName != nil {
		inv.DisplayName = Ptr(u.DisplayName)
	}
	if p.Avatar != nil {
		inv.Avatar = Ptr(u.Avatar)
	}
	if p.Bio != nil {
		inv.Bio = Ptr(u.Bio)
	}
	if p.CalorieGoal != nil {
		inv.CalorieGoal = Ptr(u.Goals.Calories)
	}
	if p.ProteinGoal != nil {
		inv.ProteinGoal = Ptr(u.Goals.Protein)
	}
	if p.CarbsGoal != nil {
		inv.CarbsGoal = Ptr(u.Goals.Carbs)
	}
	if p.FatGoal != nil {
		inv.FatGoal = Ptr(u.Goals.Fat)
	}
	if p.Consumed != nil {
		inv.Consumed = Ptr(u.Consumed)
	}
	if p.Streak != nil {
		inv.Streak = Ptr(u.Streak)
	}
	return inv
}

// UpdateProfileRequest 对外开放的资料修改参数
type UpdateProfileRequest struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	Avatar      *string `json:"avatar"`
	Bio         *string `json:"bio"`
	CalorieGoal *int    `json:"calorie_goal"`
	ProteinGoal *int    `json:"protein_goal"`
	CarbsGoal   *int    `json:"carbs_goal"`
	FatGoal     *int    `json:"fat_goal"`
}

func (r UpdateProfileRequest) Patch() UserPatch {
	return UserPatch{
		Username:    r.Username,
		DisplayName: r.DisplayName,
		Avatar:      r.Avatar,
		Bio:         r.Bio,
		CalorieGoal: r.CalorieGoal,
		ProteinGoal: r.ProteinGoal,
		CarbsGoal:   r.CarbsGoal,
		FatGoal:     r.FatGoal,
	}
}

func Ptr[T any](v T) *T {
	return &v
}
