package supabase

import (
	"time"

	"github.com/petroshong/calofeed-sub001/types"
)

// 托管后端表名
const (
	tableProfiles     = "profiles"
	tableMeals        = "meals"
	tableLikes        = "likes"
	tableBookmarks    = "bookmarks"
	tableFollows      = "follows"
	tableComments     = "comments"
	tableNotification = "notifications"
	tableChallenges   = "challenges"
	tableParticipants = "challenge_participants"
)

type profileRow struct {
	ID               string        `json:"id"`
	Email            string        `json:"email"`
	Username         string        `json:"username"`
	DisplayName      string        `json:"display_name"`
	AvatarURL        string        `json:"avatar_url"`
	Bio              string        `json:"bio"`
	DailyCalorieGoal int           `json:"daily_calorie_goal"`
	DailyProteinGoal int           `json:"daily_protein_goal"`
	DailyCarbsGoal   int           `json:"daily_carbs_goal"`
	DailyFatGoal     int           `json:"daily_fat_goal"`
	CaloriesToday    float64       `json:"calories_consumed"`
	ProteinToday     float64       `json:"protein_consumed"`
	CarbsToday       float64       `json:"carbs_consumed"`
	FatToday         float64       `json:"fat_consumed"`
	Streak           int           `json:"streak"`
	FollowersCount   int           `json:"followers_count"`
	FollowingCount   int           `json:"following_count"`
	Badges           []types.Badge `json:"badges"`
	IsVerified       bool          `json:"is_verified"`
	IsPremium        bool          `json:"is_premium"`
	IsInfluencer     bool          `json:"is_influencer"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (r profileRow) user() *types.User {
	badges := r.Badges
	if badges == nil {
		badges = []types.Badge{}
	}
	return &types.User{
		ID:          r.ID,
		Email:       r.Email,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		Avatar:      r.AvatarURL,
		Bio:         r.Bio,
		Goals: types.Goals{
			Calories: r.DailyCalorieGoal,
			Protein:  r.DailyProteinGoal,
			Carbs:    r.DailyCarbsGoal,
			Fat:      r.DailyFatGoal,
		},
		Consumed: types.Macros{
			Calories: r.CaloriesToday,
			Protein:  r.ProteinToday,
			Carbs:    r.CarbsToday,
			Fat:      r.FatToday,
		},
		Streak:       r.Streak,
		Followers:    r.FollowersCount,
		Following:    r.FollowingCount,
		Badges:       badges,
		IsVerified:   r.IsVerified,
		IsPremium:    r.IsPremium,
		IsInfluencer: r.IsInfluencer,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func newProfileRow(u types.User) profileRow {
	return profileRow{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		DisplayName:      u.DisplayName,
		AvatarURL:        u.Avatar,
		Bio:              u.Bio,
		DailyCalorieGoal: u.Goals.Calories,
		DailyProteinGoal: u.Goals.Protein,
		DailyCarbsGoal:   u.Goals.Carbs,
		DailyFatGoal:     u.Goals.Fat,
		Badges:           u.Badges,
	}
}

// profileColumns 补丁转成列更新
func profileColumns(p types.UserPatch) map[string]any {
	cols := make(map[string]any)
	if p.Username != nil {
		cols["username"] = *p.Username
	}
	if p.DisplayName != nil {
		cols["display_name"] = *p.DisplayName
	}
	if p.Avatar != nil {
		cols["avatar_url"] = *p.Avatar
	}
	if p.Bio != nil {
		cols["bio"] = *p.Bio
	}
	if p.CalorieGoal != nil {
		cols["daily_calorie_goal"] = *p.CalorieGoal
	}
	if p.ProteinGoal != nil {
		cols["daily_protein_goal"] = *p.ProteinGoal
	}
	if p.CarbsGoal != nil {
		cols["daily_carbs_goal"] = *p.CarbsGoal
	}
	if p.FatGoal != nil {
		cols["daily_fat_goal"] = *p.FatGoal
	}
	if p.Consumed != nil {
		cols["calories_consumed"] = p.Consumed.Calories
		cols["protein_consumed"] = p.Consumed.Protein
		cols["carbs_consumed"] = p.Consumed.Carbs
		cols["fat_consumed"] = p.Consumed.Fat
	}
	if p.Streak != nil {
		cols["streak"] = *p.Streak
	}
	return cols
}

type mealRow struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	OwnerUsername    string           `json:"owner_username"`
	OwnerDisplayName string           `json:"owner_display_name"`
	OwnerAvatar      string           `json:"owner_avatar"`
	ImageURL         string           `json:"image_url"`
	ImageKey         string           `json:"image_key"`
	Description      string           `json:"description"`
	Calories         float64          `json:"calories"`
	Protein          float64          `json:"protein"`
	Carbs            float64          `json:"carbs"`
	Fat              float64          `json:"fat"`
	MealType         types.MealType   `json:"meal_type"`
	Location         string           `json:"location"`
	Tags             []string         `json:"tags"`
	Visibility       types.Visibility `json:"visibility"`
	LikesCount       int              `json:"likes_count"`
	CommentsCount    int              `json:"comments_count"`
	SharesCount      int              `json:"shares_count"`
	ViewsCount       int              `json:"views_count"`
	CreatedAt        time.Time        `json:"created_at"`
}

func newMealRow(m types.Meal) mealRow {
	return mealRow{
		ID:               m.ID,
		UserID:           m.UserID,
		OwnerUsername:    m.User.Username,
		OwnerDisplayName: m.User.DisplayName,
		OwnerAvatar:      m.User.Avatar,
		ImageURL:         m.Image,
		ImageKey:         m.ImageKey,
		Description:      m.Description,
		Calories:         m.Calories,
		Protein:          m.Protein,
		Carbs:            m.Carbs,
		Fat:              m.Fat,
		MealType:         m.MealType,
		Location:         m.Location,
		Tags:             m.Tags,
		Visibility:       m.Visibility,
		LikesCount:       m.Likes,
		CommentsCount:    m.Comments,
		SharesCount:      m.Shares,
		ViewsCount:       m.Views,
		CreatedAt:        m.CreatedAt,
	}
}

func (r mealRow) meal() types.Meal {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return types.Meal{
		ID:     r.ID,
		UserID: r.UserID,
		User: types.Owner{
			Username:    r.OwnerUsername,
			DisplayName: r.OwnerDisplayName,
			Avatar:      r.OwnerAvatar,
		},
		Image:       r.ImageURL,
		ImageKey:    r.ImageKey,
		Description: r.Description,
		Calories:    r.Calories,
		Protein:     r.Protein,
		Carbs:       r.Carbs,
		Fat:         r.Fat,
		MealType:    r.MealType,
		Location:    r.Location,
		Tags:        tags,
		Visibility:  r.Visibility,
		Likes:       r.LikesCount,
		Comments:    r.CommentsCount,
		Shares:      r.SharesCount,
		Views:       r.ViewsCount,
		CreatedAt:   r.CreatedAt,
	}
}

func mealColumns(p types.MealPatch) map[string]any {
	cols := make(map[string]any)
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Location != nil {
		cols["location"] = *p.Location
	}
	if p.Tags != nil {
		cols["tags"] = *p.Tags
	}
	if p.Visibility != nil {
		cols["visibility"] = *p.Visibility
	}
	if p.Calories != nil {
		cols["calories"] = *p.Calories
	}
	if p.Protein != nil {
		cols["protein"] = *p.Protein
	}
	if p.Carbs != nil {
		cols["carbs"] = *p.Carbs
	}
	if p.Fat != nil {
		cols["fat"] = *p.Fat
	}
	return cols
}

type commentRow struct {
	ID               string    `json:"id"`
	MealID           string    `json:"meal_id"`
	UserID           string    `json:"user_id"`
	OwnerUsername    string    `json:"owner_username"`
	OwnerDisplayName string    `json:"owner_display_name"`
	OwnerAvatar      string    `json:"owner_avatar"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"created_at"`
}

func newCommentRow(c types.Comment) commentRow {
	return commentRow{
		ID:               c.ID,
		MealID:           c.MealID,
		UserID:           c.UserID,
		OwnerUsername:    c.User.Username,
		OwnerDisplayName: c.User.DisplayName,
		OwnerAvatar:      c.User.Avatar,
		Content:          c.Content,
		CreatedAt:        c.CreatedAt,
	}
}

func (r commentRow) comment() types.Comment {
	return types.Comment{
		ID:     r.ID,
		MealID: r.MealID,
		UserID: r.UserID,
		User: types.Owner{
			Username:    r.OwnerUsername,
			DisplayName: r.OwnerDisplayName,
			Avatar:      r.OwnerAvatar,
		},
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

type followRow struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type reactionRow struct {
	UserID string `json:"user_id"`
	MealID string `json:"meal_id"`
}

type challengeRow struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Type         types.ChallengeType `json:"type"`
	Target       float64             `json:"target"`
	Participants int                 `json:"participants_count"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      time.Time           `json:"end_date"`
	Reward       string              `json:"reward"`
	Category     string              `json:"category"`
	Difficulty   string              `json:"difficulty"`
	Rules        []string            `json:"rules"`
	Prize        string              `json:"prize"`
}

func (r challengeRow) challenge() types.Challenge {
	return types.Challenge{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Type:         r.Type,
		Target:       r.Target,
		Participants: r.Participants,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Reward:       r.Reward,
		Category:     r.Category,
		Difficulty:   r.Difficulty,
		Rules:        r.Rules,
		Prize:        r.Prize,
	}
}

type participantRow struct {
	ChallengeID string  `json:"challenge_id"`
	UserID      string  `json:"user_id"`
	Progress    float64 `json:"progress"`
}
