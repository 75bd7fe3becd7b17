package sqlstore

import (
	"github.com/petroshong/calofeed-sub001/models"
	"github.com/petroshong/calofeed-sub001/types"
)

func toMealModel(m types.Meal) *models.Meal {
	return &models.Meal{
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
		MealType:         string(m.MealType),
		Location:         m.Location,
		Tags:             m.Tags,
		Visibility:       string(m.Visibility),
		LikesCount:       m.Likes,
		CommentsCount:    m.Comments,
		SharesCount:      m.Shares,
		ViewsCount:       m.Views,
		CreatedAt:        m.CreatedAt,
	}
}

func fromMealModel(m *models.Meal) types.Meal {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return types.Meal{
		ID:     m.ID,
		UserID: m.UserID,
		User: types.Owner{
			Username:    m.OwnerUsername,
			DisplayName: m.OwnerDisplayName,
			Avatar:      m.OwnerAvatar,
		},
		Image:       m.ImageURL,
		ImageKey:    m.ImageKey,
		Description: m.Description,
		Calories:    m.Calories,
		Protein:     m.Protein,
		Carbs:       m.Carbs,
		Fat:         m.Fat,
		MealType:    types.MealType(m.MealType),
		Location:    m.Location,
		Tags:        tags,
		Visibility:  types.Visibility(m.Visibility),
		Likes:       m.LikesCount,
		Comments:    m.CommentsCount,
		Shares:      m.SharesCount,
		Views:       m.ViewsCount,
		CreatedAt:   m.CreatedAt,
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
		cols["tags"] = models.JSONTags(*p.Tags)
	}
	if p.Visibility != nil {
		cols["visibility"] = string(*p.Visibility)
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

func toCommentModel(c types.Comment) *models.Comment {
	return &models.Comment{
		ID:               c.ID,
		MealID:           c.MealID,
		UserID:           c.UserID,
		OwnerUsername:    c.User.Username,
		OwnerDisplayName: c.User.DisplayName,
		OwnerAvatar:      c.User.Avatar,
		Content:          c.Content,
		Status:           1,
		CreatedAt:        c.CreatedAt,
	}
}

func fromCommentModel(c *models.Comment) types.Comment {
	return types.Comment{
		ID:     c.ID,
		MealID: c.MealID,
		UserID: c.UserID,
		User: types.Owner{
			Username:    c.OwnerUsername,
			DisplayName: c.OwnerDisplayName,
			Avatar:      c.OwnerAvatar,
		},
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func toNotificationModel(n types.Notification) *models.Notification {
	return &models.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		ActorID:   n.ActorID,
		Kind:      string(n.Kind),
		MealID:    n.MealID,
		Message:   n.Message,
		IsRead:    n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func fromNotificationModel(n *models.Notification) types.Notification {
	return types.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		ActorID:   n.ActorID,
		Kind:      types.NotificationKind(n.Kind),
		MealID:    n.MealID,
		Message:   n.Message,
		Read:      n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func fromChallengeModel(c *models.Challenge) types.Challenge {
	rules := []string(c.Rules)
	if rules == nil {
		rules = []string{}
	}
	return types.Challenge{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Type:         types.ChallengeType(c.Type),
		Target:       c.Target,
		Participants: c.ParticipantsCount,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		Reward:       c.Reward,
		Category:     c.Category,
		Difficulty:   c.Difficulty,
		Rules:        rules,
		Prize:        c.Prize,
	}
}
