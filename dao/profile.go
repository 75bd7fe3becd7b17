package dao

import (
	"context"

	"github.com/petroshong/calofeed-sub001/models"
	"gorm.io/gorm"
)

type ProfileDAO struct {
	Repo[models.Profile]
}

func NewProfileDAO(db *gorm.DB) *ProfileDAO {
	return &ProfileDAO{Repo: NewRepo[models.Profile](db)}
}

// Username 查不到时返回 id 本身
func (d *ProfileDAO) Username(ctx context.Context, id string) string {
	var names []string
	err := d.Db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Limit(1).Pluck("username", &names).Error
	if err != nil || len(names) == 0 || names[0] == "" {
		return id
	}
	return names[0]
}
