package dao

import (
	"context"
	"errors"

	"github.com/petroshong/calofeed-sub001/models"
	"gorm.io/gorm"
)

type ChallengeDAO struct {
	Repo[models.Challenge]
}

func NewChallengeDAO(db *gorm.DB) *ChallengeDAO {
	return &ChallengeDAO{Repo: NewRepo[models.Challenge](db)}
}

func (d *ChallengeDAO) List(ctx context.Context) ([]*models.Challenge, error) {
	var items []*models.Challenge
	err := d.Db.WithContext(ctx).Order("start_date DESC").Find(&items).Error
	return items, err
}

type ParticipantDAO struct {
	Repo[models.ChallengeParticipant]
}

func NewParticipantDAO(db *gorm.DB) *ParticipantDAO {
	return &ParticipantDAO{Repo: NewRepo[models.ChallengeParticipant](db)}
}

func (d *ParticipantDAO) JoinedBy(ctx context.Context, userID string) ([]*models.ChallengeParticipant, error) {
	return d.FindAll(ctx, "user_id = ?", userID)
}

// Join 参与人数与参与记录同一事务写入，已参与返回 false
func (d *ParticipantDAO) Join(ctx context.Context, p *models.ChallengeParticipant) (bool, error) {
	joined := false
	err := d.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ChallengeParticipant
		err := tx.Where("challenge_id = ? AND user_id = ?", p.ChallengeID, p.UserID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		joined = true
		return tx.Model(&models.Challenge{}).Where("id = ?", p.ChallengeID).
			Update("participants_count", gorm.Expr("participants_count + 1")).Error
	})
	return joined, err
}

func (d *ParticipantDAO) Leave(ctx context.Context, challengeID, userID string) (bool, error) {
	left := false
	err := d.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("challenge_id = ? AND user_id = ?", challengeID, userID).Delete(&models.ChallengeParticipant{})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		left = true
		return tx.Model(&models.Challenge{}).Where("id = ? AND participants_count > 0", challengeID).
			Update("participants_count", gorm.Expr("participants_count - 1")).Error
	})
	return left, err
}

func (d *ParticipantDAO) UpdateProgress(ctx context.Context, challengeID, userID string, progress float64) (int64, error) {
	return d.UpdateWhere(ctx, map[string]any{"progress": progress}, "challenge_id = ? AND user_id = ?", challengeID, userID)
}

// Leaderboard 按进度倒序，同进度按用户ID
func (d *ParticipantDAO) Leaderboard(ctx context.Context, challengeID string, limit int) ([]models.LeaderboardRow, error) {
	var rows []models.LeaderboardRow
	query := d.Db.WithContext(ctx).
		Table("challenge_participants cp").
		Select("cp.user_id, cp.progress, p.username, p.display_name, p.avatar_url").
		Joins("LEFT JOIN profiles p ON p.id = cp.user_id").
		Where("cp.challenge_id = ?", challengeID).
		Order("cp.progress DESC, cp.user_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(&rows).Error
	return rows, err
}
