package models

import (
	"time"

	"gorm.io/datatypes"
)

type Challenge struct {
	ID                string                      `gorm:"column:id;primaryKey;size:32" json:"id"`
	Title             string                      `gorm:"column:title" json:"title"`
	Description       string                      `gorm:"column:description;type:text" json:"description"`
	Type              string                      `gorm:"column:type;size:16" json:"type"` // streak/total/daily
	Target            float64                     `gorm:"column:target" json:"target"`
	ParticipantsCount int                         `gorm:"column:participants_count;default:0" json:"participants_count"`
	StartDate         time.Time                   `gorm:"column:start_date" json:"start_date"`
	EndDate           time.Time                   `gorm:"column:end_date" json:"end_date"`
	Reward            string                      `gorm:"column:reward" json:"reward"`
	Category          string                      `gorm:"column:category" json:"category"`
	Difficulty        string                      `gorm:"column:difficulty" json:"difficulty"`
	Rules             datatypes.JSONSlice[string] `gorm:"column:rules" json:"rules"`
	Prize             string                      `gorm:"column:prize" json:"prize"`
}

func (Challenge) TableName() string { return "challenges" }

// ChallengeParticipant 唯一键: challenge_id + user_id
type ChallengeParticipant struct {
	ID          uint64    `gorm:"column:id;primaryKey;AUTO_INCREMENT" json:"id"`
	ChallengeID string    `gorm:"column:challenge_id;not null;size:32;uniqueIndex:uk_challenge_user,priority:1" json:"challenge_id"`
	UserID      string    `gorm:"column:user_id;not null;size:64;uniqueIndex:uk_challenge_user,priority:2" json:"user_id"`
	Progress    float64   `gorm:"column:progress;default:0" json:"progress"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ChallengeParticipant) TableName() string { return "challenge_participants" }

// LeaderboardRow 参与者连表用户资料
type LeaderboardRow struct {
	UserID      string  `gorm:"column:user_id"`
	Progress    float64 `gorm:"column:progress"`
	Username    string  `gorm:"column:username"`
	DisplayName string  `gorm:"column:display_name"`
	AvatarURL   string  `gorm:"column:avatar_url"`
}
