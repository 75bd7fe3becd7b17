package types

import "time"

type ChallengeType string

const (
	ChallengeStreak ChallengeType = "streak"
	ChallengeTotal  ChallengeType = "total"
	ChallengeDaily  ChallengeType = "daily"
)

// Challenge 限时挑战，参与人数与 IsJoined 同步变化
type Challenge struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Type         ChallengeType `json:"type"`
	Target       float64       `json:"target"`
	Participants int           `json:"participants"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      time.Time     `json:"end_date"`
	Progress     *float64      `json:"progress,omitempty"`
	IsJoined     bool          `json:"is_joined"`
	Reward       string        `json:"reward"`
	Category     string        `json:"category"`
	Difficulty   string        `json:"difficulty"`
	Rules        []string      `json:"rules"`
	Prize        string        `json:"prize,omitempty"`
}

// Active 挑战是否在进行中
func (c Challenge) Active(now time.Time) bool {
	return !now.Before(c.StartDate) && now.Before(c.EndDate)
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	UserID   string  `json:"user_id"`
	Owner    Owner   `json:"user"`
	Progress float64 `json:"progress"`
}
