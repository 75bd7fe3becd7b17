package supabase

import (
	"context"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
)

func (b *Backend) ListChallenges(ctx context.Context, userID string) ([]types.Challenge, error) {
	var rows []challengeRow
	if err := b.api.From(tableChallenges).Select("*").Order("start_date", false).Execute(ctx, &rows); err != nil {
		return nil, err
	}
	joined := map[string]float64{}
	if userID != "" {
		var parts []participantRow
		if err := b.api.From(tableParticipants).Select("*").Eq("user_id", userID).Execute(ctx, &parts); err != nil {
			return nil, err
		}
		for _, p := range parts {
			joined[p.ChallengeID] = p.Progress
		}
	}
	out := make([]types.Challenge, len(rows))
	for i, r := range rows {
		c := r.challenge()
		if p, ok := joined[c.ID]; ok {
			c.IsJoined = true
			c.Progress = types.Ptr(p)
		}
		out[i] = c
	}
	return out, nil
}

func (b *Backend) JoinChallenge(ctx context.Context, challengeID, userID string) (bool, error) {
	joined, err := b.isParticipant(ctx, challengeID, userID)
	if err != nil || joined {
		return false, err
	}
	err = b.api.From(tableParticipants).Insert(ctx, participantRow{ChallengeID: challengeID, UserID: userID}, nil)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *Backend) LeaveChallenge(ctx context.Context, challengeID, userID string) (bool, error) {
	var rows []participantRow
	err := b.api.From(tableParticipants).Eq("challenge_id", challengeID).Eq("user_id", userID).Delete(ctx, &rows)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (b *Backend) UpdateChallengeProgress(ctx context.Context, challengeID, userID string, progress float64) error {
	var rows []participantRow
	err := b.api.From(tableParticipants).Eq("challenge_id", challengeID).Eq("user_id", userID).
		Update(ctx, map[string]any{"progress": progress}, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errs.Validation("challenge not joined", nil)
	}
	return nil
}

func (b *Backend) Leaderboard(ctx context.Context, challengeID string, limit int) ([]types.LeaderboardEntry, error) {
	qb := b.api.From(tableParticipants).Select("*").Eq("challenge_id", challengeID).
		Order("progress", false).Order("user_id", true)
	if limit > 0 {
		qb.Limit(limit)
	}
	var parts []participantRow
	if err := qb.Execute(ctx, &parts); err != nil {
		return nil, err
	}
	out := make([]types.LeaderboardEntry, len(parts))
	if len(parts) == 0 {
		return out, nil
	}
	ids := make([]string, len(parts))
	for i, p := range parts {
		ids[i] = p.UserID
	}
	var profiles []profileRow
	err := b.api.From(tableProfiles).Select("id,username,display_name,avatar_url").In("id", ids).Execute(ctx, &profiles)
	if err != nil {
		return nil, err
	}
	owners := make(map[string]types.Owner, len(profiles))
	for _, p := range profiles {
		owners[p.ID] = p.user().Snapshot()
	}
	for i, p := range parts {
		out[i] = types.LeaderboardEntry{Rank: i + 1, UserID: p.UserID, Owner: owners[p.UserID], Progress: p.Progress}
	}
	return out, nil
}

func (b *Backend) isParticipant(ctx context.Context, challengeID, userID string) (bool, error) {
	var rows []participantRow
	err := b.api.From(tableParticipants).Select("challenge_id").
		Eq("challenge_id", challengeID).Eq("user_id", userID).Limit(1).Execute(ctx, &rows)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
