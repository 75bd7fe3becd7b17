package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
)

func (b *Backend) ListChallenges(ctx context.Context, userID string) ([]types.Challenge, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]types.Challenge, 0, len(b.challenges))
	for _, c := range b.challenges {
		c.Rules = slices.Clone(c.Rules)
		members := b.participants[c.ID]
		c.Participants = len(members)
		if p, ok := members[userID]; ok && userID != "" {
			c.IsJoined = true
			c.Progress = types.Ptr(p)
		}
		out = append(out, c)
	}
	return out, nil
}

func (b *Backend) JoinChallenge(ctx context.Context, challengeID, userID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.challengeExists(challengeID) {
		return false, errs.NotFound("challenge %s not found", challengeID)
	}
	members := b.participants[challengeID]
	if members == nil {
		members = make(map[string]float64)
		b.participants[challengeID] = members
	}
	if _, ok := members[userID]; ok {
		return false, nil
	}
	members[userID] = 0
	return true, nil
}

func (b *Backend) LeaveChallenge(ctx context.Context, challengeID, userID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.challengeExists(challengeID) {
		return false, errs.NotFound("challenge %s not found", challengeID)
	}
	members := b.participants[challengeID]
	if _, ok := members[userID]; !ok {
		return false, nil
	}
	delete(members, userID)
	return true, nil
}

func (b *Backend) UpdateChallengeProgress(ctx context.Context, challengeID, userID string, progress float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	members := b.participants[challengeID]
	if _, ok := members[userID]; !ok {
		return errs.Validation("challenge not joined", nil)
	}
	members[userID] = progress
	return nil
}

func (b *Backend) Leaderboard(ctx context.Context, challengeID string, limit int) ([]types.LeaderboardEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.challengeExists(challengeID) {
		return nil, errs.NotFound("challenge %s not found", challengeID)
	}
	out := make([]types.LeaderboardEntry, 0)
	for uid, p := range b.participants[challengeID] {
		e := types.LeaderboardEntry{UserID: uid, Progress: p}
		if u, ok := b.profiles[uid]; ok {
			e.Owner = u.Snapshot()
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Progress == out[j].Progress {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Progress > out[j].Progress
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (b *Backend) challengeExists(id string) bool {
	return slices.ContainsFunc(b.challenges, func(c types.Challenge) bool { return c.ID == id })
}
