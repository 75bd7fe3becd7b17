package service

import (
	"context"
	"testing"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeight_AddListDelete(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ann@example.com", "ann")
	svc := &WeightService{Store: env.store, Session: env.session}

	_, err := svc.Add(types.NewWeightEntry{WeightKg: 5})
	require.ErrorIs(t, err, errs.ErrValidation)

	first, err := svc.Add(types.NewWeightEntry{WeightKg: 70.5})
	require.NoError(t, err)
	second, err := svc.Add(types.NewWeightEntry{WeightKg: 70.1, Note: "after run"})
	require.NoError(t, err)

	list := svc.List()
	require.Len(t, list, 2)
	ids := []string{list[0].ID, list[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	svc.Delete(first.ID)
	list = svc.List()
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestWeight_EntriesArePerUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "bob@example.com", "bob")
	svc := &WeightService{Store: env.store, Session: env.session}
	_, err := svc.Add(types.NewWeightEntry{WeightKg: 80})
	require.NoError(t, err)
	env.session.Logout(ctx)

	env.register(t, "ann@example.com", "ann")
	assert.Empty(t, svc.List())
}

func TestRollover_RunSyncsStreak(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ann@example.com", "ann")
	calorie := NewCalorieService(env.store, env.session)
	challenges := &ChallengeService{Remote: env.backend, Session: env.session}
	_, err := challenges.Join(ctx, "c-streak-30")
	require.NoError(t, err)
	calorie.AddEntry(types.NewEntry{Calories: 300, MealType: types.MealLunch})

	job := &RolloverJob{Calorie: calorie, Challenges: challenges, Spec: "@daily"}
	job.Run()

	rows, err := challenges.Leaderboard(ctx, "c-streak-30", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0].Progress)
	assert.Equal(t, 300.0, env.session.CurrentUser().Consumed.Calories)

	require.NoError(t, job.Start())
	job.Stop()
	job.Stop()
}
