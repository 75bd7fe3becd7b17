package service

import (
	"context"
	"time"

	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RolloverJob 每天本地零点把汇总写回资料并同步挑战进度
type RolloverJob struct {
	Calorie    ICalorieService
	Challenges IChallengeService
	Spec       string

	cron *cron.Cron
}

func NewRolloverJob(conf *config.Config, calorie ICalorieService, challenges IChallengeService) *RolloverJob {
	return &RolloverJob{Calorie: calorie, Challenges: challenges, Spec: conf.Cron.Rollover}
}

func (j *RolloverJob) Start() error {
	c := cron.New(cron.WithLocation(time.Local))
	if _, err := c.AddFunc(j.Spec, j.Run); err != nil {
		return err
	}
	j.cron = c
	c.Start()
	log.L.Info("rollover job scheduled", zap.String("spec", j.Spec))
	return nil
}

func (j *RolloverJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := j.Calorie.Recompute(ctx); err != nil {
		log.L.Warn("recompute daily totals failed", zap.Error(err))
	}
	if err := j.Challenges.SyncStreak(ctx, j.Calorie.Streak()); err != nil {
		log.L.Warn("sync challenge streak failed", zap.Error(err))
	}
}

// Stop 等待正在执行的任务结束
func (j *RolloverJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}
