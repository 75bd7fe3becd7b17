package service

import (
	"github.com/google/wire"
	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/localstore"
)

var ProviderSet = wire.NewSet(
	NewSessionService,
	wire.Bind(new(ISessionService), new(*SessionService)),

	NewCalorieService,
	wire.Bind(new(ICalorieService), new(*CalorieService)),

	ProvideMealService,
	wire.Bind(new(IMealService), new(*MealService)),

	wire.Struct(new(FollowService), "*"),
	wire.Bind(new(IFollowService), new(*FollowService)),

	wire.Struct(new(CommentService), "*"),
	wire.Bind(new(ICommentService), new(*CommentService)),

	wire.Struct(new(ChallengeService), "*"),
	wire.Bind(new(IChallengeService), new(*ChallengeService)),

	NewNotificationFeed,
	wire.Bind(new(INotificationFeed), new(*NotificationFeed)),

	wire.Struct(new(UploadService), "*"),
	wire.Bind(new(IUploadService), new(*UploadService)),

	wire.Struct(new(RecognitionService), "*"),
	wire.Bind(new(IRecognitionService), new(*RecognitionService)),

	wire.Struct(new(WeightService), "*"),
	wire.Bind(new(IWeightService), new(*WeightService)),

	NewRolloverJob,
)

func ProvideMealService(conf *config.Config, store localstore.Store, session ISessionService, remote backend.Store) *MealService {
	return NewMealService(store, session, remote, conf.App.ShareSalt)
}
