package dao

import (
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewMealDAO,
	NewMealLikeDAO,
	NewMealBookmarkDAO,
	NewUserFollowDAO,
	NewComment,
	NewNotificationDAO,
	NewChallengeDAO,
	NewParticipantDAO,
	NewProfileDAO,
)
