package server

import (
	"github.com/petroshong/calofeed-sub001/handler"
)

type Handlers struct {
	Auth         *handler.Auth
	User         *handler.User
	Entry        *handler.Entry
	Meal         *handler.Meal
	Upload       *handler.Upload
	Comments     *handler.Comments
	Follow       *handler.Follow
	Challenge    *handler.Challenge
	Notification *handler.Notification
	Weight       *handler.Weight
}
