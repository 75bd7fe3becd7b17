package memory

import (
	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/types"
)

func backendQuery(ids ...string) backend.MealQuery {
	return backend.MealQuery{IDs: ids}
}

func find(list []types.Challenge, id string) types.Challenge {
	for _, c := range list {
		if c.ID == id {
			return c
		}
	}
	return types.Challenge{}
}
