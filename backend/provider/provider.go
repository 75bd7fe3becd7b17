// Package provider 按配置组装远端后端
package provider

import (
	"fmt"

	"github.com/google/wire"
	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/backend/memory"
	"github.com/petroshong/calofeed-sub001/backend/ossstore"
	"github.com/petroshong/calofeed-sub001/backend/sqlstore"
	"github.com/petroshong/calofeed-sub001/backend/supabase"
	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/database"
	"github.com/petroshong/calofeed-sub001/pkg/llm"
	"github.com/petroshong/calofeed-sub001/pkg/localstore"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(
	localstore.New,
	NewClient,
	wire.FieldsOf(new(*backend.Client), "Identity", "Store", "Storage", "Realtime", "Recognizer"),
)

// NewClient 选择只在启动时发生，运行期不再切换
func NewClient(conf *config.Config, local localstore.Store) (*backend.Client, func(), error) {
	var client *backend.Client
	switch conf.Backend.Driver {
	case config.BackendSupabase:
		b, err := supabase.New(conf.Supabase, local)
		if err != nil {
			return nil, nil, err
		}
		client = b.Client()
	case config.BackendMemory, "":
		client = memory.New(conf.Jwt).Client()
	default:
		return nil, nil, fmt.Errorf("unknown backend driver %q", conf.Backend.Driver)
	}

	cleanup := func() {}
	if conf.Backend.Store == config.StoreMySQL {
		db, err := database.NewDB(conf)
		if err != nil {
			return nil, nil, err
		}
		client.Store = sqlstore.New(db)
		cleanup = func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	}
	if conf.Backend.Storage == config.StorageOSS {
		st, err := ossstore.New(conf.Oss)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		client.Storage = st
	}
	client.Recognizer = llm.NewRecognizer(conf.LLM)

	log.L.Info("backend ready",
		zap.String("driver", conf.Backend.Driver),
		zap.String("store", conf.Backend.Store),
		zap.String("storage", conf.Backend.Storage),
	)
	return client, cleanup, nil
}
