package database

import (
	"fmt"

	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 初始化数据库连接
func NewDB(conf *config.Config) (*gorm.DB, error) {
	gc := &gorm.Config{SkipDefaultTransaction: true}
	if !conf.Debug() {
		gc.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(mysql.Open(conf.MySQL.Dsn()), gc)
	if err != nil {
		log.L.Error("failed to connect database", zap.Error(err))
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	log.L.Info("connect database success", zap.String("database", conf.MySQL.Database))
	return db, nil
}
