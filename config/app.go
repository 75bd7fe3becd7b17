package config

type App struct {
	Env       string `json:"env" yaml:"env"`
	Debug     bool   `json:"debug" yaml:"debug"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
	ShareSalt string `json:"share_salt" yaml:"share_salt"` // 分享码 hashids 盐
}

type Cron struct {
	Rollover string `json:"rollover" yaml:"rollover"`
}
