package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config 配置信息
type Config struct {
	App      *App       `json:"app" yaml:"app"`
	Server   *Server    `json:"server" yaml:"server"`
	Local    *Local     `json:"local" yaml:"local"`
	Backend  *Backend   `json:"backend" yaml:"backend"`
	Supabase *Supabase  `json:"supabase" yaml:"supabase"`
	Redis    *Redis     `json:"redis" yaml:"redis"`
	MySQL    *MySQL     `json:"mysql" yaml:"mysql"`
	Jwt      *Jwt       `json:"jwt" yaml:"jwt"`
	Oss      *OssConfig `json:"oss" yaml:"oss"`
	LLM      *LLMConfig `json:"llm" yaml:"llm"`
	Cron     *Cron      `json:"cron" yaml:"cron"`
}

type Server struct {
	Http        int `json:"http" yaml:"http"`
	TimeoutSecs int `json:"timeout_secs" yaml:"timeout_secs"`
}

func New(filename string) *Config {
	content, err := os.ReadFile(filename)
	if err != nil {
		panic(err)
	}

	conf, err := Parse(content)
	if err != nil {
		panic(fmt.Sprintf("解析 %s 读取错误: %v", filename, err))
	}
	return conf
}

// Parse 解析配置内容并补齐默认值，环境变量优先于文件
func Parse(content []byte) (*Config, error) {
	var conf Config
	if err := yaml.Unmarshal(content, &conf); err != nil {
		return nil, err
	}
	conf.defaults()
	conf.applyEnv()
	return &conf, nil
}

func (c *Config) defaults() {
	if c.App == nil {
		c.App = &App{}
	}
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.ShareSalt == "" {
		c.App.ShareSalt = "calofeed"
	}
	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.Http == 0 {
		c.Server.Http = 8090
	}
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = 15
	}
	if c.Local == nil {
		c.Local = &Local{}
	}
	if c.Local.Driver == "" {
		c.Local.Driver = LocalFile
	}
	if c.Local.Namespace == "" {
		c.Local.Namespace = "calofeed"
	}
	if c.Local.Dir == "" {
		c.Local.Dir = "data"
	}
	if c.Backend == nil {
		c.Backend = &Backend{}
	}
	if c.Backend.Driver == "" {
		c.Backend.Driver = BackendMemory
	}
	if c.Supabase == nil {
		c.Supabase = &Supabase{}
	}
	if c.Redis == nil {
		c.Redis = &Redis{}
	}
	if c.MySQL == nil {
		c.MySQL = &MySQL{}
	}
	if c.Jwt == nil {
		c.Jwt = &Jwt{}
	}
	if c.Jwt.ExpiresSecs == 0 {
		c.Jwt.ExpiresSecs = 3600
	}
	if c.Oss == nil {
		c.Oss = &OssConfig{}
	}
	if c.LLM == nil {
		c.LLM = &LLMConfig{}
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "qwen3-vl-plus"
	}
	if c.Cron == nil {
		c.Cron = &Cron{}
	}
	if c.Cron.Rollover == "" {
		c.Cron.Rollover = "@daily"
	}
}

func (c *Config) applyEnv() {
	setString(&c.Supabase.URL, "SUPABASE_URL")
	setString(&c.Supabase.AnonKey, "SUPABASE_ANON_KEY")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.Oss.AccessKeyID, "OSS_AK")
	setString(&c.Oss.AccessKeySecret, "OSS_SK")
	setString(&c.Jwt.Secret, "JWT_SECRET")
	setString(&c.MySQL.Password, "MYSQL_PASSWORD")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Http = port
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Debug 调试模式
func (c *Config) Debug() bool {
	return c.App.Debug
}
