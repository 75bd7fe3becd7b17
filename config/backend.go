package config

const (
	BackendSupabase = "supabase"
	BackendMemory   = "memory"

	StoreMySQL  = "mysql"
	StorageOSS  = "oss"
	LocalFile   = "file"
	LocalRedis  = "redis"
	LocalMemory = "memory"
)

// Backend 远端服务选择，只在启动时生效
type Backend struct {
	Driver  string `json:"driver" yaml:"driver"`   // supabase | memory
	Store   string `json:"store" yaml:"store"`     // 为 mysql 时覆盖远端存储
	Storage string `json:"storage" yaml:"storage"` // 为 oss 时覆盖对象存储
}

// Supabase 托管后端
type Supabase struct {
	URL         string `json:"url" yaml:"url"`
	AnonKey     string `json:"anon_key" yaml:"anon_key"`
	Bucket      string `json:"bucket" yaml:"bucket"`
	TimeoutSecs int    `json:"timeout_secs" yaml:"timeout_secs"`
}

// Local 本地持久化
type Local struct {
	Driver     string `json:"driver" yaml:"driver"` // file | redis | memory
	Namespace  string `json:"namespace" yaml:"namespace"`
	Dir        string `json:"dir" yaml:"dir"`
	QuotaBytes int64  `json:"quota_bytes" yaml:"quota_bytes"`
}

// LLMConfig 食物识别模型
type LLMConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key" yaml:"api_key"`
	Model   string `json:"model" yaml:"model"`
}
