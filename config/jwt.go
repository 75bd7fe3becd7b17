package config

// Jwt 内存后端签发令牌用
type Jwt struct {
	Secret      string `json:"secret" yaml:"secret"`
	ExpiresSecs int64  `json:"expires_secs" yaml:"expires_secs"`
}
