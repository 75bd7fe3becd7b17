package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	conf, err := Parse([]byte("app:\n  debug: true\n"))
	require.NoError(t, err)

	require.True(t, conf.Debug())
	require.Equal(t, 8090, conf.Server.Http)
	require.Equal(t, LocalFile, conf.Local.Driver)
	require.Equal(t, BackendMemory, conf.Backend.Driver)
	require.Equal(t, "@daily", conf.Cron.Rollover)
}

func TestParse_EnvOverridesFile(t *testing.T) {
	t.Setenv("SUPABASE_ANON_KEY", "from-env")
	t.Setenv("HTTP_PORT", "9999")

	conf, err := Parse([]byte("supabase:\n  url: https://x.supabase.co\n  anon_key: from-file\n"))
	require.NoError(t, err)

	require.Equal(t, "from-env", conf.Supabase.AnonKey)
	require.Equal(t, "https://x.supabase.co", conf.Supabase.URL)
	require.Equal(t, 9999, conf.Server.Http)
}

func TestMySQL_Dsn(t *testing.T) {
	m := &MySQL{Host: "127.0.0.1", Port: 3306, Username: "root", Password: "pw", Database: "calofeed"}
	require.Equal(t, "root:pw@tcp(127.0.0.1:3306)/calofeed?charset=utf8mb4&parseTime=True&loc=Local", m.Dsn())
}
