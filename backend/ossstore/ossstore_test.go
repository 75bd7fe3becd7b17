package ossstore

import (
	"testing"

	"github.com/petroshong/calofeed-sub001/config"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(&config.OssConfig{Endpoint: "oss-cn-hangzhou.aliyuncs.com"})
	require.Error(t, err)
}

func TestURL(t *testing.T) {
	s, err := New(&config.OssConfig{
		Endpoint:        "oss-cn-hangzhou.aliyuncs.com",
		Region:          "cn-hangzhou",
		Bucket:          "calofeed",
		AccessKeyID:     "ak",
		AccessKeySecret: "sk",
	})
	require.NoError(t, err)
	require.Equal(t, "https://calofeed.oss-cn-hangzhou.aliyuncs.com/meals/u1/a.jpg", s.URL("/meals/u1/a.jpg"))

	s.Domain = "https://cdn.example.com"
	require.Equal(t, "https://cdn.example.com/meals/u1/a.jpg", s.URL("meals/u1/a.jpg"))
}
