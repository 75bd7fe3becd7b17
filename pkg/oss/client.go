package oss

import (
	"errors"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"github.com/petroshong/calofeed-sub001/config"
)

// GetOssClient 配置里有 ak/sk 时用静态凭证，否则读环境变量
func GetOssClient(conf *config.OssConfig) (*oss.Client, error) {
	if conf == nil || conf.Bucket == "" {
		return nil, errors.New("oss bucket is not configured")
	}
	var provider credentials.CredentialsProvider
	if conf.AccessKeyID != "" {
		provider = credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret)
	} else {
		provider = credentials.NewEnvironmentVariableCredentialsProvider()
	}
	cfg := oss.LoadDefaultConfig().WithCredentialsProvider(provider).
		WithEndpoint(conf.Endpoint).WithRegion(conf.Region)
	return oss.NewClient(cfg), nil
}
