// Package ossstore 阿里云 OSS 对象存储
package ossstore

import (
	"context"
	"io"
	"strings"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	osscli "github.com/petroshong/calofeed-sub001/pkg/oss"
)

var _ backend.ObjectStorage = (*Storage)(nil)

type Storage struct {
	Client     *oss.Client
	BucketName string
	Domain     string
}

func New(conf *config.OssConfig) (*Storage, error) {
	client, err := osscli.GetOssClient(conf)
	if err != nil {
		return nil, err
	}
	domain := conf.Domain
	if domain == "" {
		domain = "https://" + conf.Bucket + "." + strings.TrimPrefix(conf.Endpoint, "https://")
	}
	return &Storage{
		Client:     client,
		BucketName: conf.Bucket,
		Domain:     strings.TrimSuffix(domain, "/"),
	}, nil
}

// Upload PutObject 后返回公网地址
func (s *Storage) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error) {
	req := &oss.PutObjectRequest{
		Bucket:      oss.Ptr(s.BucketName),
		Key:         oss.Ptr(path),
		Body:        r,
		ContentType: oss.Ptr(contentType),
	}
	if size > 0 {
		req.ContentLength = oss.Ptr(size)
	}
	if _, err := s.Client.PutObject(ctx, req); err != nil {
		return "", errs.Network("upload image failed", err)
	}
	return s.URL(path), nil
}

func (s *Storage) Remove(ctx context.Context, path string) error {
	_, err := s.Client.DeleteObject(ctx, &oss.DeleteObjectRequest{
		Bucket: oss.Ptr(s.BucketName),
		Key:    oss.Ptr(path),
	})
	if err != nil {
		return errs.Network("remove image failed", err)
	}
	return nil
}

func (s *Storage) URL(path string) string {
	return s.Domain + "/" + strings.TrimPrefix(path, "/")
}
