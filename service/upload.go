package service

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/types"
	_ "golang.org/x/image/webp"
)

// 单张图片上限
const maxImageSize int64 = 10 << 20

var _ IUploadService = (*UploadService)(nil)

type IUploadService interface {
	UploadImage(ctx context.Context, header *multipart.FileHeader) (*types.UploadImageResp, error)
	Remove(ctx context.Context, key string) error
}

type UploadService struct {
	Storage backend.ObjectStorage
	Session ISessionService
}

// UploadImage 校验类型与尺寸后上传，返回公开地址
func (s *UploadService) UploadImage(ctx context.Context, header *multipart.FileHeader) (*types.UploadImageResp, error) {
	uid := s.Session.UserID()
	if uid == "" {
		return nil, errs.Auth("not signed in", nil)
	}
	if header == nil {
		return nil, errs.Validation("missing image", map[string]string{"file": "is required"})
	}
	// header.Size 不可信，但可做第一道拦截
	if header.Size <= 0 || header.Size > maxImageSize {
		return nil, errs.Validation("image must be between 1 byte and 10MB", map[string]string{"file": "size is invalid"})
	}

	f, err := header.Open()
	if err != nil {
		return nil, errs.Unknown("open upload", err)
	}
	defer f.Close()

	resp, key, contentType, err := inspectImage(f)
	if err != nil {
		return nil, err
	}
	key = fmt.Sprintf("meals/%s/%s/%s%s", uid, time.Now().Format("2006/01/02"), uuid.NewString(), key)

	url, err := s.Storage.Upload(ctx, key, io.LimitReader(f, maxImageSize+1), header.Size, contentType)
	if err != nil {
		return nil, err
	}
	resp.Url = url
	resp.Key = key
	return resp, nil
}

// Remove 只能删除自己目录下的对象
func (s *UploadService) Remove(ctx context.Context, key string) error {
	uid := s.Session.UserID()
	if uid == "" {
		return errs.Auth("not signed in", nil)
	}
	if !strings.HasPrefix(key, "meals/"+uid+"/") {
		return errs.Auth("you can only remove your own images", nil)
	}
	return s.Storage.Remove(ctx, key)
}

// inspectImage 返回尺寸、扩展名与 MIME，读完后流回到开头
func inspectImage(f io.ReadSeeker) (*types.UploadImageResp, string, string, error) {
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	contentType := http.DetectContentType(head[:n])
	allowedMime := map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
	}
	if !allowedMime[contentType] {
		return nil, "", "", errs.Validation("unsupported image type: "+contentType, map[string]string{"file": "must be jpeg, png or webp"})
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", "", errs.Unknown("rewind upload", err)
	}

	// 只读取头部，不解码全图
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, "", "", errs.Validation("invalid image", map[string]string{"file": "is not a valid image"})
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", "", errs.Unknown("rewind upload", err)
	}
	ext := "." + strings.ToLower(format)
	if format == "jpeg" {
		ext = ".jpg"
	}
	return &types.UploadImageResp{Width: cfg.Width, Height: cfg.Height}, ext, contentType, nil
}
