package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
)

// Upload 上传对象，已存在时覆盖
func (c *Client) Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.objectURL(bucket, path), r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	_, err = c.do(req)
	return err
}

func (c *Client) Remove(ctx context.Context, bucket string, paths ...string) error {
	raw, err := json.Marshal(map[string][]string{"prefixes": paths})
	if err != nil {
		return errs.Unknown("encode request", err)
	}
	req, err := c.newRequest(ctx, http.MethodDelete, c.baseURL+"/storage/v1/object/"+bucket, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}

func (c *Client) PublicURL(bucket, path string) string {
	return c.baseURL + "/storage/v1/object/public/" + bucket + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) objectURL(bucket, path string) string {
	return c.baseURL + "/storage/v1/object/" + bucket + "/" + strings.TrimPrefix(path, "/")
}
