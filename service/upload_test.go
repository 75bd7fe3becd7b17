package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// formFile 构造一个 multipart 文件头
func formFile(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpload_StoresImageUnderUserPrefix(t *testing.T) {
	env := newTestEnv(t)
	uid := env.register(t, "ann@example.com", "ann")
	svc := &UploadService{Storage: env.backend, Session: env.session}

	data := pngBytes(t, 4, 3)
	resp, err := svc.UploadImage(context.Background(), formFile(t, "meal.png", data))
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Width)
	assert.Equal(t, 3, resp.Height)
	assert.True(t, strings.HasPrefix(resp.Key, "meals/"+uid+"/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".png"))
	assert.Contains(t, resp.Url, resp.Key)

	stored, ok := env.backend.Object(resp.Key)
	require.True(t, ok)
	assert.Equal(t, data, stored)

	require.NoError(t, svc.Remove(context.Background(), resp.Key))
	_, ok = env.backend.Object(resp.Key)
	assert.False(t, ok)
}

func TestUpload_RejectsNonImages(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ann@example.com", "ann")
	svc := &UploadService{Storage: env.backend, Session: env.session}

	_, err := svc.UploadImage(context.Background(), formFile(t, "notes.txt", []byte("just some text")))
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.UploadImage(context.Background(), nil)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestUpload_RemoveOnlyOwnKeys(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ann@example.com", "ann")
	svc := &UploadService{Storage: env.backend, Session: env.session}

	err := svc.Remove(context.Background(), "meals/someone-else/2026/10/15/x.png")
	assert.ErrorIs(t, err, errs.ErrAuth)
}

func TestUpload_RequiresSession(t *testing.T) {
	env := newTestEnv(t)
	svc := &UploadService{Storage: env.backend, Session: env.session}
	_, err := svc.UploadImage(context.Background(), formFile(t, "meal.png", pngBytes(t, 1, 1)))
	assert.ErrorIs(t, err, errs.ErrAuth)
}
