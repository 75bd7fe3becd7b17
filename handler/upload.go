package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/middleware"
	"github.com/petroshong/calofeed-sub001/pkg/context"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/response"
	"github.com/petroshong/calofeed-sub001/service"
	"github.com/petroshong/calofeed-sub001/types"
)

// Upload 图片上传与 AI 识别
type Upload struct {
	Session     service.ISessionService
	Upload      service.IUploadService
	Recognition service.IRecognitionService
}

func (u *Upload) RegisterRouter(r gin.IRouter) {
	authorize := middleware.RequireSession(u.Session)
	g := r.Group("", authorize)
	g.POST("/upload/image", context.Wrap(u.UploadImage))
	g.DELETE("/upload/image", context.Wrap(u.RemoveImage))
	g.POST("/analyze", context.Wrap(u.Analyze))
	g.POST("/analyze/log", context.Wrap(u.LogAnalysis))
}

func (u *Upload) UploadImage(c *gin.Context) error {
	header, err := c.FormFile("image")
	if err != nil {
		return errs.Validation("missing image", map[string]string{"image": "is required"})
	}
	resp, err := u.Upload.UploadImage(c.Request.Context(), header)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

func (u *Upload) RemoveImage(c *gin.Context) error {
	key := c.Query("key")
	if key == "" {
		return errs.Validation("missing key", map[string]string{"key": "is required"})
	}
	if err := u.Upload.Remove(c.Request.Context(), key); err != nil {
		return err
	}
	response.Success(c, nil)
	return nil
}

func (u *Upload) Analyze(c *gin.Context) error {
	var req types.AnalyzeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	res, err := u.Recognition.Analyze(c.Request.Context(), req)
	if err != nil {
		return err
	}
	response.Success(c, res)
	return nil
}

func (u *Upload) LogAnalysis(c *gin.Context) error {
	var req types.LogAnalysisRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	entry, err := u.Recognition.LogAnalysis(c.Request.Context(), req)
	if err != nil {
		return err
	}
	response.Success(c, entry)
	return nil
}
