package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/validate"
)

// bindJSON 解析请求体并按 validate tag 校验
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errs.Validation("invalid request body", map[string]string{"body": err.Error()})
	}
	return validate.Struct(dst)
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.Validation("invalid query parameter", map[string]string{name: "must be an integer"})
	}
	return n, nil
}

// queryDate 按本地时区解析 2006-01-02
func queryDate(c *gin.Context, name string, def time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return time.Time{}, errs.Validation("invalid query parameter", map[string]string{name: "must be YYYY-MM-DD"})
	}
	return t, nil
}
