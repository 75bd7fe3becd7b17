package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
)

type BizError struct {
	Code   int
	Msg    string
	Fields map[string]string
}

func (e *BizError) Error() string {
	return e.Msg
}

func NewError(code int, msg string) *BizError {
	return &BizError{
		Code: code,
		Msg:  msg,
	}
}

// FromError 把分类错误映射成业务错误码
func FromError(err error) *BizError {
	var be *BizError
	if errors.As(err, &be) {
		return be
	}
	code := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindValidation:
		code = http.StatusBadRequest
	case errs.KindAuth:
		code = http.StatusUnauthorized
	case errs.KindNotFound:
		code = http.StatusNotFound
	case errs.KindNetwork:
		code = http.StatusBadGateway
	}
	return &BizError{
		Code:   code,
		Msg:    errs.Message(err),
		Fields: errs.FieldsOf(err),
	}
}

func Abort(c *gin.Context, httpStatus int, msg string) {
	c.AbortWithStatusJSON(httpStatus, Response{
		Code: httpStatus,
		Msg:  msg,
		Data: nil,
	})
}
