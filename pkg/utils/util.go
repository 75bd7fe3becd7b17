package utils

import (
	"bytes"
	"fmt"
	"runtime"
	"time"

	"github.com/speps/go-hashids/v2"
)

func PanicTrace(err interface{}) string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "%v\n", err)
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fmt.Fprintf(buf, "%s:%d (0x%x)\n", file, line, pc)
	}
	return buf.String()
}

func newHashID(salt string) (*hashids.HashID, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 12
	return hashids.NewWithData(hd)
}

// GenHashID 生成分享码
func GenHashID(salt string, id int64) string {
	h, err := newHashID(salt)
	if err != nil {
		return ""
	}
	e, _ := h.EncodeInt64([]int64{id})
	return e
}

// DecodeHashID 分享码还原为 ID
func DecodeHashID(salt, code string) (int64, error) {
	h, err := newHashID(salt)
	if err != nil {
		return 0, err
	}
	ids, err := h.DecodeInt64WithError(code)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, fmt.Errorf("share code %q holds %d ids", code, len(ids))
	}
	return ids[0], nil
}

// DayKey 本地日历日期
func DayKey(t time.Time) string {
	return t.In(time.Local).Format(time.DateOnly)
}

// StartOfDay 本地时区当天零点
func StartOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
