// Package errs 定义应用统一的错误分类。
//
// 本地集合操作（记录、餐食）从不返回错误；身份与远端调用的错误
// 按 Kind 分类后由 HTTP 层映射为响应码。
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindNetwork
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error 携带分类、面向用户的消息、字段级错误以及底层原因
type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString(e.Kind.String() + " error")
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		b.WriteString(" (" + strings.Join(parts, "; ") + ")")
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, errs.ErrAuth) 这类按分类的判断成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrNetwork    = &Error{Kind: KindNetwork}
	ErrUnknown    = &Error{Kind: KindUnknown}
	ErrNotFound   = &Error{Kind: KindNotFound}
)

func E(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Msg: msg, Fields: fields}
}

func Auth(msg string, err error) *Error {
	return &Error{Kind: KindAuth, Msg: msg, Err: err}
}

func Network(msg string, err error) *Error {
	return &Error{Kind: KindNetwork, Msg: msg, Err: err}
}

func Unknown(msg string, err error) *Error {
	return &Error{Kind: KindUnknown, Msg: msg, Err: err}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// KindOf 返回错误链上第一个 *Error 的分类，非本包错误视为 KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message 取面向用户的消息，未分类的错误统一给出通用提示
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return "something went wrong, please try again"
}

// FieldsOf 返回字段级校验错误
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
