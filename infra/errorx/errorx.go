// 带错误码的 error
// 用法: errorx.New(errCode.INVALID_VALUE, "maxLag must be > 0")
// 判断: errorx.Is(err, errCode.INVALID_VALUE)
package errorx

import (
	stdErrors "errors"
	"fmt"

	"binstat/infra/errorx/errCode"

	"github.com/pkg/errors"
)

type Error struct {
	Code  errCode.Code
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Msg, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

// New 创建错误并记录调用栈 (%+v 可打印)
func New(code errCode.Code, msg string) error {
	return errors.WithStack(&Error{Code: code, Msg: msg})
}

func Newf(code errCode.Code, format string, args ...any) error {
	return errors.WithStack(&Error{Code: code, Msg: fmt.Sprintf(format, args...)})
}

// Wrap 给底层错误打上错误码; err 为 nil 时返回 nil
func Wrap(err error, code errCode.Code, msg string) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{Code: code, Msg: msg, cause: err})
}

// CodeOf 返回链上第一个 *Error 的错误码
func CodeOf(err error) errCode.Code {
	var e *Error
	if stdErrors.As(err, &e) {
		return e.Code
	}
	return errCode.UNKNOWN
}

func Is(err error, code errCode.Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}
