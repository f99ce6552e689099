package errors

import (
	stderrors "errors"
	"fmt"
)

// Category 错误分类
type Category string

const (
	CategoryValidation  Category = "validation"
	CategoryUpstream    Category = "upstream"
	CategoryExecution   Category = "execution"
	CategoryPersistence Category = "persistence"
	CategoryInternal    Category = "internal"
)

// AppError 应用业务错误
type AppError struct {
	Code     ErrCode        // 业务错误码
	Message  string         // 错误消息
	Category Category       // 错误分类
	Payload  map[string]any // 附加信息
	cause    error
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.cause
}

// StatusCode 错误对应的HTTP状态码
func (e *AppError) StatusCode() int {
	return e.Code.HTTPStatusCode()
}

// Summary 返回 "<category>: <message>" 形式的描述，写入分析记录的 error 字段
func (e *AppError) Summary() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// WithPayload 附加信息
func (e *AppError) WithPayload(key string, value any) *AppError {
	if e.Payload == nil {
		e.Payload = make(map[string]any)
	}
	e.Payload[key] = value
	return e
}

// New 创建新的业务错误
func New(code ErrCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Category: code.Category(),
	}
}

// Newf 创建新的业务错误（格式化消息）
func Newf(code ErrCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Category: code.Category(),
	}
}

// Wrap 包装底层错误
func Wrap(code ErrCode, err error, message string) *AppError {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %v", message, err)
	}
	return &AppError{
		Code:     code,
		Message:  msg,
		Category: code.Category(),
		cause:    err,
	}
}

// IsAppError 判断是否为业务错误
func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// GetAppError 获取业务错误，如果不是则返回nil
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// FromError 将任意错误转为业务错误
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}
	return Wrap(ErrInternalError, err, "unexpected error")
}
