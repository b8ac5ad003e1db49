package response

import "fmt"

// AppError 携带业务码的错误
// 处理层用它把服务层错误连同 envelope 业务码一并送进日志。
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 把底层错误包装为 AppError
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
