package response

// AppError 统一错误包装
type AppError struct {
	Code      int
	ErrorCode string
	Message   string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:      code,
		ErrorCode: DefaultErrorCode(code),
		Message:   message,
		Err:       err,
	}
}

// WithErrorCode 指定业务错误码
func (e *AppError) WithErrorCode(errorCode string) *AppError {
	if e != nil && errorCode != "" {
		e.ErrorCode = errorCode
	}
	return e
}
