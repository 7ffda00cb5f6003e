package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeValidation          ErrorCode = "VALIDATION_FAILED"
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateKey        ErrorCode = "DUPLICATE_KEY"
	ErrCodeHasDependents       ErrorCode = "HAS_DEPENDENTS"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeTooManyRequests     ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeNoUpdatableFields   ErrorCode = "NO_UPDATABLE_FIELDS"
	ErrCodeMalformedStoredJSON ErrorCode = "MALFORMED_STORED_JSON"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// FieldError описывает одно нарушение валидации.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Fields     []FieldError
	// Count — число зависимых записей для HAS_DEPENDENTS.
	Count int64
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду, чтобы errors.Is(err, ErrNoUpdatableFields) работал для копий.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == e.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation собирает все нарушения в одну ошибку.
func Validation(fields []FieldError) *AppError {
	return &AppError{
		Code:       ErrCodeValidation,
		Message:    "Dữ liệu không hợp lệ",
		HTTPStatus: http.StatusBadRequest,
		Fields:     fields,
	}
}

// HasDependents сообщает, что удаление заблокировано дочерними записями.
func HasDependents(count int64, reason string) *AppError {
	return &AppError{
		Code:       ErrCodeHasDependents,
		Message:    reason,
		HTTPStatus: http.StatusBadRequest,
		Count:      count,
	}
}

func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrCodeValidation, ErrCodeDuplicateKey, ErrCodeHasDependents, ErrCodeNoUpdatableFields:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsDuplicateKey(err error) bool {
	return CodeOf(err) == ErrCodeDuplicateKey
}

var (
	ErrNoUpdatableFields  = New(ErrCodeNoUpdatableFields, "Không có dữ liệu để cập nhật")
	ErrDuplicateKey       = New(ErrCodeDuplicateKey, "Dữ liệu đã tồn tại")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "Yêu cầu đăng nhập")
	ErrForbidden          = New(ErrCodeForbidden, "Không có quyền truy cập")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "Tên đăng nhập hoặc mật khẩu không đúng")
	ErrInternal           = New(ErrCodeInternal, "Có lỗi xảy ra, vui lòng thử lại sau")
	ErrTooManyRequests    = New(ErrCodeTooManyRequests, "Quá nhiều yêu cầu, vui lòng thử lại sau")
	ErrRouteNotFound      = New(ErrCodeNotFound, "API endpoint not found")
)
