package usecase

import "errors"

// エラー分類。handlerがHTTPステータスへ写像する。
// usecaseから外へ出るエラーは必ずこのどれかに包む。
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindAuthentication
	KindAuthorization
	KindConflict
	KindVerificationFailed
	KindInternal
)

type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) error {
	return &AppError{Kind: kind, Message: message}
}

func NewValidationError(message string) error     { return newError(KindValidation, message) }
func NewNotFoundError(message string) error       { return newError(KindNotFound, message) }
func NewAuthenticationError(message string) error { return newError(KindAuthentication, message) }
func NewAuthorizationError(message string) error  { return newError(KindAuthorization, message) }
func NewConflictError(message string) error       { return newError(KindConflict, message) }
func NewVerificationFailedError(message string) error {
	return newError(KindVerificationFailed, message)
}

// 内部詳細（DBエラー文言など）は境界の外に出さない
func NewInternalError() error { return newError(KindInternal, "internal error") }

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}
