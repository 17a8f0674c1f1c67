package handler

import (
	"net/http"

	"tableservice/internal/middleware"
	"tableservice/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecaseのエラー分類をHTTPへ写像する。分類外は一律500で詳細は出さない。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := usecase.AsAppError(err); ok {
		return c.JSON(kindToStatus(ae.Kind), ErrorResponse{Error: ae.Message})
	}

	// 500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func kindToStatus(kind usecase.ErrorKind) int {
	switch kind {
	case usecase.KindValidation:
		return http.StatusBadRequest
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindAuthentication:
		return http.StatusUnauthorized
	case usecase.KindAuthorization:
		return http.StatusForbidden
	case usecase.KindConflict:
		return http.StatusConflict
	case usecase.KindVerificationFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// echoに差すリクエストバリデータ
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return nil
}

func getRestaurantID(c echo.Context) (int64, bool) {
	v, ok := c.Get(middleware.CtxRestaurantIDKey).(int64)
	return v, ok
}

func getRole(c echo.Context) (string, bool) {
	v, ok := c.Get(middleware.CtxRoleKey).(string)
	return v, ok
}
