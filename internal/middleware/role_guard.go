package middleware

import (
	"net/http"

	"tableservice/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextのroleが許可リストに入っているか確認する。
// AuthJWTの後段に置くこと。
func RoleGuard(allowed ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			for _, a := range allowed {
				if model.Role(role) == a {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, errorJSON("role not permitted"))
		}
	}
}
