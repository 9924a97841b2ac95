package middleware

import (
	"varsearch/api/contexts"
	variantsService "varsearch/api/services/variants"

	"github.com/labstack/echo"
)

/*
	Echo middleware to resolve the requesting user from headers. Account
	identity and the staff flag arrive from the upstream gateway; absent
	headers mean an anonymous, unprivileged request.
*/
func CalibrateUserAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		vc := c.(*contexts.VarSearchContext)

		userId := c.Request().Header.Get("X-User-Id")
		isStaff := c.Request().Header.Get("X-User-Is-Staff") == "true"

		if userId != "" || isStaff {
			vc.User = &variantsService.User{Id: userId, IsStaff: isStaff}
		}
		return next(vc)
	}
}
