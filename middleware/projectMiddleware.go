package middleware

import (
	"net/http"

	"varsearch/api/contexts"

	"github.com/labstack/echo"
)

/*
	Echo middleware to ensure a valid `projectId` HTTP query parameter was provided
*/
func MandateProjectIdAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		vc := c.(*contexts.VarSearchContext)

		// check for projectId query parameter
		projectIdQP := c.QueryParam("projectId")
		if len(projectIdQP) == 0 {
			// if no id was provided return an error
			return echo.NewHTTPError(http.StatusBadRequest, "Missing 'projectId' query parameter for querying!")
		}

		vc.ProjectId = projectIdQP
		return next(vc)
	}
}

/*
	Echo middleware to prepare the context for an optionally provided `familyId` HTTP query parameter
*/
func CalibrateOptionalFamilyIdAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		vc := c.(*contexts.VarSearchContext)

		vc.FamilyId = c.QueryParam("familyId")
		return next(vc)
	}
}
