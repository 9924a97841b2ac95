package middleware

import (
	"net/http"
	"strconv"

	"varsearch/api/contexts"

	"github.com/labstack/echo"
)

/*
	Echo middleware to ensure valid `xpos`, `ref` and `alt` HTTP query parameters were provided
*/
func MandateVariantTripleAttributes(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		vc := c.(*contexts.VarSearchContext)

		// check for xpos query parameter
		xposQP := c.QueryParam("xpos")
		if len(xposQP) == 0 {
			// if no position was provided return an error
			return echo.NewHTTPError(http.StatusBadRequest, "Missing 'xpos' query parameter for querying!")
		}

		// verify:
		xpos, conversionErr := strconv.ParseInt(xposQP, 10, 64)
		if conversionErr != nil {
			// if invalid xpos
			return echo.NewHTTPError(http.StatusBadRequest, "Error converting 'xpos' query parameter! Check your input")
		}
		if xpos <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Please provide an 'xpos' greater than 0!")
		}

		refQP := c.QueryParam("ref")
		altQP := c.QueryParam("alt")
		if len(refQP) == 0 || len(altQP) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Missing 'ref' or 'alt' query parameter for querying!")
		}

		vc.XPos = xpos
		vc.Ref = refQP
		vc.Alt = altQP
		return next(vc)
	}
}
