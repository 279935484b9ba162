package middleware

import (
	"github.com/labstack/echo/v4"
)

// VersionHeader stamps responses with the API and build version.
func VersionHeader(apiVersion, build string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", apiVersion)
			if build != "" {
				c.Response().Header().Set("X-Build-Version", build)
			}
			return next(c)
		}
	}
}
