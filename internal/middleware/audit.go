package middleware

import (
	"time"

	"propertyms/internal/common"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// AuditLog writes one structured entry per request, tagged with the caller
// when one is authenticated. Mutating requests are logged at info, reads at
// debug.
func AuditLog(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo render the error so the status below is final
				c.Error(err)
			}

			req := c.Request()
			fields := logrus.Fields{
				"method":     req.Method,
				"path":       c.Path(),
				"uri":        req.RequestURI,
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"remote_ip":  c.RealIP(),
			}
			if identity, ok := common.GetIdentityFromContext(req.Context()); ok {
				fields["user_id"] = identity.UserID
				fields["role"] = identity.Role
			}

			entry := logger.WithFields(fields)
			switch {
			case c.Response().Status >= 500:
				entry.WithError(err).Error("Request failed")
			case req.Method == "GET" || req.Method == "HEAD":
				entry.Debug("Request handled")
			default:
				entry.Info("Request handled")
			}
			return nil
		}
	}
}
