package handlers

import (
	"net/http"
	"strings"
	"time"

	"propertyms/internal/common"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// callerFrom returns the authenticated identity set by the JWT middleware.
func callerFrom(c echo.Context) (common.Identity, error) {
	identity, ok := common.GetIdentityFromContext(c.Request().Context())
	if !ok {
		return common.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return identity, nil
}

// respondError renders err by kind and logs anything unclassified.
func respondError(c echo.Context, logger *logrus.Logger, err error) error {
	if common.KindOf(err) == "" {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("Request failed")
	}
	return common.SendAppError(c, err)
}

// parseDate accepts a plain date or an RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseOptionalDate(raw *string, field string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, common.InvalidInput(field + " must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

// periodParams reads month and year from the query, defaulting to the
// current period.
func periodParams(c echo.Context, now time.Time) (month, year int, err error) {
	if month, err = common.QueryInt(c, "month", int(now.Month())); err != nil {
		return 0, 0, err
	}
	if year, err = common.QueryInt(c, "year", now.Year()); err != nil {
		return 0, 0, err
	}
	return month, year, common.ValidatePeriod(month, year)
}
