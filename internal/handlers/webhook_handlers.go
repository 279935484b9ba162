package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"propertyms/internal/caching"
	"propertyms/internal/common"
	"propertyms/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const callbackRateWindow = time.Minute

// WebhookHandlers receives the payment gateway's browser redirect callback.
type WebhookHandlers struct {
	reconciler  services.ReconciliationService
	cache       caching.CacheService
	frontendURL string
	rateLimit   int
	logger      *logrus.Logger
}

// NewWebhookHandlers wires the callback endpoint. cache may be nil, in
// which case callbacks are not rate limited.
func NewWebhookHandlers(
	reconciler services.ReconciliationService,
	cache caching.CacheService,
	frontendURL string,
	rateLimit int,
	logger *logrus.Logger,
) *WebhookHandlers {
	return &WebhookHandlers{
		reconciler:  reconciler,
		cache:       cache,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		rateLimit:   rateLimit,
		logger:      logger,
	}
}

// TahseeelCallback handles GET|POST /payments/callback. The payer's browser
// lands here, so every outcome ends in a redirect to the frontend result
// page.
func (h *WebhookHandlers) TahseeelCallback(c echo.Context) error {
	ctx := c.Request().Context()

	if h.cache != nil && h.rateLimit > 0 {
		limited, err := h.cache.IsRateLimited(ctx, "callback:"+c.RealIP(), h.rateLimit, callbackRateWindow)
		if err != nil {
			h.logger.WithError(err).Warn("Callback rate limiter unavailable")
		} else if limited {
			return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", "Too many callback requests", nil))
		}
	}

	params := c.QueryParams()
	if c.Request().Method == http.MethodPost {
		form, err := c.FormParams()
		if err == nil {
			for k, v := range form {
				if _, ok := params[k]; !ok {
					params[k] = v
				}
			}
		}
	}

	outcome, err := h.reconciler.HandleCallback(ctx, params)
	if err != nil {
		h.logger.WithError(err).Error("Failed to process payment callback")
		return c.Redirect(http.StatusFound, h.resultURL("error", 0))
	}

	status := "failed"
	if outcome.Success {
		status = "success"
	}
	return c.Redirect(http.StatusFound, h.resultURL(status, outcome.PaymentID))
}

func (h *WebhookHandlers) resultURL(status string, paymentID int64) string {
	q := url.Values{"status": {status}}
	if paymentID > 0 {
		q.Set("paymentId", strconv.FormatInt(paymentID, 10))
	}
	return h.frontendURL + "/payments/result?" + q.Encode()
}
