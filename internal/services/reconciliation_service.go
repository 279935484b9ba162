package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	"propertyms/internal/caching"
	"propertyms/internal/common"
	"propertyms/internal/models"
	"propertyms/internal/repositories"

	"github.com/sirupsen/logrus"
)

const callbackNotMatched = "Payment not found for callback"

// ReconciliationService applies gateway callbacks to payments.
type ReconciliationService interface {
	HandleCallback(ctx context.Context, params url.Values) (*CallbackOutcome, error)
}

// CallbackOutcome is returned for every callback that could be processed.
// An unmatched callback is an outcome, not an error.
type CallbackOutcome struct {
	Success   bool                 `json:"success"`
	PaymentID int64                `json:"payment_id,omitempty"`
	Status    models.PaymentStatus `json:"status,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type reconciliationService struct {
	paymentRepo repositories.PaymentRepository
	gateway     PaymentGateway
	notifier    NotificationService
	archive     CallbackArchive
	cache       caching.CacheService
	logger      *logrus.Logger
	now         func() time.Time
}

// NewReconciliationService builds the callback path. archive and cache may
// be nil.
func NewReconciliationService(
	paymentRepo repositories.PaymentRepository,
	gateway PaymentGateway,
	notifier NotificationService,
	archive CallbackArchive,
	cache caching.CacheService,
	logger *logrus.Logger,
) ReconciliationService {
	return &reconciliationService{
		paymentRepo: paymentRepo,
		gateway:     gateway,
		notifier:    notifier,
		archive:     archive,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

// HandleCallback matches the callback by hash and records it. Only the
// first successful callback for a payment moves it to PAID and confirms to
// the tenant; replays update nothing but the audit fields.
func (s *reconciliationService) HandleCallback(ctx context.Context, params url.Values) (*CallbackOutcome, error) {
	receivedAt := s.now()
	parsed := s.gateway.ParseCallback(params)

	if s.archive != nil {
		if err := s.archive.Store(ctx, parsed.Hash, params, receivedAt); err != nil {
			s.logger.WithError(err).WithField("hash", parsed.Hash).Warn("Failed to archive gateway callback")
		}
	}

	fields := logrus.Fields{
		"hash":       parsed.Hash,
		"invoice_id": parsed.InvoiceID,
		"tx_status":  parsed.TransactionStatus,
		"result":     parsed.ResultCode,
		"success":    parsed.IsSuccess,
	}
	if parsed.Cancelled {
		s.logger.WithFields(fields).Info("Gateway reports payment cancelled")
	}
	if parsed.Hash == "" {
		s.logger.WithFields(fields).Warn("Gateway callback without hash")
		return &CallbackOutcome{Success: false, Error: callbackNotMatched}, nil
	}

	result, err := s.paymentRepo.ApplyGatewayResult(ctx, parsed.Hash, models.GatewayOutcome{
		TxID:      parsed.TransactionID,
		PaymentID: parsed.GatewayPaymentID,
		Result:    parsed.ResultCode,
		TxStatus:  parsed.TransactionStatus,
		Success:   parsed.IsSuccess,
	}, receivedAt)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.WithFields(fields).Warn("No payment matches gateway callback")
			return &CallbackOutcome{Success: false, Error: callbackNotMatched}, nil
		}
		return nil, err
	}

	payment := result.Payment
	fields["payment_id"] = payment.ID
	fields["previous_status"] = result.PreviousStatus
	fields["status"] = payment.Status

	if result.Transitioned {
		s.logger.WithFields(fields).Info("Payment marked paid by gateway callback")
		invalidateSummaries(ctx, s.cache, s.logger)
		logNotifyErr(s.logger, payment.ID, "confirmation", s.notifier.SendPaymentConfirmation(ctx, NoticeFromPayment(payment)))
	} else {
		s.logger.WithFields(fields).Info("Gateway callback recorded")
	}

	return &CallbackOutcome{Success: parsed.IsSuccess, PaymentID: payment.ID, Status: payment.Status}, nil
}
