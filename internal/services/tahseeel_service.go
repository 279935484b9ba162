package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"propertyms/internal/common"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultTahseeelURL = "https://lounge.tahseeel.com/api/"

// TahseeelConfig holds merchant credentials and endpoint settings.
type TahseeelConfig struct {
	BaseURL     string
	UID         string
	Password    string
	Secret      string
	CallbackURL string
	Timeout     time.Duration
}

// PaymentGateway creates orders on the external gateway and normalizes its
// callbacks.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)
	OrderInfo(ctx context.Context, invoiceID, hash string) (map[string]interface{}, error)
	ParseCallback(params url.Values) *CallbackResult
	IsConfigured() bool
}

type CreateOrderRequest struct {
	OrderNo        string
	Amount         decimal.Decimal
	CustomerName   string
	CustomerEmail  string
	CustomerMobile string
	PhoneCode      string
	Remarks        string
}

type CreateOrderResponse struct {
	Link    string `json:"link"`
	Message string `json:"msg"`
}

// CallbackResult is a gateway callback with field names resolved.
type CallbackResult struct {
	Cancelled         bool   `json:"cancelled"`
	Hash              string `json:"hash"`
	InvoiceID         string `json:"invoice_id"`
	TransactionID     string `json:"transaction_id"`
	GatewayPaymentID  string `json:"gateway_payment_id"`
	ResultCode        string `json:"result_code"`
	TransactionStatus string `json:"transaction_status"`
	TransactionDate   string `json:"transaction_date,omitempty"`
	TransactionAmount string `json:"transaction_amount,omitempty"`
	TransactionMode   string `json:"transaction_mode,omitempty"`
	PostDate          string `json:"post_date,omitempty"`
	TranID            string `json:"tran_id,omitempty"`
	Auth              string `json:"auth,omitempty"`
	Ref               string `json:"ref,omitempty"`
	IsSuccess         bool   `json:"is_success"`
}

type gatewayResponse struct {
	Error flexBool `json:"error"`
	Msg   string   `json:"msg"`
	Link  string   `json:"link"`
}

// flexBool accepts true/false, 0/1 and their string forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "", "null", "false", "0":
		*b = false
	default:
		*b = true
	}
	return nil
}

type tahseeelService struct {
	cfg    TahseeelConfig
	http   *http.Client
	logger *logrus.Logger
}

// NewTahseeelService creates the gateway client. Calls are bounded by cfg.Timeout.
func NewTahseeelService(cfg TahseeelConfig, logger *logrus.Logger) PaymentGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTahseeelURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &tahseeelService{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func isPlaceholder(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.HasPrefix(v, "your_") || v == "changeme"
}

// IsConfigured reports whether real credentials are present.
func (s *tahseeelService) IsConfigured() bool {
	return !isPlaceholder(s.cfg.UID) && !isPlaceholder(s.cfg.Password) && !isPlaceholder(s.cfg.Secret)
}

// CreateOrder posts a new order. No network call is made when the
// credentials are missing or placeholders.
func (s *tahseeelService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	if !s.IsConfigured() {
		return nil, common.ErrGatewayNotConfigured
	}

	form := s.credentials()
	form.Set("order_no", req.OrderNo)
	form.Set("order_amt", req.Amount.StringFixed(3))
	form.Set("delivery_charges", "0.000")
	form.Set("total_items", "1")
	form.Set("cust_name", req.CustomerName)
	form.Set("callback_url", s.cfg.CallbackURL)
	form.Set("knet_allowed", "0")
	form.Set("aPay_allowed", "1")
	setIfPresent(form, "cust_email", req.CustomerEmail)
	setIfPresent(form, "cust_mobile", req.CustomerMobile)
	setIfPresent(form, "phone_code", req.PhoneCode)
	setIfPresent(form, "remarks", req.Remarks)

	var resp gatewayResponse
	if err := s.post(ctx, "order", form, &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		msg := resp.Msg
		if msg == "" {
			msg = "Failed to create payment order"
		}
		return nil, common.GatewayError(msg, nil)
	}
	if resp.Link == "" {
		return nil, common.GatewayError("Payment gateway returned no link", nil)
	}

	s.logger.WithFields(logrus.Fields{"order_no": req.OrderNo}).Info("Gateway order created")
	return &CreateOrderResponse{Link: resp.Link, Message: resp.Msg}, nil
}

// OrderInfo fetches the gateway's view of an order.
func (s *tahseeelService) OrderInfo(ctx context.Context, invoiceID, hash string) (map[string]interface{}, error) {
	if !s.IsConfigured() {
		return nil, common.ErrGatewayNotConfigured
	}
	form := s.credentials()
	form.Set("id", invoiceID)
	form.Set("hash", hash)

	var info map[string]interface{}
	if err := s.post(ctx, "order_info", form, &info); err != nil {
		return nil, err
	}
	if failed, ok := info["error"].(bool); ok && failed {
		msg, _ := info["msg"].(string)
		return nil, common.GatewayError("Failed to get order info: "+msg, nil)
	}
	return info, nil
}

func (s *tahseeelService) credentials() url.Values {
	form := url.Values{}
	form.Set("uid", s.cfg.UID)
	form.Set("pwd", s.cfg.Password)
	form.Set("secret", s.cfg.Secret)
	return form
}

func (s *tahseeelService) post(ctx context.Context, page string, form url.Values, out interface{}) error {
	endpoint := s.cfg.BaseURL + "?p=" + page
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return common.GatewayError("Failed to build gateway request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(httpReq)
	if err != nil {
		s.logger.WithError(err).WithField("page", page).Error("Gateway request failed")
		return common.GatewayError("Payment gateway error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return common.GatewayError("Failed to read gateway response", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return common.GatewayError(fmt.Sprintf("Payment gateway returned status %d", resp.StatusCode), nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return common.GatewayError("Invalid gateway response", err)
	}
	return nil
}

// ParseCallback maps raw callback query parameters. Field names follow the
// gateway exactly. Success is either tx_status "approved" or Result
// "captured", compared case-insensitively.
func (s *tahseeelService) ParseCallback(params url.Values) *CallbackResult {
	return ParseTahseeelCallback(params)
}

func ParseTahseeelCallback(params url.Values) *CallbackResult {
	result := &CallbackResult{
		Cancelled:         params.Get("cancelled") == "1",
		Hash:              params.Get("hash"),
		InvoiceID:         firstNonEmpty(params.Get("inv_id"), params.Get("order_id")),
		TransactionID:     params.Get("tx_id"),
		GatewayPaymentID:  params.Get("PaymentID"),
		ResultCode:        firstNonEmpty(params.Get("Result"), params.Get("result")),
		TransactionStatus: params.Get("tx_status"),
		TransactionDate:   params.Get("tx_date"),
		TransactionAmount: params.Get("tx_amt"),
		TransactionMode:   params.Get("tx_mode"),
		PostDate:          params.Get("PostDate"),
		TranID:            params.Get("TranID"),
		Auth:              params.Get("Auth"),
		Ref:               params.Get("Ref"),
	}
	result.IsSuccess = strings.EqualFold(result.TransactionStatus, "approved") ||
		strings.EqualFold(result.ResultCode, "captured")
	return result
}

// ExtractLinkReference pulls the correlation hash and invoice id out of a
// payment link returned by CreateOrder.
func ExtractLinkReference(link string) (hash, invoiceID string, err error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", "", fmt.Errorf("parse payment link: %w", err)
	}
	q := u.Query()
	hash, invoiceID = q.Get("hash"), q.Get("id")
	if hash == "" {
		return "", invoiceID, errors.New("payment link has no hash parameter")
	}
	return hash, invoiceID, nil
}

func setIfPresent(form url.Values, key, value string) {
	if value != "" {
		form.Set(key, value)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
