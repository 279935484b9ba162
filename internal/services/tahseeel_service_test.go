package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"propertyms/internal/common"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc, timeout time.Duration) PaymentGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, _ := test.NewNullLogger()
	return NewTahseeelService(TahseeelConfig{
		BaseURL:     server.URL + "/api/",
		UID:         "merchant",
		Password:    "pw",
		Secret:      "s3cret",
		CallbackURL: "https://app.example/payments/callback",
		Timeout:     timeout,
	}, logger)
}

func TestTahseeel_CreateOrder_SendsForm(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "order", r.URL.Query().Get("p"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "merchant", r.PostForm.Get("uid"))
		assert.Equal(t, "pw", r.PostForm.Get("pwd"))
		assert.Equal(t, "s3cret", r.PostForm.Get("secret"))
		assert.Equal(t, "PAY-1-100", r.PostForm.Get("order_no"))
		assert.Equal(t, "1500.500", r.PostForm.Get("order_amt"))
		assert.Equal(t, "0.000", r.PostForm.Get("delivery_charges"))
		assert.Equal(t, "1", r.PostForm.Get("total_items"))
		assert.Equal(t, "0", r.PostForm.Get("knet_allowed"))
		assert.Equal(t, "1", r.PostForm.Get("aPay_allowed"))
		assert.Equal(t, "Sara Ali", r.PostForm.Get("cust_name"))
		assert.Equal(t, "965", r.PostForm.Get("phone_code"))
		assert.Equal(t, "https://app.example/payments/callback", r.PostForm.Get("callback_url"))
		_, hasEmail := r.PostForm["cust_email"]
		assert.False(t, hasEmail)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":false,"msg":"ok","link":"https://pay.example/x?hash=H123&id=INV9"}`))
	}, time.Second)

	resp, err := gateway.CreateOrder(context.Background(), &CreateOrderRequest{
		OrderNo:      "PAY-1-100",
		Amount:       decimal.RequireFromString("1500.5"),
		CustomerName: "Sara Ali",
		PhoneCode:    "965",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/x?hash=H123&id=INV9", resp.Link)
	assert.Equal(t, "ok", resp.Message)
}

func TestTahseeel_CreateOrder_GatewayReportsError(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":true,"msg":"Invalid merchant"}`))
	}, time.Second)

	_, err := gateway.CreateOrder(context.Background(), &CreateOrderRequest{OrderNo: "PAY-1", Amount: decimal.NewFromInt(10), CustomerName: "x"})
	assert.ErrorIs(t, err, common.ErrGateway)
	assert.Contains(t, err.Error(), "Invalid merchant")
}

func TestTahseeel_CreateOrder_NumericErrorFlag(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"1","msg":"Duplicate order"}`))
	}, time.Second)

	_, err := gateway.CreateOrder(context.Background(), &CreateOrderRequest{OrderNo: "PAY-1", Amount: decimal.NewFromInt(10), CustomerName: "x"})
	assert.ErrorIs(t, err, common.ErrGateway)
}

func TestTahseeel_CreateOrder_Timeout(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"error":false,"link":"https://pay.example/x?hash=H"}`))
	}, 50*time.Millisecond)

	_, err := gateway.CreateOrder(context.Background(), &CreateOrderRequest{OrderNo: "PAY-1", Amount: decimal.NewFromInt(10), CustomerName: "x"})
	assert.ErrorIs(t, err, common.ErrGateway)
}

func TestTahseeel_CreateOrder_ServerError(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, time.Second)

	_, err := gateway.CreateOrder(context.Background(), &CreateOrderRequest{OrderNo: "PAY-1", Amount: decimal.NewFromInt(10), CustomerName: "x"})
	assert.ErrorIs(t, err, common.ErrGateway)
	assert.Contains(t, err.Error(), "502")
}

func TestTahseeel_CreateOrder_NotConfigured(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	logger, _ := test.NewNullLogger()
	for _, cfg := range []TahseeelConfig{
		{BaseURL: server.URL, UID: "", Password: "pw", Secret: "s"},
		{BaseURL: server.URL, UID: "your_uid", Password: "pw", Secret: "s"},
		{BaseURL: server.URL, UID: "merchant", Password: "changeme", Secret: "s"},
	} {
		gateway := NewTahseeelService(cfg, logger)
		assert.False(t, gateway.IsConfigured())
		_, err := gateway.CreateOrder(context.Background(), &CreateOrderRequest{OrderNo: "PAY-1", Amount: decimal.NewFromInt(10)})
		assert.ErrorIs(t, err, common.ErrGatewayNotConfigured)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestTahseeel_OrderInfo(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "order_info", r.URL.Query().Get("p"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "INV9", r.PostForm.Get("id"))
		assert.Equal(t, "H123", r.PostForm.Get("hash"))
		_, _ = w.Write([]byte(`{"error":false,"status":"paid"}`))
	}, time.Second)

	info, err := gateway.OrderInfo(context.Background(), "INV9", "H123")
	require.NoError(t, err)
	assert.Equal(t, "paid", info["status"])
}

func TestParseTahseeelCallback(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		success bool
		invoice string
		result  string
	}{
		{name: "approved status", query: "hash=H1&tx_status=Approved", success: true},
		{name: "captured result upper", query: "hash=H1&Result=CAPTURED", success: true, result: "CAPTURED"},
		{name: "captured result lower key", query: "hash=H1&result=captured", success: true, result: "captured"},
		{name: "declined", query: "hash=H1&tx_status=Declined&Result=NOT+CAPTURED", success: false, result: "NOT CAPTURED"},
		{name: "order id fallback", query: "hash=H1&order_id=ORD1", success: false, invoice: "ORD1"},
		{name: "inv id wins", query: "hash=H1&inv_id=INV1&order_id=ORD1", success: false, invoice: "INV1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params, err := url.ParseQuery(tc.query)
			require.NoError(t, err)
			parsed := ParseTahseeelCallback(params)
			assert.Equal(t, "H1", parsed.Hash)
			assert.Equal(t, tc.success, parsed.IsSuccess)
			assert.Equal(t, tc.invoice, parsed.InvoiceID)
			assert.Equal(t, tc.result, parsed.ResultCode)
		})
	}
}

func TestParseTahseeelCallback_AllFields(t *testing.T) {
	params := url.Values{
		"hash": {"H123"}, "inv_id": {"INV9"}, "tx_id": {"TX1"}, "PaymentID": {"PID1"},
		"tx_status": {"Approved"}, "cancelled": {"1"}, "tx_amt": {"1500.000"}, "TranID": {"T1"},
		"Auth": {"A1"}, "Ref": {"R1"}, "PostDate": {"0615"}, "tx_mode": {"KNET"}, "tx_date": {"2024-06-15"},
	}
	parsed := ParseTahseeelCallback(params)
	assert.True(t, parsed.Cancelled)
	assert.Equal(t, "TX1", parsed.TransactionID)
	assert.Equal(t, "PID1", parsed.GatewayPaymentID)
	assert.Equal(t, "1500.000", parsed.TransactionAmount)
	assert.Equal(t, "T1", parsed.TranID)
	assert.Equal(t, "A1", parsed.Auth)
	assert.Equal(t, "R1", parsed.Ref)
	assert.Equal(t, "0615", parsed.PostDate)
	assert.Equal(t, "KNET", parsed.TransactionMode)
	assert.Equal(t, "2024-06-15", parsed.TransactionDate)
}

func TestExtractLinkReference(t *testing.T) {
	hash, id, err := ExtractLinkReference("https://pay.example/x?hash=H123&id=INV9")
	require.NoError(t, err)
	assert.Equal(t, "H123", hash)
	assert.Equal(t, "INV9", id)

	_, _, err = ExtractLinkReference("https://pay.example/x?id=INV9")
	assert.Error(t, err)

	_, _, err = ExtractLinkReference("://bad")
	assert.Error(t, err)
}
