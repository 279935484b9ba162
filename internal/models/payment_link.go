package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentLinkStatusPending = "Pending"
	PaymentLinkStatusPaid    = "Paid"
)

// PaymentLink is a standalone gateway order not tied to any tenancy.
type PaymentLink struct {
	ID         int64           `json:"id" db:"id"`
	OrderNo    string          `json:"order_no" db:"order_no"`
	CustName   string          `json:"cust_name" db:"cust_name"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	PaymentURL string          `json:"payment_url" db:"payment_url"`
	Status     string          `json:"status" db:"status"`
	CreatedBy  *int64          `json:"created_by,omitempty" db:"created_by"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}
