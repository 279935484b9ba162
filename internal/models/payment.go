package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusOverdue       PaymentStatus = "OVERDUE"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue, PaymentStatusPartiallyPaid:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodTahseeel     PaymentMethod = "TAHSEEEL"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodTahseeel, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is the rent obligation of one tenancy for one calendar month.
// (tenancy_id, month, year) is unique and so is gateway_hash.
type Payment struct {
	ID            int64           `json:"id" db:"id"`
	TenancyID     int64           `json:"tenancy_id" db:"tenancy_id"`
	Month         int             `json:"month" db:"month"`
	Year          int             `json:"year" db:"year"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Status        PaymentStatus   `json:"status" db:"status"`
	PaymentMethod *PaymentMethod  `json:"payment_method,omitempty" db:"payment_method"`

	GatewayOrderNo     *string `json:"gateway_order_no,omitempty" db:"gateway_order_no"`
	GatewayHash        *string `json:"-" db:"gateway_hash"`
	GatewayInvoiceID   *string `json:"gateway_invoice_id,omitempty" db:"gateway_invoice_id"`
	GatewayPaymentLink *string `json:"gateway_payment_link,omitempty" db:"gateway_payment_link"`
	GatewayTxID        *string `json:"gateway_tx_id,omitempty" db:"gateway_tx_id"`
	GatewayPaymentID   *string `json:"gateway_payment_id,omitempty" db:"gateway_payment_id"`
	GatewayResult      *string `json:"gateway_result,omitempty" db:"gateway_result"`
	GatewayTxStatus    *string `json:"gateway_tx_status,omitempty" db:"gateway_tx_status"`

	PaidAt    *time.Time `json:"paid_at,omitempty" db:"paid_at"`
	Notes     *string    `json:"notes,omitempty" db:"notes"`
	CreatedBy *int64     `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// PaymentDetail is a payment joined with the parties needed for access checks
// and notifications.
type PaymentDetail struct {
	Payment
	UnitID          int64   `json:"unit_id"`
	UnitNumber      string  `json:"unit_number"`
	BuildingID      int64   `json:"building_id"`
	BuildingName    string  `json:"building_name"`
	OwnerID         int64   `json:"owner_id"`
	TenantID        int64   `json:"tenant_id"`
	TenantEmail     string  `json:"tenant_email"`
	TenantFirstName string  `json:"tenant_first_name"`
	TenantLastName  string  `json:"tenant_last_name"`
	TenantPhone     *string `json:"tenant_phone,omitempty"`
}

// TenantName joins the tenant's first and last name.
func (d *PaymentDetail) TenantName() string {
	if d.TenantLastName == "" {
		return d.TenantFirstName
	}
	return d.TenantFirstName + " " + d.TenantLastName
}

// PaymentUpdate carries the optional fields of a manual payment edit.
type PaymentUpdate struct {
	Status        *PaymentStatus   `json:"status,omitempty"`
	PaymentMethod *PaymentMethod   `json:"payment_method,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	PaidAt        *time.Time       `json:"paid_at,omitempty"`
}

// IsEmpty reports whether no field is set.
func (u PaymentUpdate) IsEmpty() bool {
	return u.Status == nil && u.PaymentMethod == nil && u.Amount == nil && u.Notes == nil && u.PaidAt == nil
}

// PaymentFilter narrows payment listings. Zero values are ignored.
type PaymentFilter struct {
	TenancyID  int64
	BuildingID int64
	TenantID   int64
	OwnerID    int64
	Month      int
	Year       int
	Status     PaymentStatus
}

// GatewayOrderRef is what order creation leaves on a payment.
type GatewayOrderRef struct {
	OrderNo   string
	Hash      string
	InvoiceID string
	Link      string
}

// GatewayOutcome is the raw audit trail of one callback plus whether it
// confirms the payment.
type GatewayOutcome struct {
	TxID      string
	PaymentID string
	Result    string
	TxStatus  string
	Success   bool
}

// ReconcileOutcome describes what applying a callback did to the matched row.
type ReconcileOutcome struct {
	Payment        *PaymentDetail
	PreviousStatus PaymentStatus
	Transitioned   bool // moved into PAID by this callback
}

// TenantPaymentRow is one active tenancy of a building with its payment for
// a period, if any.
type TenantPaymentRow struct {
	TenancyID     int64            `json:"tenancy_id"`
	TenantID      int64            `json:"tenant_id"`
	TenantName    string           `json:"tenant_name"`
	UnitNumber    string           `json:"unit_number"`
	MonthlyRent   decimal.Decimal  `json:"monthly_rent"`
	PaymentID     *int64           `json:"payment_id,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	PaymentStatus string           `json:"payment_status"`
	PaidAt        *time.Time       `json:"paid_at,omitempty"`
}

// PaymentStatusNoRecord marks a tenancy with no payment row for the period.
const PaymentStatusNoRecord = "NO_RECORD"

type BuildingPaymentSummary struct {
	BuildingID    int64               `json:"building_id"`
	Month         int                 `json:"month"`
	Year          int                 `json:"year"`
	TotalTenants  int                 `json:"total_tenants"`
	TotalExpected decimal.Decimal     `json:"total_expected"`
	TotalPaid     decimal.Decimal     `json:"total_paid"`
	TotalPending  decimal.Decimal     `json:"total_pending"`
	TotalOverdue  decimal.Decimal     `json:"total_overdue"`
	PaidCount     int                 `json:"paid_count"`
	Tenants       []*TenantPaymentRow `json:"tenants"`
}
