package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tenancy binds one tenant to one unit for a date range.
type Tenancy struct {
	ID            int64           `json:"id" db:"id"`
	UnitID        int64           `json:"unit_id" db:"unit_id"`
	TenantID      int64           `json:"tenant_id" db:"tenant_id"`
	StartDate     time.Time       `json:"start_date" db:"start_date"`
	EndDate       *time.Time      `json:"end_date,omitempty" db:"end_date"`
	MonthlyRent   decimal.Decimal `json:"monthly_rent" db:"monthly_rent"`
	DepositAmount decimal.Decimal `json:"deposit_amount" db:"deposit_amount"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// TenancyDetail is a tenancy joined with its unit, building and tenant.
type TenancyDetail struct {
	Tenancy
	UnitNumber      string `json:"unit_number"`
	BuildingID      int64  `json:"building_id"`
	BuildingName    string `json:"building_name"`
	OwnerID         int64  `json:"owner_id"`
	TenantEmail     string `json:"tenant_email"`
	TenantFirstName string `json:"tenant_first_name"`
	TenantLastName  string `json:"tenant_last_name"`
}

// TenancyUpdate carries the optional fields of a tenancy edit.
type TenancyUpdate struct {
	StartDate     *time.Time       `json:"start_date,omitempty"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
	MonthlyRent   *decimal.Decimal `json:"monthly_rent,omitempty"`
	DepositAmount *decimal.Decimal `json:"deposit_amount,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

// IsEmpty reports whether no field is set.
func (u TenancyUpdate) IsEmpty() bool {
	return u.StartDate == nil && u.EndDate == nil && u.MonthlyRent == nil && u.DepositAmount == nil && u.IsActive == nil
}

// TenancyFilter narrows tenancy listings. Zero values are ignored.
type TenancyFilter struct {
	BuildingID int64
	UnitID     int64
	TenantID   int64
	OwnerID    int64
	ActiveOnly bool
}
