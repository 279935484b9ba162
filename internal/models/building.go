package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Building struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Address    *string   `json:"address,omitempty" db:"address"`
	City       *string   `json:"city,omitempty" db:"city"`
	PostalCode *string   `json:"postal_code,omitempty" db:"postal_code"`
	Country    *string   `json:"country,omitempty" db:"country"`
	OwnerID    int64     `json:"owner_id" db:"owner_id"`
	TotalUnits int       `json:"total_units" db:"total_units"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// BuildingFilter narrows building listings. Zero values mean no filter.
type BuildingFilter struct {
	OwnerID int64
	Search  string
}

// BuildingUpdate carries the optional fields of a building edit.
type BuildingUpdate struct {
	Name       *string `json:"name,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    *string `json:"country,omitempty"`
	OwnerID    *int64  `json:"owner_id,omitempty"`
}

func (u BuildingUpdate) IsEmpty() bool {
	return u.Name == nil && u.Address == nil && u.City == nil && u.PostalCode == nil && u.Country == nil && u.OwnerID == nil
}

// UnitStatus mirrors whether a unit currently has an active tenancy.
type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "AVAILABLE"
	UnitStatusRented    UnitStatus = "RENTED"
)

type UnitType string

const (
	UnitTypeApartment UnitType = "APARTMENT"
	UnitTypeStudio    UnitType = "STUDIO"
	UnitTypeVilla     UnitType = "VILLA"
	UnitTypeOffice    UnitType = "OFFICE"
	UnitTypeShop      UnitType = "SHOP"
)

func (t UnitType) IsValid() bool {
	switch t {
	case UnitTypeApartment, UnitTypeStudio, UnitTypeVilla, UnitTypeOffice, UnitTypeShop:
		return true
	}
	return false
}

type Unit struct {
	ID         int64            `json:"id" db:"id"`
	BuildingID int64            `json:"building_id" db:"building_id"`
	UnitNumber string           `json:"unit_number" db:"unit_number"`
	Floor      *int             `json:"floor,omitempty" db:"floor"`
	Bedrooms   *int             `json:"bedrooms,omitempty" db:"bedrooms"`
	Bathrooms  *decimal.Decimal `json:"bathrooms,omitempty" db:"bathrooms"`
	AreaSqft   *decimal.Decimal `json:"area_sqft,omitempty" db:"area_sqft"`
	Type       *UnitType        `json:"type,omitempty" db:"type"`
	RentAmount *decimal.Decimal `json:"rent_amount,omitempty" db:"rent_amount"`
	Status     UnitStatus       `json:"status" db:"status"`
	OwnerID    int64            `json:"owner_id" db:"owner_id"` // owner of the building
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}

// UnitFilter narrows unit listings. Zero values mean no filter.
type UnitFilter struct {
	BuildingID int64
	OwnerID    int64
	Status     UnitStatus
}

// UnitUpdate carries the optional fields of a unit edit.
type UnitUpdate struct {
	UnitNumber *string          `json:"unit_number,omitempty"`
	Floor      *int             `json:"floor,omitempty"`
	Bedrooms   *int             `json:"bedrooms,omitempty"`
	Bathrooms  *decimal.Decimal `json:"bathrooms,omitempty"`
	AreaSqft   *decimal.Decimal `json:"area_sqft,omitempty"`
	Type       *UnitType        `json:"type,omitempty"`
	RentAmount *decimal.Decimal `json:"rent_amount,omitempty"`
	Status     *UnitStatus      `json:"status,omitempty"`
}

// IsEmpty reports whether no field is set.
func (u UnitUpdate) IsEmpty() bool {
	return u.UnitNumber == nil && u.Floor == nil && u.Bedrooms == nil && u.Bathrooms == nil &&
		u.AreaSqft == nil && u.Type == nil && u.RentAmount == nil && u.Status == nil
}
