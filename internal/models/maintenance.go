package models

import "time"

type MaintenanceCategory string

const (
	MaintenanceCategoryPlumbing   MaintenanceCategory = "PLUMBING"
	MaintenanceCategoryElectrical MaintenanceCategory = "ELECTRICAL"
	MaintenanceCategoryHVAC       MaintenanceCategory = "HVAC"
	MaintenanceCategoryAppliance  MaintenanceCategory = "APPLIANCE"
	MaintenanceCategoryStructural MaintenanceCategory = "STRUCTURAL"
	MaintenanceCategoryOther      MaintenanceCategory = "OTHER"
)

func (c MaintenanceCategory) IsValid() bool {
	switch c {
	case MaintenanceCategoryPlumbing, MaintenanceCategoryElectrical, MaintenanceCategoryHVAC,
		MaintenanceCategoryAppliance, MaintenanceCategoryStructural, MaintenanceCategoryOther:
		return true
	}
	return false
}

type MaintenancePriority string

const (
	MaintenancePriorityLow    MaintenancePriority = "LOW"
	MaintenancePriorityMedium MaintenancePriority = "MEDIUM"
	MaintenancePriorityHigh   MaintenancePriority = "HIGH"
	MaintenancePriorityUrgent MaintenancePriority = "URGENT"
)

func (p MaintenancePriority) IsValid() bool {
	switch p {
	case MaintenancePriorityLow, MaintenancePriorityMedium, MaintenancePriorityHigh, MaintenancePriorityUrgent:
		return true
	}
	return false
}

type MaintenanceStatus string

const (
	MaintenanceStatusPending    MaintenanceStatus = "PENDING"
	MaintenanceStatusInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceStatusCompleted  MaintenanceStatus = "COMPLETED"
	MaintenanceStatusCancelled  MaintenanceStatus = "CANCELLED"
)

func (s MaintenanceStatus) IsValid() bool {
	switch s {
	case MaintenanceStatusPending, MaintenanceStatusInProgress, MaintenanceStatusCompleted, MaintenanceStatusCancelled:
		return true
	}
	return false
}

// MaintenanceRequest is a repair ticket raised by a tenant for a unit they rent.
type MaintenanceRequest struct {
	ID              int64               `json:"id" db:"id"`
	TenantID        int64               `json:"tenant_id" db:"tenant_id"`
	UnitID          int64               `json:"unit_id" db:"unit_id"`
	Title           string              `json:"title" db:"title"`
	Description     string              `json:"description" db:"description"`
	Category        MaintenanceCategory `json:"category" db:"category"`
	Priority        MaintenancePriority `json:"priority" db:"priority"`
	Status          MaintenanceStatus   `json:"status" db:"status"`
	ResolutionNotes *string             `json:"resolution_notes,omitempty" db:"resolution_notes"`
	ResolvedAt      *time.Time          `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy      *int64              `json:"resolved_by,omitempty" db:"resolved_by"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
}

// MaintenanceDetail joins the unit, building and tenant a request refers to.
type MaintenanceDetail struct {
	MaintenanceRequest
	UnitNumber      string `json:"unit_number"`
	BuildingID      int64  `json:"building_id"`
	BuildingName    string `json:"building_name"`
	OwnerID         int64  `json:"owner_id"`
	TenantEmail     string `json:"tenant_email"`
	TenantFirstName string `json:"tenant_first_name"`
	TenantLastName  string `json:"tenant_last_name"`
}

func (d *MaintenanceDetail) TenantName() string {
	if d.TenantLastName == "" {
		return d.TenantFirstName
	}
	return d.TenantFirstName + " " + d.TenantLastName
}

type MaintenanceFilter struct {
	TenantID int64
	OwnerID  int64
	UnitID   int64
	Status   MaintenanceStatus
	Priority MaintenancePriority
	Category MaintenanceCategory
}

// MaintenanceUpdate carries the fields staff (or the tenant, to cancel) may
// change. ResolvedBy and ResolvedAt are filled in by the service.
type MaintenanceUpdate struct {
	Status          *MaintenanceStatus   `json:"status,omitempty"`
	Priority        *MaintenancePriority `json:"priority,omitempty"`
	ResolutionNotes *string              `json:"resolution_notes,omitempty"`
	ResolvedBy      *int64               `json:"-"`
	ResolvedAt      *time.Time           `json:"-"`
}

func (u MaintenanceUpdate) IsEmpty() bool {
	return u.Status == nil && u.Priority == nil && u.ResolutionNotes == nil
}
