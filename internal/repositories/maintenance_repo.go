package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"propertyms/internal/common"
	"propertyms/internal/models"

	"github.com/jackc/pgx/v5"
)

type MaintenanceRepository interface {
	Create(ctx context.Context, req *models.MaintenanceRequest) error
	GetByID(ctx context.Context, id int64) (*models.MaintenanceDetail, error)
	List(ctx context.Context, filter models.MaintenanceFilter, limit, offset int) ([]*models.MaintenanceDetail, error)
	Update(ctx context.Context, id int64, upd models.MaintenanceUpdate) error
	Delete(ctx context.Context, id int64) error
	// ActiveUnitForTenant returns the unit of the tenant's oldest active
	// tenancy, or 0 when they have none.
	ActiveUnitForTenant(ctx context.Context, tenantID int64) (int64, error)
	HasActiveTenancy(ctx context.Context, tenantID, unitID int64) (bool, error)
}

const maintenanceDetailSelect = `
		SELECT m.id, m.tenant_id, m.unit_id, m.title, m.description, m.category, m.priority, m.status,
			m.resolution_notes, m.resolved_at, m.resolved_by, m.created_at, m.updated_at,
			u.unit_number, b.id, b.name, b.owner_id, usr.email, usr.first_name, usr.last_name
		FROM maintenance_requests m
		JOIN units u ON u.id = m.unit_id
		JOIN buildings b ON b.id = u.building_id
		JOIN users usr ON usr.id = m.tenant_id
`

type maintenanceRepo struct {
	db DB
}

func NewMaintenanceRepo(db DB) MaintenanceRepository {
	return &maintenanceRepo{db: db}
}

func (r *maintenanceRepo) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests (tenant_id, unit_id, title, description, category, priority, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, req.TenantID, req.UnitID, req.Title, req.Description, req.Category, req.Priority, req.Status).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create maintenance request: %w", err)
	}
	return nil
}

func (r *maintenanceRepo) GetByID(ctx context.Context, id int64) (*models.MaintenanceDetail, error) {
	detail, err := scanMaintenanceDetail(r.db.QueryRow(ctx, maintenanceDetailSelect+" WHERE m.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Maintenance request not found")
		}
		return nil, fmt.Errorf("get maintenance request: %w", err)
	}
	return detail, nil
}

func (r *maintenanceRepo) List(ctx context.Context, filter models.MaintenanceFilter, limit, offset int) ([]*models.MaintenanceDetail, error) {
	var where []string
	var args []any
	addCond := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.TenantID != 0 {
		addCond("m.tenant_id = $%d", filter.TenantID)
	}
	if filter.OwnerID != 0 {
		addCond("b.owner_id = $%d", filter.OwnerID)
	}
	if filter.UnitID != 0 {
		addCond("m.unit_id = $%d", filter.UnitID)
	}
	if filter.Status != "" {
		addCond("m.status = $%d", filter.Status)
	}
	if filter.Priority != "" {
		addCond("m.priority = $%d", filter.Priority)
	}
	if filter.Category != "" {
		addCond("m.category = $%d", filter.Category)
	}

	query := maintenanceDetailSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY m.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list maintenance requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.MaintenanceDetail
	for rows.Next() {
		detail, err := scanMaintenanceDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan maintenance request: %w", err)
		}
		requests = append(requests, detail)
	}
	return requests, rows.Err()
}

func (r *maintenanceRepo) Update(ctx context.Context, id int64, upd models.MaintenanceUpdate) error {
	var set setBuilder
	if upd.Status != nil {
		set.add("status", *upd.Status)
	}
	if upd.Priority != nil {
		set.add("priority", *upd.Priority)
	}
	if upd.ResolutionNotes != nil {
		set.add("resolution_notes", *upd.ResolutionNotes)
	}
	if upd.ResolvedBy != nil {
		set.add("resolved_by", *upd.ResolvedBy)
	}
	if upd.ResolvedAt != nil {
		set.add("resolved_at", *upd.ResolvedAt)
	}
	if set.empty() {
		return nil
	}

	clause, next := set.build()
	query := fmt.Sprintf("UPDATE maintenance_requests %s WHERE id = $%d", clause, next)
	tag, err := r.db.Exec(ctx, query, append(set.args, id)...)
	if err != nil {
		return fmt.Errorf("update maintenance request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("Maintenance request not found")
	}
	return nil
}

func (r *maintenanceRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM maintenance_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete maintenance request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("Maintenance request not found")
	}
	return nil
}

func (r *maintenanceRepo) ActiveUnitForTenant(ctx context.Context, tenantID int64) (int64, error) {
	var unitID int64
	err := r.db.QueryRow(ctx, `SELECT unit_id FROM tenancies WHERE tenant_id = $1 AND is_active ORDER BY start_date LIMIT 1`, tenantID).Scan(&unitID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("find active unit: %w", err)
	}
	return unitID, nil
}

func (r *maintenanceRepo) HasActiveTenancy(ctx context.Context, tenantID, unitID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tenancies WHERE tenant_id = $1 AND unit_id = $2 AND is_active)`, tenantID, unitID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active tenancy: %w", err)
	}
	return exists, nil
}

func scanMaintenanceDetail(row pgx.Row) (*models.MaintenanceDetail, error) {
	d := &models.MaintenanceDetail{}
	err := row.Scan(&d.ID, &d.TenantID, &d.UnitID, &d.Title, &d.Description, &d.Category, &d.Priority, &d.Status,
		&d.ResolutionNotes, &d.ResolvedAt, &d.ResolvedBy, &d.CreatedAt, &d.UpdatedAt,
		&d.UnitNumber, &d.BuildingID, &d.BuildingName, &d.OwnerID, &d.TenantEmail, &d.TenantFirstName, &d.TenantLastName)
	if err != nil {
		return nil, err
	}
	return d, nil
}
