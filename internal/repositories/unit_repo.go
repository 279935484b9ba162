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

type UnitRepository interface {
	Create(ctx context.Context, unit *models.Unit) error
	GetByID(ctx context.Context, id int64) (*models.Unit, error)
	List(ctx context.Context, filter models.UnitFilter, limit, offset int) ([]*models.Unit, error)
	Update(ctx context.Context, id int64, upd models.UnitUpdate) error
	Delete(ctx context.Context, id int64) error
	HasActiveTenancy(ctx context.Context, id int64) (bool, error)
}

const unitNumberConstraint = "units_building_id_unit_number_key"

const unitSelect = `
		SELECT u.id, u.building_id, u.unit_number, u.floor, u.bedrooms, u.bathrooms, u.area_sqft, u.type,
			u.rent_amount, u.status, b.owner_id, u.created_at, u.updated_at
		FROM units u
		JOIN buildings b ON b.id = u.building_id
`

var errDuplicateUnitNumber = common.Conflict("Unit number already exists in this building")

type unitRepo struct {
	db DB
}

func NewUnitRepo(db DB) UnitRepository {
	return &unitRepo{db: db}
}

// Create inserts an AVAILABLE unit.
func (r *unitRepo) Create(ctx context.Context, unit *models.Unit) error {
	query := `
		INSERT INTO units (building_id, unit_number, floor, bedrooms, bathrooms, area_sqft, type, rent_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	unit.Status = models.UnitStatusAvailable
	err := r.db.QueryRow(ctx, query, unit.BuildingID, unit.UnitNumber, unit.Floor, unit.Bedrooms, unit.Bathrooms, unit.AreaSqft, unit.Type, unit.RentAmount, unit.Status).
		Scan(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, unitNumberConstraint) {
			return errDuplicateUnitNumber
		}
		return fmt.Errorf("create unit: %w", err)
	}
	return nil
}

func (r *unitRepo) GetByID(ctx context.Context, id int64) (*models.Unit, error) {
	unit, err := scanUnit(r.db.QueryRow(ctx, unitSelect+" WHERE u.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Unit not found")
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return unit, nil
}

func (r *unitRepo) List(ctx context.Context, filter models.UnitFilter, limit, offset int) ([]*models.Unit, error) {
	var where []string
	var args []any
	addCond := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.BuildingID != 0 {
		addCond("u.building_id = $%d", filter.BuildingID)
	}
	if filter.OwnerID != 0 {
		addCond("b.owner_id = $%d", filter.OwnerID)
	}
	if filter.Status != "" {
		addCond("u.status = $%d", filter.Status)
	}

	query := unitSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY u.building_id, u.unit_number LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []*models.Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (r *unitRepo) Update(ctx context.Context, id int64, upd models.UnitUpdate) error {
	var set setBuilder
	if upd.UnitNumber != nil {
		set.add("unit_number", *upd.UnitNumber)
	}
	if upd.Floor != nil {
		set.add("floor", *upd.Floor)
	}
	if upd.Bedrooms != nil {
		set.add("bedrooms", *upd.Bedrooms)
	}
	if upd.Bathrooms != nil {
		set.add("bathrooms", *upd.Bathrooms)
	}
	if upd.AreaSqft != nil {
		set.add("area_sqft", *upd.AreaSqft)
	}
	if upd.Type != nil {
		set.add("type", *upd.Type)
	}
	if upd.RentAmount != nil {
		set.add("rent_amount", *upd.RentAmount)
	}
	if upd.Status != nil {
		set.add("status", *upd.Status)
	}
	if set.empty() {
		return nil
	}

	clause, next := set.build()
	query := fmt.Sprintf("UPDATE units %s WHERE id = $%d", clause, next)
	tag, err := r.db.Exec(ctx, query, append(set.args, id)...)
	if err != nil {
		if isUniqueViolation(err, unitNumberConstraint) {
			return errDuplicateUnitNumber
		}
		return fmt.Errorf("update unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("Unit not found")
	}
	return nil
}

func (r *unitRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("Unit not found")
	}
	return nil
}

func (r *unitRepo) HasActiveTenancy(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tenancies WHERE unit_id = $1 AND is_active)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active tenancy: %w", err)
	}
	return exists, nil
}

func scanUnit(row pgx.Row) (*models.Unit, error) {
	u := &models.Unit{}
	err := row.Scan(&u.ID, &u.BuildingID, &u.UnitNumber, &u.Floor, &u.Bedrooms, &u.Bathrooms, &u.AreaSqft, &u.Type,
		&u.RentAmount, &u.Status, &u.OwnerID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
