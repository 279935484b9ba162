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

// TenancyRepository persists tenancies. Every method that changes whether a
// tenancy is active updates its unit's status in the same transaction.
type TenancyRepository interface {
	Create(ctx context.Context, tenancy *models.Tenancy) error
	GetByID(ctx context.Context, id int64) (*models.TenancyDetail, error)
	List(ctx context.Context, filter models.TenancyFilter, limit, offset int) ([]*models.TenancyDetail, error)
	Update(ctx context.Context, id int64, upd models.TenancyUpdate) error
	End(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

const activeTenancyIndex = "tenancies_one_active_per_unit"

const tenancyDetailSelect = `
		SELECT t.id, t.unit_id, t.tenant_id, t.start_date, t.end_date, t.monthly_rent, t.deposit_amount, t.is_active, t.created_at, t.updated_at,
			u.unit_number, b.id, b.name, b.owner_id, usr.email, usr.first_name, usr.last_name
		FROM tenancies t
		JOIN units u ON u.id = t.unit_id
		JOIN buildings b ON b.id = u.building_id
		JOIN users usr ON usr.id = t.tenant_id
`

type tenancyRepo struct {
	db DB
}

func NewTenancyRepo(db DB) TenancyRepository {
	return &tenancyRepo{db: db}
}

// Create locks the unit row, re-checks availability and inserts the tenancy
// as active. The partial unique index on (unit_id) WHERE is_active backs the
// check against concurrent creators.
func (r *tenancyRepo) Create(ctx context.Context, tenancy *models.Tenancy) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var status models.UnitStatus
		err := tx.QueryRow(ctx, `SELECT status FROM units WHERE id = $1 FOR UPDATE`, tenancy.UnitID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return common.NotFound("Unit not found")
			}
			return fmt.Errorf("lock unit: %w", err)
		}
		if status != models.UnitStatusAvailable {
			return common.ErrUnitNotAvailable
		}

		var exists bool
		err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tenancies WHERE unit_id = $1 AND is_active)`, tenancy.UnitID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check active tenancy: %w", err)
		}
		if exists {
			return common.ErrTenancyAlreadyActive
		}

		query := `
			INSERT INTO tenancies (unit_id, tenant_id, start_date, end_date, monthly_rent, deposit_amount, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		err = tx.QueryRow(ctx, query, tenancy.UnitID, tenancy.TenantID, tenancy.StartDate, tenancy.EndDate, tenancy.MonthlyRent, tenancy.DepositAmount).
			Scan(&tenancy.ID, &tenancy.CreatedAt, &tenancy.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, activeTenancyIndex) {
				return common.ErrTenancyAlreadyActive
			}
			return fmt.Errorf("insert tenancy: %w", err)
		}
		tenancy.IsActive = true

		return setUnitStatus(ctx, tx, tenancy.UnitID, models.UnitStatusRented)
	})
}

func (r *tenancyRepo) GetByID(ctx context.Context, id int64) (*models.TenancyDetail, error) {
	detail, err := scanTenancyDetail(r.db.QueryRow(ctx, tenancyDetailSelect+" WHERE t.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Tenancy not found")
		}
		return nil, fmt.Errorf("get tenancy: %w", err)
	}
	return detail, nil
}

func (r *tenancyRepo) List(ctx context.Context, filter models.TenancyFilter, limit, offset int) ([]*models.TenancyDetail, error) {
	var where []string
	var args []any
	addCond := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.BuildingID != 0 {
		addCond("b.id = $%d", filter.BuildingID)
	}
	if filter.UnitID != 0 {
		addCond("t.unit_id = $%d", filter.UnitID)
	}
	if filter.TenantID != 0 {
		addCond("t.tenant_id = $%d", filter.TenantID)
	}
	if filter.OwnerID != 0 {
		addCond("b.owner_id = $%d", filter.OwnerID)
	}
	if filter.ActiveOnly {
		where = append(where, "t.is_active")
	}

	query := tenancyDetailSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tenancies: %w", err)
	}
	defer rows.Close()

	var tenancies []*models.TenancyDetail
	for rows.Next() {
		detail, err := scanTenancyDetail(rows)
		if err != nil {
			return nil, err
		}
		tenancies = append(tenancies, detail)
	}
	return tenancies, rows.Err()
}

// Update applies the set fields. The unit status follows only a real change
// of IsActive; the old flag is read under a row lock.
func (r *tenancyRepo) Update(ctx context.Context, id int64, upd models.TenancyUpdate) error {
	var set setBuilder
	if upd.StartDate != nil {
		set.add("start_date", *upd.StartDate)
	}
	if upd.EndDate != nil {
		set.add("end_date", *upd.EndDate)
	}
	if upd.MonthlyRent != nil {
		set.add("monthly_rent", *upd.MonthlyRent)
	}
	if upd.DepositAmount != nil {
		set.add("deposit_amount", *upd.DepositAmount)
	}
	if upd.IsActive != nil {
		set.add("is_active", *upd.IsActive)
	}
	if set.empty() {
		return nil
	}

	clause, next := set.build()
	query := fmt.Sprintf("UPDATE tenancies %s WHERE id = $%d", clause, next)

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var unitID int64
		var wasActive bool
		err := tx.QueryRow(ctx, `SELECT unit_id, is_active FROM tenancies WHERE id = $1 FOR UPDATE`, id).Scan(&unitID, &wasActive)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return common.NotFound("Tenancy not found")
			}
			return fmt.Errorf("lock tenancy: %w", err)
		}

		if _, err := tx.Exec(ctx, query, append(set.args, id)...); err != nil {
			if isUniqueViolation(err, activeTenancyIndex) {
				return common.ErrTenancyAlreadyActive
			}
			return fmt.Errorf("update tenancy: %w", err)
		}

		if upd.IsActive == nil || *upd.IsActive == wasActive {
			return nil
		}
		status := models.UnitStatusAvailable
		if *upd.IsActive {
			status = models.UnitStatusRented
		}
		return setUnitStatus(ctx, tx, unitID, status)
	})
}

// End deactivates an active tenancy and releases its unit.
func (r *tenancyRepo) End(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var unitID int64
		err := tx.QueryRow(ctx, `UPDATE tenancies SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active RETURNING unit_id`, id).Scan(&unitID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return common.ErrTenancyAlreadyEnded
			}
			return fmt.Errorf("end tenancy: %w", err)
		}
		return setUnitStatus(ctx, tx, unitID, models.UnitStatusAvailable)
	})
}

// Delete removes the tenancy, releasing the unit first if it was active.
func (r *tenancyRepo) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var unitID int64
		var active bool
		err := tx.QueryRow(ctx, `SELECT unit_id, is_active FROM tenancies WHERE id = $1 FOR UPDATE`, id).Scan(&unitID, &active)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return common.NotFound("Tenancy not found")
			}
			return fmt.Errorf("lock tenancy: %w", err)
		}
		if active {
			if err := setUnitStatus(ctx, tx, unitID, models.UnitStatusAvailable); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `DELETE FROM tenancies WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete tenancy: %w", err)
		}
		return nil
	})
}

func setUnitStatus(ctx context.Context, tx pgx.Tx, unitID int64, status models.UnitStatus) error {
	if _, err := tx.Exec(ctx, `UPDATE units SET status = $1, updated_at = NOW() WHERE id = $2`, status, unitID); err != nil {
		return fmt.Errorf("set unit status: %w", err)
	}
	return nil
}

func scanTenancyDetail(row pgx.Row) (*models.TenancyDetail, error) {
	d := &models.TenancyDetail{}
	err := row.Scan(&d.ID, &d.UnitID, &d.TenantID, &d.StartDate, &d.EndDate, &d.MonthlyRent, &d.DepositAmount, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
		&d.UnitNumber, &d.BuildingID, &d.BuildingName, &d.OwnerID, &d.TenantEmail, &d.TenantFirstName, &d.TenantLastName)
	if err != nil {
		return nil, err
	}
	return d, nil
}
