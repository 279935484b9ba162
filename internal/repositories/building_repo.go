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

type BuildingRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Building, error)
	List(ctx context.Context, filter models.BuildingFilter, limit, offset int) ([]*models.Building, error)
	Create(ctx context.Context, building *models.Building) error
	Update(ctx context.Context, id int64, upd models.BuildingUpdate) error
	Delete(ctx context.Context, id int64) error
	HasUnits(ctx context.Context, id int64) (bool, error)
}

const buildingSelect = `
		SELECT b.id, b.name, b.address, b.city, b.postal_code, b.country, b.owner_id,
			(SELECT COUNT(*) FROM units u WHERE u.building_id = b.id), b.created_at, b.updated_at
		FROM buildings b
`

type buildingRepo struct {
	db DB
}

func NewBuildingRepo(db DB) BuildingRepository {
	return &buildingRepo{db: db}
}

func (r *buildingRepo) GetByID(ctx context.Context, id int64) (*models.Building, error) {
	building, err := scanBuilding(r.db.QueryRow(ctx, buildingSelect+" WHERE b.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Building not found")
		}
		return nil, fmt.Errorf("get building: %w", err)
	}
	return building, nil
}

func (r *buildingRepo) List(ctx context.Context, filter models.BuildingFilter, limit, offset int) ([]*models.Building, error) {
	var where []string
	var args []any
	if filter.OwnerID != 0 {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("b.owner_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(b.name ILIKE $%[1]d OR b.address ILIKE $%[1]d OR b.city ILIKE $%[1]d)", len(args)))
	}

	query := buildingSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	defer rows.Close()

	var buildings []*models.Building
	for rows.Next() {
		building, err := scanBuilding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan building: %w", err)
		}
		buildings = append(buildings, building)
	}
	return buildings, rows.Err()
}

func (r *buildingRepo) Create(ctx context.Context, building *models.Building) error {
	query := `
		INSERT INTO buildings (name, address, city, postal_code, country, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, building.Name, building.Address, building.City, building.PostalCode, building.Country, building.OwnerID).
		Scan(&building.ID, &building.CreatedAt, &building.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create building: %w", err)
	}
	return nil
}

func (r *buildingRepo) Update(ctx context.Context, id int64, upd models.BuildingUpdate) error {
	var set setBuilder
	if upd.Name != nil {
		set.add("name", *upd.Name)
	}
	if upd.Address != nil {
		set.add("address", *upd.Address)
	}
	if upd.City != nil {
		set.add("city", *upd.City)
	}
	if upd.PostalCode != nil {
		set.add("postal_code", *upd.PostalCode)
	}
	if upd.Country != nil {
		set.add("country", *upd.Country)
	}
	if upd.OwnerID != nil {
		set.add("owner_id", *upd.OwnerID)
	}
	if set.empty() {
		return nil
	}

	clause, next := set.build()
	query := fmt.Sprintf("UPDATE buildings %s WHERE id = $%d", clause, next)
	tag, err := r.db.Exec(ctx, query, append(set.args, id)...)
	if err != nil {
		return fmt.Errorf("update building: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("Building not found")
	}
	return nil
}

func (r *buildingRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete building: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("Building not found")
	}
	return nil
}

func (r *buildingRepo) HasUnits(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM units WHERE building_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check building units: %w", err)
	}
	return exists, nil
}

func scanBuilding(row pgx.Row) (*models.Building, error) {
	b := &models.Building{}
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.City, &b.PostalCode, &b.Country, &b.OwnerID, &b.TotalUnits, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}
