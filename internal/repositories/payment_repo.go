package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propertyms/internal/common"
	"propertyms/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	GetByID(ctx context.Context, id int64) (*models.PaymentDetail, error)
	List(ctx context.Context, filter models.PaymentFilter, limit, offset int) ([]*models.PaymentDetail, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*models.PaymentDetail, error)
	MarkOverdue(ctx context.Context, year, month int) (int64, error)
	GenerateForPeriod(ctx context.Context, month, year int, createdBy *int64) ([]int64, error)
	Update(ctx context.Context, id int64, upd models.PaymentUpdate) error
	SetGatewayOrder(ctx context.Context, id int64, ref models.GatewayOrderRef) error
	ApplyGatewayResult(ctx context.Context, hash string, outcome models.GatewayOutcome, now time.Time) (*models.ReconcileOutcome, error)
	Delete(ctx context.Context, id int64) error
	BuildingPeriodRows(ctx context.Context, buildingID int64, month, year int) ([]*models.TenantPaymentRow, error)
}

const paymentDetailSelect = `
		SELECT p.id, p.tenancy_id, p.month, p.year, p.amount, p.status, p.payment_method,
			p.gateway_order_no, p.gateway_hash, p.gateway_invoice_id, p.gateway_payment_link, p.gateway_tx_id, p.gateway_payment_id, p.gateway_result, p.gateway_tx_status,
			p.paid_at, p.notes, p.created_by, p.created_at, p.updated_at,
			u.id, u.unit_number, b.id, b.name, b.owner_id, t.tenant_id, usr.email, usr.first_name, usr.last_name, usr.phone
		FROM payments p
		JOIN tenancies t ON t.id = p.tenancy_id
		JOIN units u ON u.id = t.unit_id
		JOIN buildings b ON b.id = u.building_id
		JOIN users usr ON usr.id = t.tenant_id
`

type paymentRepo struct {
	db DB
}

func NewPaymentRepo(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) GetByID(ctx context.Context, id int64) (*models.PaymentDetail, error) {
	return getPaymentDetail(r.db.QueryRow(ctx, paymentDetailSelect+" WHERE p.id = $1", id))
}

func getPaymentDetail(row pgx.Row) (*models.PaymentDetail, error) {
	detail, err := scanPaymentDetail(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Payment not found")
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return detail, nil
}

func (r *paymentRepo) List(ctx context.Context, filter models.PaymentFilter, limit, offset int) ([]*models.PaymentDetail, error) {
	var where []string
	var args []any
	addCond := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.TenancyID != 0 {
		addCond("p.tenancy_id = $%d", filter.TenancyID)
	}
	if filter.BuildingID != 0 {
		addCond("b.id = $%d", filter.BuildingID)
	}
	if filter.TenantID != 0 {
		addCond("t.tenant_id = $%d", filter.TenantID)
	}
	if filter.OwnerID != 0 {
		addCond("b.owner_id = $%d", filter.OwnerID)
	}
	if filter.Month != 0 {
		addCond("p.month = $%d", filter.Month)
	}
	if filter.Year != 0 {
		addCond("p.year = $%d", filter.Year)
	}
	if filter.Status != "" {
		addCond("p.status = $%d", filter.Status)
	}

	query := paymentDetailSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY p.year DESC, p.month DESC, p.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return r.queryDetails(ctx, query, args...)
}

func (r *paymentRepo) ListByIDs(ctx context.Context, ids []int64) ([]*models.PaymentDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryDetails(ctx, paymentDetailSelect+" WHERE p.id = ANY($1) ORDER BY p.id", ids)
}

func (r *paymentRepo) queryDetails(ctx context.Context, query string, args ...any) ([]*models.PaymentDetail, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.PaymentDetail
	for rows.Next() {
		detail, err := scanPaymentDetail(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, detail)
	}
	return payments, rows.Err()
}

// MarkOverdue flips PENDING payments of months before (year, month) to
// OVERDUE. No other status is touched.
func (r *paymentRepo) MarkOverdue(ctx context.Context, year, month int) (int64, error) {
	query := `
		UPDATE payments SET status = 'OVERDUE', updated_at = NOW()
		WHERE status = 'PENDING' AND (year < $1 OR (year = $1 AND month < $2))
	`
	tag, err := r.db.Exec(ctx, query, year, month)
	if err != nil {
		return 0, fmt.Errorf("mark overdue payments: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GenerateForPeriod inserts one PENDING payment per tenancy that is active
// and overlaps the month. Rows that already exist are skipped by the
// (tenancy_id, month, year) constraint; the ids of new rows are returned.
func (r *paymentRepo) GenerateForPeriod(ctx context.Context, month, year int, createdBy *int64) ([]int64, error) {
	firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstDay.AddDate(0, 1, -1)

	query := `
		INSERT INTO payments (tenancy_id, month, year, amount, status, created_by, created_at, updated_at)
		SELECT t.id, $1, $2, t.monthly_rent, 'PENDING', $5, NOW(), NOW()
		FROM tenancies t
		WHERE t.is_active AND t.start_date <= $3 AND (t.end_date IS NULL OR t.end_date >= $4)
		ON CONFLICT (tenancy_id, month, year) DO NOTHING
		RETURNING id
	`
	rows, err := r.db.Query(ctx, query, month, year, lastDay, firstDay, createdBy)
	if err != nil {
		return nil, fmt.Errorf("generate payments: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *paymentRepo) Update(ctx context.Context, id int64, upd models.PaymentUpdate) error {
	var set setBuilder
	if upd.Status != nil {
		set.add("status", *upd.Status)
	}
	if upd.PaymentMethod != nil {
		set.add("payment_method", *upd.PaymentMethod)
	}
	if upd.Amount != nil {
		set.add("amount", *upd.Amount)
	}
	if upd.Notes != nil {
		set.add("notes", *upd.Notes)
	}
	if upd.PaidAt != nil {
		set.add("paid_at", *upd.PaidAt)
	}
	if set.empty() {
		return nil
	}

	clause, next := set.build()
	query := fmt.Sprintf("UPDATE payments %s WHERE id = $%d", clause, next)
	tag, err := r.db.Exec(ctx, query, append(set.args, id)...)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("Payment not found")
	}
	return nil
}

func (r *paymentRepo) SetGatewayOrder(ctx context.Context, id int64, ref models.GatewayOrderRef) error {
	query := `
		UPDATE payments
		SET gateway_order_no = $1, gateway_hash = $2, gateway_invoice_id = $3, gateway_payment_link = $4, payment_method = $5, updated_at = NOW()
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query, ref.OrderNo, common.StringPtr(ref.Hash), common.StringPtr(ref.InvoiceID), ref.Link, models.PaymentMethodTahseeel, id)
	if err != nil {
		if isUniqueViolation(err, "payments_gateway_hash_key") {
			return common.Conflict("Gateway reference is already assigned to another payment")
		}
		return fmt.Errorf("store gateway order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("Payment not found")
	}
	return nil
}

// ApplyGatewayResult locks the payment matching hash, records the raw
// gateway fields and moves it to PAID when the outcome is a success and it
// is not already paid. A PAID payment is never moved out of PAID.
func (r *paymentRepo) ApplyGatewayResult(ctx context.Context, hash string, outcome models.GatewayOutcome, now time.Time) (*models.ReconcileOutcome, error) {
	result := &models.ReconcileOutcome{}
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var id int64
		var status models.PaymentStatus
		err := tx.QueryRow(ctx, `SELECT id, status FROM payments WHERE gateway_hash = $1 FOR UPDATE`, hash).Scan(&id, &status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return common.NotFound("Payment not found for callback")
			}
			return fmt.Errorf("lock payment: %w", err)
		}
		result.PreviousStatus = status

		newStatus := status
		var paidAt *time.Time
		if outcome.Success && status != models.PaymentStatusPaid {
			newStatus = models.PaymentStatusPaid
			paidAt = &now
			result.Transitioned = true
		}

		query := `
			UPDATE payments
			SET gateway_tx_id = COALESCE($1, gateway_tx_id), gateway_payment_id = COALESCE($2, gateway_payment_id),
				gateway_result = COALESCE($3, gateway_result), gateway_tx_status = COALESCE($4, gateway_tx_status),
				status = $5, paid_at = COALESCE($6, paid_at), updated_at = NOW()
			WHERE id = $7
		`
		_, err = tx.Exec(ctx, query, common.StringPtr(outcome.TxID), common.StringPtr(outcome.PaymentID),
			common.StringPtr(outcome.Result), common.StringPtr(outcome.TxStatus), newStatus, paidAt, id)
		if err != nil {
			return fmt.Errorf("apply gateway result: %w", err)
		}

		result.Payment, err = getPaymentDetail(tx.QueryRow(ctx, paymentDetailSelect+" WHERE p.id = $1", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *paymentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("Payment not found")
	}
	return nil
}

// BuildingPeriodRows lists the building's active tenancies with their payment
// for the period. Tenancies without a payment row get PaymentStatusNoRecord.
func (r *paymentRepo) BuildingPeriodRows(ctx context.Context, buildingID int64, month, year int) ([]*models.TenantPaymentRow, error) {
	query := `
		SELECT t.id, t.tenant_id, usr.first_name, usr.last_name, u.unit_number, t.monthly_rent,
			p.id, p.amount, p.status, p.paid_at
		FROM tenancies t
		JOIN units u ON u.id = t.unit_id
		JOIN users usr ON usr.id = t.tenant_id
		LEFT JOIN payments p ON p.tenancy_id = t.id AND p.month = $2 AND p.year = $3
		WHERE u.building_id = $1 AND t.is_active
		ORDER BY u.unit_number
	`
	rows, err := r.db.Query(ctx, query, buildingID, month, year)
	if err != nil {
		return nil, fmt.Errorf("building payment rows: %w", err)
	}
	defer rows.Close()

	var result []*models.TenantPaymentRow
	for rows.Next() {
		row := &models.TenantPaymentRow{}
		var firstName, lastName string
		var amount decimal.NullDecimal
		var status *string
		if err := rows.Scan(&row.TenancyID, &row.TenantID, &firstName, &lastName, &row.UnitNumber, &row.MonthlyRent,
			&row.PaymentID, &amount, &status, &row.PaidAt); err != nil {
			return nil, err
		}
		row.TenantName = strings.TrimSpace(firstName + " " + lastName)
		if amount.Valid {
			row.Amount = &amount.Decimal
		}
		row.PaymentStatus = models.PaymentStatusNoRecord
		if status != nil {
			row.PaymentStatus = *status
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func scanPaymentDetail(row pgx.Row) (*models.PaymentDetail, error) {
	d := &models.PaymentDetail{}
	err := row.Scan(&d.ID, &d.TenancyID, &d.Month, &d.Year, &d.Amount, &d.Status, &d.PaymentMethod,
		&d.GatewayOrderNo, &d.GatewayHash, &d.GatewayInvoiceID, &d.GatewayPaymentLink, &d.GatewayTxID, &d.GatewayPaymentID, &d.GatewayResult, &d.GatewayTxStatus,
		&d.PaidAt, &d.Notes, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
		&d.UnitID, &d.UnitNumber, &d.BuildingID, &d.BuildingName, &d.OwnerID, &d.TenantID, &d.TenantEmail, &d.TenantFirstName, &d.TenantLastName, &d.TenantPhone)
	if err != nil {
		return nil, err
	}
	return d, nil
}
