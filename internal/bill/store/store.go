package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectBillColumns = `
	id, name, amount, category, due_date, recurring, status, paid_date, created_at, updated_at
`

// scanBill expects the column order of selectBillColumns.
func scanBill(s scanner) (*bill.Bill, error) {
	var b bill.Bill

	var recurring, status string

	var paidDate sql.NullTime

	if err := s.Scan(
		&b.ID, &b.Name, &b.Amount, &b.Category, &b.DueDate, &recurring, &status,
		&paidDate, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	b.Recurrence = bill.Recurrence(recurring)
	b.Status = bill.Status(status)
	b.DueDate = bill.DateOf(b.DueDate)

	if paidDate.Valid {
		paid := bill.DateOf(paidDate.Time)
		b.PaidDate = &paid
	}

	return &b, nil
}

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	if err := insertBill(ctx, s.db, b); err != nil {
		return fmt.Errorf("creating bill: %w", err)
	}

	return nil
}

// CreateBills inserts the whole batch in one transaction.
func (s *Store) CreateBills(ctx context.Context, bills []*bill.Bill) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, b := range bills {
		if err := insertBill(ctx, dbTx, b); err != nil {
			return fmt.Errorf("creating bill %q: %w", b.Name, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// insertBill lets the database assign the id when b.ID is nil.
func insertBill(ctx context.Context, db execer, b *bill.Bill) error {
	query := `
		INSERT INTO bills (id, name, amount, category, due_date, recurring, status, paid_date, created_at)
		VALUES (COALESCE($1, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	var id *uuid.UUID
	if b.ID != uuid.Nil {
		id = &b.ID
	}

	return db.QueryRowContext(ctx, query,
		id,
		b.Name,
		b.Amount,
		b.Category,
		b.DueDate,
		b.Recurrence,
		b.Status,
		b.PaidDate,
	).Scan(&b.ID, &b.CreatedAt)
}

func (s *Store) GetBill(ctx context.Context, id uuid.UUID) (*bill.Bill, error) {
	query := `SELECT ` + selectBillColumns + `
		FROM bills
		WHERE id = $1 AND deleted_at IS NULL`

	b, err := scanBill(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bill.ErrNotFound
		}

		return nil, fmt.Errorf("getting bill: %w", err)
	}

	return b, nil
}

func (s *Store) ListBills(ctx context.Context, filter bill.ListFilter) ([]*bill.Bill, error) {
	query := `SELECT ` + selectBillColumns + `
		FROM bills
		WHERE deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIdx)

		args = append(args, *filter.Category)
	}

	query += " ORDER BY due_date ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	defer rows.Close()

	var bills []*bill.Bill

	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bill: %w", err)
		}

		bills = append(bills, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bill rows: %w", err)
	}

	return bills, nil
}

func (s *Store) UpdateBill(ctx context.Context, b *bill.Bill) error {
	query := `
		UPDATE bills
		SET name = $1, amount = $2, category = $3, due_date = $4, recurring = $5, status = $6, updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		b.Name,
		b.Amount,
		b.Category,
		b.DueDate,
		b.Recurrence,
		b.Status,
		b.ID,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bill.ErrNotFound
		}

		return fmt.Errorf("updating bill: %w", err)
	}

	return nil
}

func (s *Store) DeleteBill(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE bills
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting bill: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting bill: %w", err)
	}

	if n == 0 {
		return bill.ErrNotFound
	}

	return nil
}

// PayBill locks the bill row for the duration of the transaction so a
// concurrent pay of the same instance sees it retired or already paid.
func (s *Store) PayBill(ctx context.Context, id uuid.UUID, paidDate time.Time) (*bill.Settlement, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `SELECT ` + selectBillColumns + `
		FROM bills
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`

	b, err := scanBill(dbTx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bill.ErrNotFound
		}

		return nil, fmt.Errorf("locking bill: %w", err)
	}

	settlement, err := bill.Settle(b, paidDate, uuid.New)
	if err != nil {
		return nil, err
	}

	if err := insertPayment(ctx, dbTx, settlement.Payment); err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}

	if settlement.Rolled() {
		retire := `UPDATE bills SET deleted_at = NOW() WHERE id = $1`
		if _, err := dbTx.ExecContext(ctx, retire, settlement.Retired.ID); err != nil {
			return nil, fmt.Errorf("retiring bill: %w", err)
		}

		if err := insertBill(ctx, dbTx, settlement.Successor); err != nil {
			return nil, fmt.Errorf("creating next bill: %w", err)
		}
	} else {
		markPaid := `
			UPDATE bills
			SET status = $1, paid_date = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING updated_at
		`
		if err := dbTx.QueryRowContext(ctx, markPaid,
			settlement.Paid.Status,
			settlement.Paid.PaidDate,
			settlement.Paid.ID,
		).Scan(&settlement.Paid.UpdatedAt); err != nil {
			return nil, fmt.Errorf("marking bill paid: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return settlement, nil
}

func insertPayment(ctx context.Context, db execer, p *bill.Payment) error {
	query := `
		INSERT INTO bill_payments (id, bill_id, bill_name, amount, category, paid_date, original_due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	return db.QueryRowContext(ctx, query,
		p.ID,
		p.BillID,
		p.BillName,
		p.Amount,
		p.Category,
		p.PaidDate,
		p.OriginalDueDate,
	).Scan(&p.CreatedAt)
}

func (s *Store) ListPayments(ctx context.Context) ([]*bill.Payment, error) {
	query := `
		SELECT id, bill_id, bill_name, amount, category, paid_date, original_due_date, created_at
		FROM bill_payments
		ORDER BY paid_date DESC, created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*bill.Payment

	for rows.Next() {
		var p bill.Payment
		if err := rows.Scan(
			&p.ID, &p.BillID, &p.BillName, &p.Amount, &p.Category,
			&p.PaidDate, &p.OriginalDueDate, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		p.PaidDate = bill.DateOf(p.PaidDate)
		p.OriginalDueDate = bill.DateOf(p.OriginalDueDate)
		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

// RefreshStatuses applies the upcoming/overdue rule to every unpaid bill in one statement.
func (s *Store) RefreshStatuses(ctx context.Context, today time.Time) (int, error) {
	query := `
		UPDATE bills
		SET status = CASE WHEN due_date < $1 THEN 'overdue' ELSE 'upcoming' END,
			updated_at = NOW()
		WHERE deleted_at IS NULL
			AND status <> 'paid'
			AND status <> CASE WHEN due_date < $1 THEN 'overdue' ELSE 'upcoming' END
	`

	res, err := s.db.ExecContext(ctx, query, bill.DateOf(today))
	if err != nil {
		return 0, fmt.Errorf("refreshing statuses: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("refreshing statuses: %w", err)
	}

	return int(n), nil
}
