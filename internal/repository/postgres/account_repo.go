package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, user_id, account_type_id, name, balance, currency, icon, color, description, is_active, created_at, updated_at`

// Create inserts an account row
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()

	balance, err := decimalToPgNumeric(account.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		insert into accounts (id, user_id, account_type_id, name, balance, currency, icon, color, description, is_active)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		returning `+accountColumns,
		uuid.New(), account.OwnerID, account.AccountTypeID, account.Name, balance,
		account.Currency, account.Icon, account.Color, account.Description, account.IsActive)

	created, err := scanAccount(row)
	if err != nil {
		return nil, storageErr(err)
	}
	return created, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(id uuid.UUID) (*domain.Account, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `select `+accountColumns+` from accounts where id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storageErr(err)
	}
	return account, nil
}

// ListForOwner returns the owner's accounts, optionally only active ones
func (r *AccountRepository) ListForOwner(ownerID uuid.UUID, activeOnly bool) ([]*domain.Account, error) {
	ctx := context.Background()

	query := `select ` + accountColumns + ` from accounts where user_id = $1`
	if activeOnly {
		query += ` and is_active = true`
	}
	query += ` order by name asc`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListByType returns the owner's accounts of one account type
func (r *AccountRepository) ListByType(ownerID, accountTypeID uuid.UUID) ([]*domain.Account, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		select `+accountColumns+`
		from accounts
		where user_id = $1 and account_type_id = $2
		order by name asc`, ownerID, accountTypeID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// Update persists metadata and the active flag. The balance and owner columns
// are deliberately absent from the statement.
func (r *AccountRepository) Update(account *domain.Account) error {
	ctx := context.Background()

	ct, err := r.pool.Exec(ctx, `
		update accounts
		set account_type_id = $1, name = $2, currency = $3, icon = $4, color = $5,
		    description = $6, is_active = $7, updated_at = now()
		where id = $8`,
		account.AccountTypeID, account.Name, account.Currency, account.Icon,
		account.Color, account.Description, account.IsActive, account.ID)
	if err != nil {
		return storageErr(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Delete removes an account row
func (r *AccountRepository) Delete(id uuid.UUID) error {
	ctx := context.Background()

	ct, err := r.pool.Exec(ctx, `delete from accounts where id = $1`, id)
	if err != nil {
		return storageErr(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// HasTransactions reports whether any transaction references the account
func (r *AccountRepository) HasTransactions(id uuid.UUID) (bool, error) {
	ctx := context.Background()

	var exists bool
	err := r.pool.QueryRow(ctx, `select exists(select 1 from transactions where account_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, storageErr(err)
	}
	return exists, nil
}

// MutateBalance applies the operation in a single statement so the database
// serializes concurrent mutations against the stored value.
func (r *AccountRepository) MutateBalance(id uuid.UUID, amount decimal.Decimal, op domain.BalanceOp) error {
	ctx := context.Background()

	value, err := decimalToPgNumeric(amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	var query string
	switch op {
	case domain.BalanceAdd:
		query = `update accounts set balance = balance + $1, updated_at = now() where id = $2`
	case domain.BalanceSubtract:
		query = `update accounts set balance = balance - $1, updated_at = now() where id = $2`
	case domain.BalanceSet:
		query = `update accounts set balance = $1, updated_at = now() where id = $2`
	default:
		return domain.ErrInvalidBalanceOp
	}

	ct, err := r.pool.Exec(ctx, query, value, id)
	if err != nil {
		return storageErr(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// SumBalances totals the owner's balances with an optional currency filter
func (r *AccountRepository) SumBalances(ownerID uuid.UUID, currency string) (decimal.Decimal, error) {
	ctx := context.Background()

	query := `select coalesce(sum(balance), 0) from accounts where user_id = $1`
	args := []any{ownerID}
	if currency != "" {
		query += ` and currency = $2`
		args = append(args, currency)
	}

	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, storageErr(err)
	}
	return pgNumericToDecimal(total), nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var balance pgtype.Numeric
	if err := row.Scan(&a.ID, &a.OwnerID, &a.AccountTypeID, &a.Name, &balance, &a.Currency,
		&a.Icon, &a.Color, &a.Description, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Balance = pgNumericToDecimal(balance)
	return &a, nil
}

func collectAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var out []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		out = append(out, account)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}
