package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta-app/moneta-backend/internal/domain"
)

// AccountTypeRepository implements domain.AccountTypeRepository using PostgreSQL
type AccountTypeRepository struct {
	pool *pgxpool.Pool
}

// NewAccountTypeRepository creates a new AccountTypeRepository
func NewAccountTypeRepository(pool *pgxpool.Pool) *AccountTypeRepository {
	return &AccountTypeRepository{pool: pool}
}

// Create inserts an account type row. An existing ID is kept so seeding stays
// idempotent.
func (r *AccountTypeRepository) Create(accountType *domain.AccountType) (*domain.AccountType, error) {
	ctx := context.Background()

	id := accountType.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		insert into account_types (id, name, icon, color)
		values ($1, $2, $3, $4)
		returning id, name, icon, color`,
		id, accountType.Name, accountType.Icon, accountType.Color)

	created, err := scanAccountType(row)
	if err != nil {
		return nil, storageErr(err)
	}
	return created, nil
}

// GetByID retrieves an account type by ID
func (r *AccountTypeRepository) GetByID(id uuid.UUID) (*domain.AccountType, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `select id, name, icon, color from account_types where id = $1`, id)
	accountType, err := scanAccountType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountTypeNotFound
		}
		return nil, storageErr(err)
	}
	return accountType, nil
}

// GetByName retrieves an account type by its unique name
func (r *AccountTypeRepository) GetByName(name string) (*domain.AccountType, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `select id, name, icon, color from account_types where name = $1`, name)
	accountType, err := scanAccountType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountTypeNotFound
		}
		return nil, storageErr(err)
	}
	return accountType, nil
}

// List returns all account types
func (r *AccountTypeRepository) List() ([]*domain.AccountType, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `select id, name, icon, color from account_types order by name asc`)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var out []*domain.AccountType
	for rows.Next() {
		accountType, err := scanAccountType(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		out = append(out, accountType)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

func scanAccountType(row pgx.Row) (*domain.AccountType, error) {
	var at domain.AccountType
	if err := row.Scan(&at.ID, &at.Name, &at.Icon, &at.Color); err != nil {
		return nil, err
	}
	return &at, nil
}
