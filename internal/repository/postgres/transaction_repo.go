package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, user_id, category_id, account_id, amount, merchant_name, transaction_date, notes, status, created_at, updated_at`

// sortColumns whitelists the sortable columns; anything else never reaches
// the query string.
var sortColumns = map[domain.TransactionSortField]string{
	domain.SortByDate:      "transaction_date",
	domain.SortByAmount:    "amount",
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
}

// Create inserts a transaction row
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		insert into transactions (id, user_id, category_id, account_id, amount, merchant_name, transaction_date, notes, status)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning `+transactionColumns,
		uuid.New(), transaction.OwnerID, transaction.CategoryID, transaction.AccountID,
		amount, transaction.MerchantName, transaction.OccurredAt, transaction.Notes,
		string(transaction.Status))

	created, err := scanTransaction(row)
	if err != nil {
		return nil, storageErr(err)
	}
	return created, nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(id uuid.UUID) (*domain.Transaction, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `select `+transactionColumns+` from transactions where id = $1`, id)
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, storageErr(err)
	}
	return transaction, nil
}

// ListForOwner returns a filtered, sorted, paginated listing. Filters are
// expected to be normalized by the service (page, per-page, sort fallbacks).
func (r *TransactionRepository) ListForOwner(ownerID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	where := []string{"user_id = $1"}
	args := []any{ownerID}

	if len(filters.CategoryIDs) > 0 {
		args = append(args, filters.CategoryIDs)
		where = append(where, fmt.Sprintf("category_id = any($%d)", len(args)))
	}
	if filters.AccountID != nil {
		args = append(args, *filters.AccountID)
		where = append(where, fmt.Sprintf("account_id = $%d", len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+escapeLike(filters.Search)+"%")
		where = append(where, fmt.Sprintf(`merchant_name ilike $%d escape '\'`, len(args)))
	}
	if filters.From != nil {
		args = append(args, *filters.From)
		where = append(where, fmt.Sprintf("transaction_date >= $%d", len(args)))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		where = append(where, fmt.Sprintf("transaction_date <= $%d", len(args)))
	}

	whereClause := strings.Join(where, " and ")

	var total int64
	if err := r.pool.QueryRow(ctx, `select count(*) from transactions where `+whereClause, args...).Scan(&total); err != nil {
		return nil, storageErr(err)
	}

	column, ok := sortColumns[filters.SortBy]
	if !ok {
		column = "transaction_date"
	}
	direction := "desc"
	if filters.SortDir == domain.SortAsc {
		direction = "asc"
	}

	args = append(args, filters.PerPage, (filters.Page-1)*filters.PerPage)
	query := fmt.Sprintf(`select %s from transactions where %s order by %s %s, id %s limit $%d offset $%d`,
		transactionColumns, whereClause, column, direction, direction, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var items []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		items = append(items, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}

	lastPage := int(total) / filters.PerPage
	if int(total)%filters.PerPage > 0 || lastPage == 0 {
		lastPage++
	}

	return &domain.PaginatedTransactions{
		Items:    items,
		Page:     filters.Page,
		PerPage:  filters.PerPage,
		Total:    total,
		LastPage: lastPage,
	}, nil
}

// Update replaces the mutable transaction columns. The owner column never
// changes after creation.
func (r *TransactionRepository) Update(transaction *domain.Transaction) error {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	ct, err := r.pool.Exec(ctx, `
		update transactions
		set category_id = $1, account_id = $2, amount = $3, merchant_name = $4,
		    transaction_date = $5, notes = $6, status = $7, updated_at = now()
		where id = $8`,
		transaction.CategoryID, transaction.AccountID, amount, transaction.MerchantName,
		transaction.OccurredAt, transaction.Notes, string(transaction.Status), transaction.ID)
	if err != nil {
		return storageErr(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// Delete removes a transaction row
func (r *TransactionRepository) Delete(id uuid.UUID) error {
	ctx := context.Background()

	ct, err := r.pool.Exec(ctx, `delete from transactions where id = $1`, id)
	if err != nil {
		return storageErr(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SumByCategoryType totals amounts joined through the category's type,
// optionally bounded by [from, to]
func (r *TransactionRepository) SumByCategoryType(ownerID uuid.UUID, categoryType domain.CategoryType, from, to *time.Time) (decimal.Decimal, error) {
	ctx := context.Background()

	query := `
		select coalesce(sum(t.amount), 0)
		from transactions t
		join categories c on c.id = t.category_id
		where t.user_id = $1 and c.type = $2`
	args := []any{ownerID, string(categoryType)}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" and t.transaction_date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" and t.transaction_date <= $%d", len(args))
	}

	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, storageErr(err)
	}
	return pgNumericToDecimal(total), nil
}

// likeEscaper neutralizes LIKE metacharacters so a search term only ever
// matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amount pgtype.Numeric
	var status string
	if err := row.Scan(&t.ID, &t.OwnerID, &t.CategoryID, &t.AccountID, &amount, &t.MerchantName,
		&t.OccurredAt, &t.Notes, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Amount = pgNumericToDecimal(amount)
	t.Status = domain.TransactionStatus(status)
	return &t, nil
}
