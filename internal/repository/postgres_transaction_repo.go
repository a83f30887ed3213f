package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
)

// PostgresTransactionRepo はPostgreSQLを使用した資産台帳リポジトリ。
type PostgresTransactionRepo struct {
	db *sql.DB
}

// NewPostgresTransactionRepo はPostgresTransactionRepoを生成する。
func NewPostgresTransactionRepo(db *sql.DB) *PostgresTransactionRepo {
	return &PostgresTransactionRepo{db: db}
}

const transactionColumns = `id, user_id, type, amount, date, from_account, to_account, payment_method, note, category_id, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	t := &model.Transaction{}
	var txType string
	var categoryID sql.NullString
	err := row.Scan(&t.ID, &t.UserID, &txType, &t.Amount, &t.Date, &t.FromAccount, &t.ToAccount,
		&t.PaymentMethod, &t.Note, &categoryID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Type = model.TransactionType(txType)
	t.CategoryID = categoryID.String
	return t, nil
}

// FindByID はユーザーが所有する指定IDの記録を取得する。見つからない場合はnilを返す。
func (r *PostgresTransactionRepo) FindByID(ctx context.Context, id, userID string) (*model.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return t, nil
}

// ListByUserID は期間[from, to)の記録を日付降順、作成日時降順で返す。
func (r *PostgresTransactionRepo) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE user_id = $1
		   AND ($2::date IS NULL OR date >= $2::date)
		   AND ($3::date IS NULL OR date < $3::date)
		 ORDER BY date DESC, created_at DESC`,
		userID, dateParam(from), dateParam(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// Create は記録を作成する。
func (r *PostgresTransactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, amount, date, from_account, to_account, payment_method, note, category_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.UserID, string(t.Type), t.Amount, dateParam(t.Date), t.FromAccount, t.ToAccount,
		t.PaymentMethod, t.Note, nullableString(t.CategoryID), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", classifyError(err))
	}
	return nil
}

// Update は記録を更新する。
func (r *PostgresTransactionRepo) Update(ctx context.Context, t *model.Transaction) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = $3, amount = $4, date = $5, from_account = $6, to_account = $7,
		     payment_method = $8, note = $9, category_id = $10, updated_at = $11
		 WHERE id = $1 AND user_id = $2`,
		t.ID, t.UserID, string(t.Type), t.Amount, dateParam(t.Date), t.FromAccount, t.ToAccount,
		t.PaymentMethod, t.Note, nullableString(t.CategoryID), t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", classifyError(err))
	}
	return expectAffected(result, "transaction", t.ID)
}

// DeleteByIDAndUser は(id, user_id)が一致する記録を削除する。
func (r *PostgresTransactionRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return expectAffected(result, "transaction", id)
}

// compile-time interface check
var _ TransactionRepository = (*PostgresTransactionRepo)(nil)
