package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
)

// PostgresExpenseRepo はPostgreSQLを使用した収入・支出記録リポジトリ。
type PostgresExpenseRepo struct {
	db *sql.DB
}

// NewPostgresExpenseRepo はPostgresExpenseRepoを生成する。
func NewPostgresExpenseRepo(db *sql.DB) *PostgresExpenseRepo {
	return &PostgresExpenseRepo{db: db}
}

const expenseColumns = `id, user_id, category_id, amount, type, memo, date, payment_method, created_at, updated_at`

func scanExpense(row interface{ Scan(...any) error }) (*model.Expense, error) {
	e := &model.Expense{}
	var entryType string
	err := row.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Amount, &entryType, &e.Memo, &e.Date,
		&e.PaymentMethod, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Type = model.CategoryType(entryType)
	return e, nil
}

// FindByID はユーザーが所有する指定IDの記録を取得する。見つからない場合はnilを返す。
func (r *PostgresExpenseRepo) FindByID(ctx context.Context, id, userID string) (*model.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find expense: %w", err)
	}
	return e, nil
}

// ListByUserID は期間[from, to)の記録を日付降順、作成日時降順で返す。
func (r *PostgresExpenseRepo) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*model.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+`
		 FROM expenses
		 WHERE user_id = $1
		   AND ($2::date IS NULL OR date >= $2::date)
		   AND ($3::date IS NULL OR date < $3::date)
		 ORDER BY date DESC, created_at DESC`,
		userID, dateParam(from), dateParam(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// Create は記録を作成する。
func (r *PostgresExpenseRepo) Create(ctx context.Context, e *model.Expense) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, category_id, amount, type, memo, date, payment_method, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.UserID, e.CategoryID, e.Amount, string(e.Type), e.Memo, dateParam(e.Date),
		e.PaymentMethod, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", classifyError(err))
	}
	return nil
}

// Update は記録を更新する。
func (r *PostgresExpenseRepo) Update(ctx context.Context, e *model.Expense) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET category_id = $3, amount = $4, type = $5, memo = $6, date = $7, payment_method = $8, updated_at = $9
		 WHERE id = $1 AND user_id = $2`,
		e.ID, e.UserID, e.CategoryID, e.Amount, string(e.Type), e.Memo, dateParam(e.Date),
		e.PaymentMethod, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", classifyError(err))
	}
	return expectAffected(result, "expense", e.ID)
}

// DeleteByIDAndUser は(id, user_id)が一致する記録を削除する。
func (r *PostgresExpenseRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectAffected(result, "expense", id)
}

// dateParam は日付をDATE列用の文字列に変換する。ゼロ値はNULLとして扱う。
func dateParam(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(model.DateLayout)
}

// compile-time interface check
var _ ExpenseRepository = (*PostgresExpenseRepo)(nil)
