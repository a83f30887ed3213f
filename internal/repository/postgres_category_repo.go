package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/kakeibo/internal/model"
)

// PostgresCategoryRepo はPostgreSQLを使用したカテゴリリポジトリ。
type PostgresCategoryRepo struct {
	db *sql.DB
}

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sql.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

const categoryColumns = `id, user_id, name, type, color, icon, created_at`

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	c := &model.Category{}
	var categoryType string
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &categoryType, &c.Color, &c.Icon, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Type = model.CategoryType(categoryType)
	return c, nil
}

// FindByID はユーザーが所有する指定IDのカテゴリを取得する。見つからない場合はnilを返す。
func (r *PostgresCategoryRepo) FindByID(ctx context.Context, id, userID string) (*model.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return c, nil
}

// ListByUserID はユーザーのカテゴリ一覧を区分、作成日時、名前の順で返す。
func (r *PostgresCategoryRepo) ListByUserID(ctx context.Context, userID string, categoryType model.CategoryType) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+`
		 FROM categories
		 WHERE user_id = $1 AND ($2 = '' OR type = $2)
		 ORDER BY type, created_at, name`,
		userID, string(categoryType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// Create はカテゴリを作成する。
func (r *PostgresCategoryRepo) Create(ctx context.Context, c *model.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, type, color, icon, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.UserID, c.Name, string(c.Type), c.Color, c.Icon, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", classifyError(err))
	}
	return nil
}

// Update はカテゴリの名前・色・アイコンを更新する。区分は変更しない。
func (r *PostgresCategoryRepo) Update(ctx context.Context, c *model.Category) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = $3, color = $4, icon = $5
		 WHERE id = $1 AND user_id = $2`,
		c.ID, c.UserID, c.Name, c.Color, c.Icon,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", classifyError(err))
	}
	return expectAffected(result, "category", c.ID)
}

// DeleteByIDAndUser は(id, user_id)が一致するカテゴリのみを削除する。
func (r *PostgresCategoryRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", classifyError(err))
	}
	return expectAffected(result, "category", id)
}

// SeedIfEmpty はユーザーのカテゴリが0件の場合に限りcategoriesを挿入する。
// ユーザー行をFOR UPDATEでロックしてから件数を数えるため、同一ユーザーの
// 初回ログインが同時に発生しても挿入は一度だけ行われる。
func (r *PostgresCategoryRepo) SeedIfEmpty(ctx context.Context, userID string, categories []*model.Category) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lockedID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&lockedID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock user: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM categories WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	inserted, err := insertCategories(ctx, tx, categories, true)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// ReplaceAll はユーザーの全カテゴリを削除してcategoriesを挿入する。
// 参照中のカテゴリがある場合はErrForeignKeyViolationを返し、何も変更しない。
func (r *PostgresCategoryRepo) ReplaceAll(ctx context.Context, userID string, categories []*model.Category) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete categories: %w", classifyError(err))
	}
	if _, err := insertCategories(ctx, tx, categories, false); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertCategories(ctx context.Context, tx *sql.Tx, categories []*model.Category, skipConflicts bool) (int, error) {
	query := `INSERT INTO categories (id, user_id, name, type, color, icon, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if skipConflicts {
		query += ` ON CONFLICT (user_id, type, name) DO NOTHING`
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare category insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range categories {
		result, err := stmt.ExecContext(ctx, c.ID, c.UserID, c.Name, string(c.Type), c.Color, c.Icon, c.CreatedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert category %q: %w", c.Name, classifyError(err))
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

// expectAffected は更新・削除が1行以上に作用したことを確認する。
func expectAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// compile-time interface check
var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
