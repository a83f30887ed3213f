package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound は更新・削除対象の行が存在しないことを表す。
	ErrNotFound = errors.New("record not found")
	// ErrUniqueViolation は一意制約違反を表す。
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrForeignKeyViolation は外部キー制約違反を表す。
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
)

// PostgreSQLのSQLSTATE
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// classifyError はpq.Errorを制約違反の番兵エラーに変換する。
// 該当しない場合は元のエラーをそのまま返す。
func classifyError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pqErr.Constraint)
	case pqForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pqErr.Constraint)
	}
	return err
}

// nullableString は空文字列をNULLとして扱う。
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
