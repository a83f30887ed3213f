// Package assetledger は収支記録（expenses）と資産記録（transactions）を
// 1つの台帳として扱うドメインロジックを提供する。
//
// 収入・支払いはexpensesへ、貯金・振替はtransactionsへ振り分けて保存し、
// 一覧と残高は両テーブルをマージして計算する。
package assetledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kakeibo/internal/expense"
	"github.com/hitoshi/kakeibo/internal/ledger"
	"github.com/hitoshi/kakeibo/internal/metrics"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
	"github.com/hitoshi/kakeibo/internal/security"
)

// MaxTextLength は口座名・支払い方法の最大文字数。
const MaxTextLength = 50

// ExpenseService は収入・支払いの保存を担うサービス。
type ExpenseService interface {
	Create(ctx context.Context, userID string, input expense.Input) (*model.Expense, error)
	Update(ctx context.Context, userID, id string, input expense.Input) (*model.Expense, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, from, to time.Time) ([]*model.Expense, error)
}

// Input は台帳記録作成・更新の入力値。
// Typeには英語の種別値または日本語ラベルを指定できる。
type Input struct {
	Type          string
	Amount        int64
	Date          string // YYYY-MM-DD
	CategoryID    string // 収入・支払いでは必須、貯金・振替では任意
	FromAccount   string
	ToAccount     string
	PaymentMethod string
	Note          string
}

// Service は台帳のサービス層。
type Service struct {
	expenses     ExpenseService
	transactions repository.TransactionRepository
	categories   expense.CategoryResolver
	sanitizer    security.TextSanitizer
	metrics      metrics.MetricsCollector
	now          func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	expenses ExpenseService,
	transactions repository.TransactionRepository,
	categories expense.CategoryResolver,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		expenses:     expenses,
		transactions: transactions,
		categories:   categories,
		sanitizer:    sanitizer,
		metrics:      collector,
		now:          time.Now,
	}
}

// CreateEntry は種別に応じたテーブルに記録を作成する。
func (s *Service) CreateEntry(ctx context.Context, userID string, input Input) (ledger.Entry, error) {
	if userID == "" {
		return ledger.Entry{}, model.NewUnauthorizedError()
	}
	entryType, err := ledger.ParseEntryType(input.Type)
	if err != nil {
		return ledger.Entry{}, model.NewInvalidEntryTypeError(input.Type)
	}

	if entryType.Source() == ledger.SourceExpenses {
		e, err := s.expenses.Create(ctx, userID, toExpenseInput(entryType, input))
		if err != nil {
			return ledger.Entry{}, err
		}
		return ledger.FromExpense(e), nil
	}

	tx, err := s.buildTransaction(ctx, userID, entryType, input)
	if err != nil {
		return ledger.Entry{}, err
	}
	now := s.now()
	tx.ID = uuid.NewString()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	err = s.transactions.Create(ctx, tx)
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		return ledger.Entry{}, model.NewCategoryNotFoundError(input.CategoryID)
	}
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("資産記録の保存に失敗しました: %w", err)
	}

	s.metrics.RecordEntryCreated(string(entryType))
	return ledger.FromTransaction(tx), nil
}

// UpdateEntry は記録を更新する。種別が保存先テーブルを決めるため、
// 収入・支払いと貯金・振替の間で種別を変更することはできない。
func (s *Service) UpdateEntry(ctx context.Context, userID, id string, input Input) (ledger.Entry, error) {
	if userID == "" {
		return ledger.Entry{}, model.NewUnauthorizedError()
	}
	entryType, err := ledger.ParseEntryType(input.Type)
	if err != nil {
		return ledger.Entry{}, model.NewInvalidEntryTypeError(input.Type)
	}

	if entryType.Source() == ledger.SourceExpenses {
		e, err := s.expenses.Update(ctx, userID, id, toExpenseInput(entryType, input))
		if err != nil {
			return ledger.Entry{}, err
		}
		return ledger.FromExpense(e), nil
	}

	normalized, err := uuid.Parse(id)
	if err != nil {
		return ledger.Entry{}, model.NewEntryNotFoundError(id)
	}
	existing, err := s.transactions.FindByID(ctx, normalized.String(), userID)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("資産記録の取得に失敗しました: %w", err)
	}
	if existing == nil {
		return ledger.Entry{}, model.NewEntryNotFoundError(id)
	}

	tx, err := s.buildTransaction(ctx, userID, entryType, input)
	if err != nil {
		return ledger.Entry{}, err
	}
	tx.ID = existing.ID
	tx.CreatedAt = existing.CreatedAt
	tx.UpdatedAt = s.now()

	err = s.transactions.Update(ctx, tx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ledger.Entry{}, model.NewEntryNotFoundError(id)
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return ledger.Entry{}, model.NewCategoryNotFoundError(input.CategoryID)
	case err != nil:
		return ledger.Entry{}, fmt.Errorf("資産記録の更新に失敗しました: %w", err)
	}
	return ledger.FromTransaction(tx), nil
}

// DeleteEntry はentryTypeが示すテーブルから記録を削除する。
func (s *Service) DeleteEntry(ctx context.Context, userID, id, rawType string) error {
	if userID == "" {
		return model.NewUnauthorizedError()
	}
	entryType, err := ledger.ParseEntryType(rawType)
	if err != nil {
		return model.NewInvalidEntryTypeError(rawType)
	}

	if entryType.Source() == ledger.SourceExpenses {
		return s.expenses.Delete(ctx, userID, id)
	}

	normalized, err := uuid.Parse(id)
	if err != nil {
		return model.NewEntryNotFoundError(id)
	}
	err = s.transactions.DeleteByIDAndUser(ctx, normalized.String(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewEntryNotFoundError(id)
	}
	if err != nil {
		return fmt.Errorf("資産記録の削除に失敗しました: %w", err)
	}
	return nil
}

// ListEntries は両テーブルの記録をマージして日付降順で返す。
// monthが空の場合は全期間を対象とする。
func (s *Service) ListEntries(ctx context.Context, userID, month string) ([]ledger.Entry, error) {
	var from, to time.Time
	if month != "" {
		var err error
		from, to, err = ledger.MonthRange(month)
		if err != nil {
			return nil, model.NewInvalidMonthError(month)
		}
	}

	expenses, err := s.expenses.List(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactions.ListByUserID(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("資産記録一覧の取得に失敗しました: %w", err)
	}
	return ledger.Merge(expenses, transactions), nil
}

// Balance は全期間の記録から残高サマリーを計算する。
func (s *Service) Balance(ctx context.Context, userID string) (ledger.Balance, error) {
	entries, err := s.ListEntries(ctx, userID, "")
	if err != nil {
		return ledger.Balance{}, err
	}
	balance, err := ledger.Reconcile(entries)
	if err != nil {
		return ledger.Balance{}, fmt.Errorf("残高の計算に失敗しました: %w", err)
	}
	return balance, nil
}

// PaymentMethods は支払い方法ごとの支払い合計を返す。
func (s *Service) PaymentMethods(ctx context.Context, userID, month string) ([]ledger.PaymentMethodTotal, error) {
	entries, err := s.ListEntries(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	return ledger.SummarizePaymentMethods(entries), nil
}

func toExpenseInput(entryType ledger.EntryType, input Input) expense.Input {
	direction := model.CategoryTypeExpense
	if entryType == ledger.EntryTypeIncome {
		direction = model.CategoryTypeIncome
	}
	return expense.Input{
		CategoryID:    input.CategoryID,
		Amount:        input.Amount,
		Type:          direction,
		Memo:          input.Note,
		Date:          input.Date,
		PaymentMethod: input.PaymentMethod,
	}
}

func (s *Service) buildTransaction(ctx context.Context, userID string, entryType ledger.EntryType, input Input) (*model.Transaction, error) {
	if input.Amount <= 0 {
		return nil, model.NewValidationError("金額は1円以上で入力してください")
	}
	date, err := time.Parse(model.DateLayout, strings.TrimSpace(input.Date))
	if err != nil {
		return nil, model.NewValidationError("日付はYYYY-MM-DD形式で入力してください")
	}

	tx := &model.Transaction{
		UserID:        userID,
		Type:          model.TransactionType(entryType),
		Amount:        input.Amount,
		Date:          date,
		FromAccount:   s.sanitizer.Sanitize(input.FromAccount),
		ToAccount:     s.sanitizer.Sanitize(input.ToAccount),
		PaymentMethod: s.sanitizer.Sanitize(input.PaymentMethod),
		Note:          s.sanitizer.Sanitize(input.Note),
	}
	for _, v := range []string{tx.FromAccount, tx.ToAccount, tx.PaymentMethod} {
		if security.ExceedsRunes(v, MaxTextLength) {
			return nil, model.NewValidationError(fmt.Sprintf("口座名・支払い方法は%d文字以内で入力してください", MaxTextLength))
		}
	}
	if security.ExceedsRunes(tx.Note, expense.MaxMemoLength) {
		return nil, model.NewValidationError(fmt.Sprintf("メモは%d文字以内で入力してください", expense.MaxMemoLength))
	}

	if strings.TrimSpace(input.CategoryID) != "" {
		c, err := s.categories.Resolve(ctx, userID, input.CategoryID)
		if err != nil {
			return nil, err
		}
		tx.CategoryID = c.ID
	}
	return tx, nil
}
