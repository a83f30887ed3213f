// Package expense は収入・支出記録のドメインロジックを提供する。
//
// 記録はユーザーが所有するカテゴリに紐付けて保存する。カテゴリIDは正規化してから
// 解決し、カテゴリの区分と記録の収支区分が一致しない場合は保存しない。
package expense

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kakeibo/internal/ledger"
	"github.com/hitoshi/kakeibo/internal/metrics"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
	"github.com/hitoshi/kakeibo/internal/security"
)

const (
	// MaxMemoLength はメモの最大文字数。
	MaxMemoLength = 200
	// MaxPaymentMethodLength は支払い方法の最大文字数。
	MaxPaymentMethodLength = 50
)

// CategoryResolver はユーザーが所有するカテゴリを解決する。
type CategoryResolver interface {
	Resolve(ctx context.Context, userID, rawID string) (*model.Category, error)
}

// Input は記録作成・更新の入力値。
type Input struct {
	CategoryID    string
	Amount        int64
	Type          model.CategoryType
	Memo          string
	Date          string // YYYY-MM-DD
	PaymentMethod string
}

// Service は収入・支出記録のサービス層。
type Service struct {
	repo       repository.ExpenseRepository
	categories CategoryResolver
	sanitizer  security.TextSanitizer
	metrics    metrics.MetricsCollector
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.ExpenseRepository,
	categories CategoryResolver,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		repo:       repo,
		categories: categories,
		sanitizer:  sanitizer,
		metrics:    collector,
		now:        time.Now,
	}
}

// Create は記録を1件作成する。
// 検証、カテゴリ解決、保存のいずれかで失敗した場合は何も保存せずにエラーを返す。
func (s *Service) Create(ctx context.Context, userID string, input Input) (*model.Expense, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	e, err := s.build(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	now := s.now()
	e.ID = uuid.NewString()
	e.CreatedAt = now
	e.UpdatedAt = now

	err = s.repo.Create(ctx, e)
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		// 解決後に削除された場合
		return nil, model.NewCategoryNotFoundError(input.CategoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("記録の保存に失敗しました: %w", err)
	}

	s.metrics.RecordEntryCreated(string(ledger.FromExpense(e).Type))
	return e, nil
}

// Update は記録を更新する。
func (s *Service) Update(ctx context.Context, userID, id string, input Input) (*model.Expense, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	existing, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	e, err := s.build(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = s.now()

	err = s.repo.Update(ctx, e)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, model.NewEntryNotFoundError(id)
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return nil, model.NewCategoryNotFoundError(input.CategoryID)
	case err != nil:
		return nil, fmt.Errorf("記録の更新に失敗しました: %w", err)
	}
	return e, nil
}

// Delete は(id, user_id)が一致する記録を削除する。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return model.NewUnauthorizedError()
	}
	normalized, err := uuid.Parse(id)
	if err != nil {
		return model.NewEntryNotFoundError(id)
	}

	err = s.repo.DeleteByIDAndUser(ctx, normalized.String(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewEntryNotFoundError(id)
	}
	if err != nil {
		return fmt.Errorf("記録の削除に失敗しました: %w", err)
	}
	return nil
}

// List は期間[from, to)の記録を日付降順で返す。ゼロ値は無制限を表す。
func (s *Service) List(ctx context.Context, userID string, from, to time.Time) ([]*model.Expense, error) {
	expenses, err := s.repo.ListByUserID(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("記録一覧の取得に失敗しました: %w", err)
	}
	if expenses == nil {
		expenses = []*model.Expense{}
	}
	return expenses, nil
}

// ListByMonth はYYYY-MM形式で指定した月の記録を返す。
func (s *Service) ListByMonth(ctx context.Context, userID, month string) ([]*model.Expense, error) {
	from, to, err := ledger.MonthRange(month)
	if err != nil {
		return nil, model.NewInvalidMonthError(month)
	}
	return s.List(ctx, userID, from, to)
}

func (s *Service) find(ctx context.Context, userID, id string) (*model.Expense, error) {
	normalized, err := uuid.Parse(id)
	if err != nil {
		return nil, model.NewEntryNotFoundError(id)
	}
	e, err := s.repo.FindByID(ctx, normalized.String(), userID)
	if err != nil {
		return nil, fmt.Errorf("記録の取得に失敗しました: %w", err)
	}
	if e == nil {
		return nil, model.NewEntryNotFoundError(id)
	}
	return e, nil
}

// build は入力を検証し、カテゴリを解決した記録を組み立てる。
// 入力検証はカテゴリ解決より先に行う。
func (s *Service) build(ctx context.Context, userID string, input Input) (*model.Expense, error) {
	if input.Amount <= 0 {
		return nil, model.NewValidationError("金額は1円以上で入力してください")
	}
	if !input.Type.Valid() {
		return nil, model.NewValidationError("収支区分はincomeまたはexpenseを指定してください")
	}
	date, err := time.Parse(model.DateLayout, strings.TrimSpace(input.Date))
	if err != nil {
		return nil, model.NewValidationError("日付はYYYY-MM-DD形式で入力してください")
	}
	memo := s.sanitizer.Sanitize(input.Memo)
	if security.ExceedsRunes(memo, MaxMemoLength) {
		return nil, model.NewValidationError(fmt.Sprintf("メモは%d文字以内で入力してください", MaxMemoLength))
	}
	paymentMethod := s.sanitizer.Sanitize(input.PaymentMethod)
	if security.ExceedsRunes(paymentMethod, MaxPaymentMethodLength) {
		return nil, model.NewValidationError(fmt.Sprintf("支払い方法は%d文字以内で入力してください", MaxPaymentMethodLength))
	}

	c, err := s.categories.Resolve(ctx, userID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if c.Type != input.Type {
		return nil, model.NewCategoryTypeMismatchError(c.Type, input.Type)
	}

	return &model.Expense{
		UserID:        userID,
		CategoryID:    c.ID,
		Amount:        input.Amount,
		Type:          input.Type,
		Memo:          memo,
		Date:          date,
		PaymentMethod: paymentMethod,
	}, nil
}
