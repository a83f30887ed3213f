// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// Service はユーザー管理のサービス層。
// 退会処理とデータのバックアップ出力を提供する。
type Service struct {
	userRepo        repository.UserRepository
	categoryRepo    repository.CategoryRepository
	expenseRepo     repository.ExpenseRepository
	transactionRepo repository.TransactionRepository
	now             func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	expenseRepo repository.ExpenseRepository,
	transactionRepo repository.TransactionRepository,
) *Service {
	return &Service{
		userRepo:        userRepo,
		categoryRepo:    categoryRepo,
		expenseRepo:     expenseRepo,
		transactionRepo: transactionRepo,
		now:             time.Now,
	}
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: transactions → expenses → categories → sessions → user（+ CASCADE: identities, credentials）
// 全ての削除は1トランザクションで行われる。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
		slog.Bool("guest", user.IsGuest),
	)

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewUserNotFoundError()
		}
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)
	return nil
}

// Export はユーザーの全データをバックアップ形式で返す。
func (s *Service) Export(ctx context.Context, userID string) (*Backup, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	categories, err := s.categoryRepo.ListByUserID(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	expenses, err := s.expenseRepo.ListByUserID(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("収支記録の取得に失敗しました: %w", err)
	}
	transactions, err := s.transactionRepo.ListByUserID(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("資産台帳の取得に失敗しました: %w", err)
	}

	return newBackup(s.now(), categories, expenses, transactions), nil
}
