// Package category はカテゴリ管理とデフォルトカテゴリ作成のドメインロジックを提供する。
package category

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kakeibo/internal/metrics"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
	"github.com/hitoshi/kakeibo/internal/security"
)

const (
	// MaxNameLength はカテゴリ名の最大文字数。
	MaxNameLength = 50
	// DefaultColor は色未指定時に使う色。
	DefaultColor = "#9E9E9E"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Input はカテゴリ作成・更新の入力値。
type Input struct {
	Name  string
	Type  model.CategoryType
	Color string
	Icon  string
}

// Service はカテゴリ管理のサービス層。
type Service struct {
	repo      repository.CategoryRepository
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.CategoryRepository, sanitizer security.TextSanitizer, collector metrics.MetricsCollector) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   collector,
		now:       time.Now,
	}
}

// SeedDefaults はユーザーがカテゴリを1件も持たない場合にデフォルトカテゴリを作成し、
// 挿入件数を返す。既にカテゴリがあれば何もしない。
func (s *Service) SeedDefaults(ctx context.Context, userID string) (int, error) {
	inserted, err := s.repo.SeedIfEmpty(ctx, userID, DefaultCategories(userID, s.now()))
	if errors.Is(err, repository.ErrNotFound) {
		return 0, model.NewUserNotFoundError()
	}
	if err != nil {
		return 0, fmt.Errorf("デフォルトカテゴリの作成に失敗しました: %w", err)
	}
	if inserted > 0 {
		s.metrics.RecordCategoriesSeeded(inserted)
	}
	return inserted, nil
}

// ResetToDefaults はユーザーのカテゴリを全て削除してデフォルトカテゴリに置き換える。
// 収支記録から参照されているカテゴリがある場合は何も変更せずエラーを返す。
func (s *Service) ResetToDefaults(ctx context.Context, userID string) ([]*model.Category, error) {
	defaults := DefaultCategories(userID, s.now())
	err := s.repo.ReplaceAll(ctx, userID, defaults)
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		return nil, model.NewCategoryInUseError()
	}
	if err != nil {
		return nil, fmt.Errorf("カテゴリの初期化に失敗しました: %w", err)
	}
	s.metrics.RecordCategoriesSeeded(len(defaults))
	return defaults, nil
}

// List はユーザーのカテゴリ一覧を返す。categoryTypeが空の場合は全区分を返す。
func (s *Service) List(ctx context.Context, userID string, categoryType model.CategoryType) ([]*model.Category, error) {
	if categoryType != "" && !categoryType.Valid() {
		return nil, model.NewValidationError("カテゴリ区分はincomeまたはexpenseを指定してください")
	}
	categories, err := s.repo.ListByUserID(ctx, userID, categoryType)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	return categories, nil
}

// Resolve はカテゴリIDを正規化し、ユーザーが所有するカテゴリを返す。
// 形式不正または見つからない場合はCATEGORY_NOT_FOUNDを返す。
func (s *Service) Resolve(ctx context.Context, userID, rawID string) (*model.Category, error) {
	id, err := NormalizeID(rawID)
	if err != nil {
		return nil, model.NewCategoryNotFoundError(rawID)
	}
	c, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if c == nil {
		return nil, model.NewCategoryNotFoundError(rawID)
	}
	return c, nil
}

// Create はカテゴリを作成する。
func (s *Service) Create(ctx context.Context, userID string, input Input) (*model.Category, error) {
	input, err := s.validate(input, true)
	if err != nil {
		return nil, err
	}

	c := &model.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      input.Name,
		Type:      input.Type,
		Color:     input.Color,
		Icon:      input.Icon,
		CreatedAt: s.now(),
	}
	err = s.repo.Create(ctx, c)
	if errors.Is(err, repository.ErrUniqueViolation) {
		return nil, model.NewDuplicateCategoryError(input.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("カテゴリの作成に失敗しました: %w", err)
	}
	return c, nil
}

// Update はカテゴリの名前・色・アイコンを更新する。区分は変更できない。
func (s *Service) Update(ctx context.Context, userID, rawID string, input Input) (*model.Category, error) {
	c, err := s.Resolve(ctx, userID, rawID)
	if err != nil {
		return nil, err
	}

	input, err = s.validate(input, false)
	if err != nil {
		return nil, err
	}
	c.Name = input.Name
	c.Color = input.Color
	c.Icon = input.Icon

	err = s.repo.Update(ctx, c)
	switch {
	case errors.Is(err, repository.ErrUniqueViolation):
		return nil, model.NewDuplicateCategoryError(input.Name)
	case errors.Is(err, repository.ErrNotFound):
		return nil, model.NewCategoryNotFoundError(rawID)
	case err != nil:
		return nil, fmt.Errorf("カテゴリの更新に失敗しました: %w", err)
	}
	return c, nil
}

// Delete は(id, user_id)が一致するカテゴリのみを削除する。
// 他ユーザーのカテゴリは存在しないものとして扱う。
func (s *Service) Delete(ctx context.Context, userID, rawID string) error {
	id, err := NormalizeID(rawID)
	if err != nil {
		return model.NewCategoryNotFoundError(rawID)
	}

	err = s.repo.DeleteByIDAndUser(ctx, id, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.NewCategoryNotFoundError(rawID)
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return model.NewCategoryInUseError()
	case err != nil:
		return fmt.Errorf("カテゴリの削除に失敗しました: %w", err)
	}
	return nil
}

func (s *Service) validate(input Input, requireType bool) (Input, error) {
	input.Name = s.sanitizer.Sanitize(input.Name)
	input.Icon = strings.TrimSpace(input.Icon)
	input.Color = strings.TrimSpace(input.Color)

	if input.Name == "" {
		return input, model.NewValidationError("カテゴリ名を入力してください")
	}
	if security.ExceedsRunes(input.Name, MaxNameLength) {
		return input, model.NewValidationError(fmt.Sprintf("カテゴリ名は%d文字以内で入力してください", MaxNameLength))
	}
	if requireType && !input.Type.Valid() {
		return input, model.NewValidationError("カテゴリ区分はincomeまたはexpenseを指定してください")
	}
	if input.Color == "" {
		input.Color = DefaultColor
	}
	if !colorPattern.MatchString(input.Color) {
		return input, model.NewValidationError("色は#RRGGBB形式で指定してください")
	}
	input.Color = strings.ToUpper(input.Color)
	return input, nil
}
