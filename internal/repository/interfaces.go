// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// CreateWithCredential はユーザー、identity、パスワード資格情報を同一トランザクションで作成する。
	// メールアドレスが登録済みの場合はErrUniqueViolationを返す。
	CreateWithCredential(ctx context.Context, user *model.User, identity *model.Identity, credential *model.PasswordCredential) error

	// DeleteByID は指定IDのユーザーと全ての所有データを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は認証プロバイダー紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// CredentialRepository はパスワード資格情報の永続化インターフェース。
type CredentialRepository interface {
	// FindByUserID はユーザーの資格情報を取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.PasswordCredential, error)

	// UpdatePasswordHash はパスワードハッシュを更新する。
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// CategoryRepository はカテゴリデータの永続化インターフェース。
// 全ての操作はuser_idでスコープされる。
type CategoryRepository interface {
	// FindByID はユーザーが所有する指定IDのカテゴリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id, userID string) (*model.Category, error)

	// ListByUserID はユーザーのカテゴリ一覧を返す。categoryTypeが空の場合は全区分を返す。
	ListByUserID(ctx context.Context, userID string, categoryType model.CategoryType) ([]*model.Category, error)

	// Create はカテゴリを作成する。同名カテゴリが存在する場合はErrUniqueViolationを返す。
	Create(ctx context.Context, category *model.Category) error

	// Update はカテゴリの名前・色・アイコンを更新する。対象がなければErrNotFoundを返す。
	Update(ctx context.Context, category *model.Category) error

	// DeleteByIDAndUser は(id, user_id)が一致するカテゴリのみを削除する。
	// 対象がなければErrNotFound、収支記録から参照されていればErrForeignKeyViolationを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) error

	// SeedIfEmpty はユーザーのカテゴリが0件の場合に限りcategoriesを挿入し、挿入件数を返す。
	// ユーザー行をロックするため、同時に呼ばれても重複挿入されない。
	SeedIfEmpty(ctx context.Context, userID string, categories []*model.Category) (int, error)

	// ReplaceAll はユーザーの全カテゴリを削除してcategoriesを挿入する。
	// 1トランザクションで実行し、失敗時は何も変更しない。
	ReplaceAll(ctx context.Context, userID string, categories []*model.Category) error
}

// ExpenseRepository は収入・支出記録の永続化インターフェース。
type ExpenseRepository interface {
	// FindByID はユーザーが所有する指定IDの記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id, userID string) (*model.Expense, error)

	// ListByUserID は期間[from, to)の記録を日付降順で返す。ゼロ値は無制限を表す。
	ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*model.Expense, error)

	// Create は記録を作成する。カテゴリが同じユーザーの所有でなければErrForeignKeyViolationを返す。
	Create(ctx context.Context, expense *model.Expense) error

	// Update は記録を更新する。対象がなければErrNotFoundを返す。
	Update(ctx context.Context, expense *model.Expense) error

	// DeleteByIDAndUser は(id, user_id)が一致する記録を削除する。対象がなければErrNotFoundを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) error
}

// TransactionRepository は資産台帳（貯金・振替）記録の永続化インターフェース。
type TransactionRepository interface {
	// FindByID はユーザーが所有する指定IDの記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id, userID string) (*model.Transaction, error)

	// ListByUserID は期間[from, to)の記録を日付降順で返す。ゼロ値は無制限を表す。
	ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]*model.Transaction, error)

	// Create は記録を作成する。
	Create(ctx context.Context, transaction *model.Transaction) error

	// Update は記録を更新する。対象がなければErrNotFoundを返す。
	Update(ctx context.Context, transaction *model.Transaction) error

	// DeleteByIDAndUser は(id, user_id)が一致する記録を削除する。対象がなければErrNotFoundを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) error
}
