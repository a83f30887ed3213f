// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, ledger, category, contact, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeValidation           = "VALIDATION_FAILED"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken           = "EMAIL_TAKEN"
	ErrCodePasswordMismatch     = "PASSWORD_MISMATCH"
	ErrCodeInvalidResetToken    = "INVALID_RESET_TOKEN"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeCategoryNotFound     = "CATEGORY_NOT_FOUND"
	ErrCodeCategoryTypeMismatch = "CATEGORY_TYPE_MISMATCH"
	ErrCodeCategoryInUse        = "CATEGORY_IN_USE"
	ErrCodeDuplicateCategory    = "DUPLICATE_CATEGORY"
	ErrCodeEntryNotFound        = "ENTRY_NOT_FOUND"
	ErrCodeInvalidEntryType     = "INVALID_ENTRY_TYPE"
	ErrCodeInvalidMonth         = "INVALID_MONTH"
	ErrCodeMailFailed           = "MAIL_FAILED"
	ErrCodeProviderDisabled     = "PROVIDER_DISABLED"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewValidationError は入力値の検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidCredentialsError はメールアドレスまたはパスワードの不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewEmailTakenError は登録済みメールアドレスでのサインアップエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "ログイン画面からログインするか、パスワードを再設定してください。",
	}
}

// NewPasswordMismatchError は確認用パスワードの不一致エラーを生成する。
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordMismatch,
		Message:  "パスワードと確認用パスワードが一致しません。",
		Category: "validation",
		Action:   "同じパスワードを2回入力してください。",
	}
}

// NewInvalidResetTokenError はパスワード再設定トークンの検証エラーを生成する。
func NewInvalidResetTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidResetToken,
		Message:  "パスワード再設定リンクが無効か、有効期限が切れています。",
		Category: "auth",
		Action:   "もう一度パスワード再設定をリクエストしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewCategoryNotFoundError はカテゴリ未検出エラーを生成する。
func NewCategoryNotFoundError(categoryID string) *APIError {
	return &APIError{
		Code:     ErrCodeCategoryNotFound,
		Message:  fmt.Sprintf("指定されたカテゴリが見つかりません: %s", categoryID),
		Category: "category",
		Action:   "カテゴリを選択し直してください。",
	}
}

// NewCategoryTypeMismatchError はカテゴリ種別と収支区分の不一致エラーを生成する。
func NewCategoryTypeMismatchError(categoryType, entryType CategoryType) *APIError {
	return &APIError{
		Code:     ErrCodeCategoryTypeMismatch,
		Message:  fmt.Sprintf("カテゴリの種別（%s）と収支区分（%s）が一致しません。", categoryType, entryType),
		Category: "validation",
		Action:   "収支区分に合ったカテゴリを選択してください。",
	}
}

// NewCategoryInUseError は使用中カテゴリの削除エラーを生成する。
func NewCategoryInUseError() *APIError {
	return &APIError{
		Code:     ErrCodeCategoryInUse,
		Message:  "このカテゴリは収支の記録で使用されているため削除できません。",
		Category: "category",
		Action:   "該当する記録のカテゴリを変更してから削除してください。",
	}
}

// NewDuplicateCategoryError は同名カテゴリの重複エラーを生成する。
func NewDuplicateCategoryError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateCategory,
		Message:  fmt.Sprintf("同じ名前のカテゴリが既に存在します: %s", name),
		Category: "category",
		Action:   "別の名前を入力してください。",
	}
}

// NewEntryNotFoundError は収支・資産記録の未検出エラーを生成する。
func NewEntryNotFoundError(entryID string) *APIError {
	return &APIError{
		Code:     ErrCodeEntryNotFound,
		Message:  fmt.Sprintf("指定された記録が見つかりません: %s", entryID),
		Category: "ledger",
		Action:   "一覧を再読み込みしてください。",
	}
}

// NewInvalidEntryTypeError は不明な記録種別のエラーを生成する。
func NewInvalidEntryTypeError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEntryType,
		Message:  fmt.Sprintf("無効な種別です: %s", value),
		Category: "validation",
		Action:   "種別には収入、支払い、貯金、振替のいずれかを指定してください。",
	}
}

// NewInvalidMonthError は年月指定の形式エラーを生成する。
func NewInvalidMonthError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMonth,
		Message:  fmt.Sprintf("無効な年月です: %s", value),
		Category: "validation",
		Action:   "年月はYYYY-MM形式で指定してください。",
	}
}

// NewMailFailedError はメール送信失敗エラーを生成する。
func NewMailFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeMailFailed,
		Message:  "送信に失敗しました。",
		Category: "contact",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewProviderDisabledError は無効化された認証プロバイダーへのアクセスエラーを生成する。
func NewProviderDisabledError(provider string) *APIError {
	return &APIError{
		Code:     ErrCodeProviderDisabled,
		Message:  fmt.Sprintf("%sログインは現在利用できません。", provider),
		Category: "auth",
		Action:   "メールアドレスでログインしてください。",
	}
}
