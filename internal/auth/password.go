package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/badoux/checkmail"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/kakeibo/internal/model"
)

// パスワードの長さ制約。bcryptは72バイトを超える入力を扱えない。
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
	MaxNameLength     = 100
)

// dummyHash はユーザーが存在しない場合の比較に使い、応答時間からの存在推測を防ぐ。
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("kakeibo-dummy-password"), bcrypt.DefaultCost)

// normalizeEmail は前後の空白を除いて小文字化する。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return model.NewValidationError("メールアドレスを入力してください")
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	return nil
}

// validatePassword はパスワードの長さと確認入力の一致を検証する。
func validatePassword(password, confirmation string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return model.NewValidationError(fmt.Sprintf("パスワードは%d文字以上で入力してください", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return model.NewValidationError("パスワードが長すぎます")
	}
	if password != confirmation {
		return model.NewPasswordMismatchError()
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// comparePassword はハッシュとパスワードが一致すればtrueを返す。
func comparePassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to compare password: %w", err)
}
