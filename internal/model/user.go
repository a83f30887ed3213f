// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// ゲストユーザーは認証プロバイダー側のIDを写したシャドウ行として作成される。
type User struct {
	ID        string
	Email     string
	Name      string
	IsGuest   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// 認証プロバイダー
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
	ProviderGuest  = "guest"
)

// Identity は認証プロバイダーとの紐付け情報を表す。
// メール/パスワード、Google、ゲストのいずれもidentitiesに1行持つ。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// PasswordCredential はメール/パスワード認証のハッシュ化済み資格情報を表す。
type PasswordCredential struct {
	UserID       string
	PasswordHash string
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
