package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	// ErrInvalidResetToken は署名・形式・フィンガープリントのいずれかが不正なトークンを表す。
	ErrInvalidResetToken = errors.New("reset token is invalid")
	// ErrExpiredResetToken は有効期限切れのトークンを表す。
	ErrExpiredResetToken = errors.New("reset token is expired")
)

// DefaultResetTokenTTL はパスワード再設定トークンの既定の有効期間。
const DefaultResetTokenTTL = 30 * time.Minute

const resetTokenPurpose = "password_reset"

// resetClaims はパスワード再設定トークンのクレーム。
// Fingerprintは発行時点のパスワードハッシュから導出するため、
// パスワードが更新されると同じトークンは再利用できない。
type resetClaims struct {
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fgp"`
	jwt.StandardClaims
}

// ResetTokenManager はHS256署名のパスワード再設定トークンを発行・検証する。
type ResetTokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewResetTokenManager はResetTokenManagerを生成する。ttlが0以下の場合は既定値を使う。
func NewResetTokenManager(secret string, ttl time.Duration) *ResetTokenManager {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &ResetTokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL はトークンの有効期間を返す。
func (m *ResetTokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue はuserIDと現在のパスワードハッシュに紐づくトークンを発行する。
func (m *ResetTokenManager) Issue(userID, passwordHash string) (string, error) {
	now := m.now()
	claims := &resetClaims{
		Purpose:     resetTokenPurpose,
		Fingerprint: m.fingerprint(userID, passwordHash),
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

// Parse はトークンの署名と有効期限を検証し、対象ユーザーIDを返す。
// フィンガープリントの照合はVerifyFingerprintで行う。
func (m *ResetTokenManager) Parse(tokenString string) (userID, fingerprint string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &resetClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return "", "", ErrExpiredResetToken
		}
		return "", "", ErrInvalidResetToken
	}

	claims, ok := token.Claims.(*resetClaims)
	if !ok || !token.Valid || claims.Subject == "" || claims.Purpose != resetTokenPurpose {
		return "", "", ErrInvalidResetToken
	}
	return claims.Subject, claims.Fingerprint, nil
}

// VerifyFingerprint はトークンのフィンガープリントが現在のパスワードハッシュと一致するかを返す。
func (m *ResetTokenManager) VerifyFingerprint(userID, passwordHash, fingerprint string) bool {
	expected := m.fingerprint(userID, passwordHash)
	return hmac.Equal([]byte(expected), []byte(fingerprint))
}

func (m *ResetTokenManager) fingerprint(userID, passwordHash string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(passwordHash))
	return hex.EncodeToString(h.Sum(nil)[:16])
}
