// Package auth はメール/パスワード・ゲスト・Google OAuthによる認証、
// セッション管理、パスワード再設定を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/kakeibo/internal/mail"
	"github.com/hitoshi/kakeibo/internal/metrics"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// GuestName はゲストユーザーの表示名。
const GuestName = "ゲスト"

// guestEmailDomain はゲストユーザーに割り当てる配送不能ドメイン。
const guestEmailDomain = "guest.invalid"

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	Provider       string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// CategorySeeder は初回ログイン時の既定カテゴリ投入を行う。
type CategorySeeder interface {
	SeedDefaults(ctx context.Context, userID string) (int, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int    // セッション有効期間（秒）
	BaseURL       string // パスワード再設定リンクの基点
	MailFrom      string
}

// SignUpInput は新規登録の入力値。
type SignUpInput struct {
	Email                string
	Password             string
	PasswordConfirmation string
	Name                 string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	credRepo    repository.CredentialRepository
	sessionRepo repository.SessionRepository
	seeder      CategorySeeder
	sender      mail.Sender
	tokens      *ResetTokenManager
	metrics     metrics.MetricsCollector
	config      ServiceConfig
	logger      *slog.Logger
}

// Deps はServiceの依存をまとめたもの。OAuthがnilの場合はGoogleログインを無効とする。
type Deps struct {
	OAuth       OAuthProvider
	Users       repository.UserRepository
	Identities  repository.IdentityRepository
	Credentials repository.CredentialRepository
	Sessions    repository.SessionRepository
	Seeder      CategorySeeder
	Sender      mail.Sender
	Tokens      *ResetTokenManager
	Metrics     metrics.MetricsCollector
	Logger      *slog.Logger
}

// NewService はServiceを生成する。
func NewService(deps Deps, config ServiceConfig) *Service {
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.MailFrom == "" {
		config.MailFrom = mail.DefaultFrom
	}
	return &Service{
		oauth:       deps.OAuth,
		userRepo:    deps.Users,
		identRepo:   deps.Identities,
		credRepo:    deps.Credentials,
		sessionRepo: deps.Sessions,
		seeder:      deps.Seeder,
		sender:      deps.Sender,
		tokens:      deps.Tokens,
		metrics:     collector,
		config:      config,
		logger:      logger,
	}
}

// GoogleEnabled はGoogleログインが設定済みかを返す。
func (s *Service) GoogleEnabled() bool {
	return s.oauth != nil
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) (string, error) {
	if s.oauth == nil {
		return "", model.NewProviderDisabledError(model.ProviderGoogle)
	}
	return s.oauth.GetLoginURL(state), nil
}

// SignUp はメール/パスワードでユーザーを登録し、セッションを発行する。
// ユーザー、identity、資格情報は1トランザクションで作成され、
// メールアドレスの重複は一意制約違反として検出する。
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*model.Session, error) {
	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, model.NewValidationError(fmt.Sprintf("名前は%d文字以内で入力してください", MaxNameLength))
	}
	if err := validatePassword(input.Password, input.PasswordConfirmation); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	identity := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		Provider:       model.ProviderEmail,
		ProviderUserID: email,
		CreatedAt:      now,
	}
	credential := &model.PasswordCredential{
		UserID:       user.ID,
		PasswordHash: hash,
		UpdatedAt:    now,
	}

	if err := s.userRepo.CreateWithCredential(ctx, user, identity, credential); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("ユーザーの登録に失敗しました: %w", err)
	}

	s.logger.Info("new user signed up",
		slog.String("user_id", user.ID),
		slog.String("provider", model.ProviderEmail),
	)
	return s.startSession(ctx, user.ID, model.ProviderEmail)
}

// SignIn はメール/パスワードを検証し、セッションを発行する。
// 未登録メールアドレスとパスワード不一致は区別しない。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, model.NewInvalidCredentialsError()
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}

	hash := string(dummyHash)
	var credential *model.PasswordCredential
	if user != nil {
		credential, err = s.credRepo.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("資格情報の取得に失敗しました: %w", err)
		}
		if credential != nil {
			hash = credential.PasswordHash
		}
	}

	ok, err := comparePassword(hash, password)
	if err != nil {
		return nil, err
	}
	if !ok || credential == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	return s.startSession(ctx, user.ID, model.ProviderEmail)
}

// SignInGuest はゲストユーザーを作成し、セッションを発行する。
func (s *Service) SignInGuest(ctx context.Context) (*model.Session, error) {
	now := time.Now()
	userID := uuid.New().String()
	user := &model.User{
		ID:        userID,
		Email:     fmt.Sprintf("guest+%s@%s", userID, guestEmailDomain),
		Name:      GuestName,
		IsGuest:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	identity := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         userID,
		Provider:       model.ProviderGuest,
		ProviderUserID: userID,
		CreatedAt:      now,
	}

	if err := s.userRepo.CreateWithIdentity(ctx, user, identity); err != nil {
		return nil, fmt.Errorf("ゲストユーザーの作成に失敗しました: %w", err)
	}

	s.logger.Info("guest user created", slog.String("user_id", userID))
	return s.startSession(ctx, userID, model.ProviderGuest)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// 未登録ユーザーの場合はusersレコードとidentitiesレコードを同時に自動作成する。
// 同じアカウントの初回ログインが並行した場合は、一意制約違反の後にidentityを再取得する。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	if s.oauth == nil {
		return nil, model.NewProviderDisabledError(model.ProviderGoogle)
	}

	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	userID, err := s.resolveOAuthUser(ctx, userInfo)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, userID, userInfo.Provider)
}

func (s *Service) resolveOAuthUser(ctx context.Context, userInfo *OAuthUserInfo) (string, error) {
	identity, err := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
	if err != nil {
		return "", fmt.Errorf("failed to find identity: %w", err)
	}
	if identity != nil {
		return identity.UserID, nil
	}

	now := time.Now()
	newUser := &model.User{
		ID:        uuid.New().String(),
		Email:     normalizeEmail(userInfo.Email),
		Name:      userInfo.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	newIdentity := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         newUser.ID,
		Provider:       userInfo.Provider,
		ProviderUserID: userInfo.ProviderUserID,
		CreatedAt:      now,
	}

	err = s.userRepo.CreateWithIdentity(ctx, newUser, newIdentity)
	if err == nil {
		s.logger.Info("new user created",
			slog.String("user_id", newUser.ID),
			slog.String("provider", userInfo.Provider),
		)
		return newUser.ID, nil
	}
	if !errors.Is(err, repository.ErrUniqueViolation) {
		return "", fmt.Errorf("failed to create user and identity: %w", err)
	}

	identity, findErr := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
	if findErr != nil {
		return "", fmt.Errorf("failed to find identity: %w", findErr)
	}
	if identity == nil {
		// identityが無いまま一意制約に当たった場合はメールアドレスが別の方法で登録済み。
		return "", model.NewEmailTakenError()
	}
	return identity.UserID, nil
}

// RequestPasswordReset はパスワード再設定リンクをメールで送信する。
// アカウントの存在有無を漏らさないため、送信対象が無い場合や送信失敗時もnilを返す。
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}
	credential, err := s.credRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("資格情報の取得に失敗しました: %w", err)
	}
	if credential == nil {
		s.logger.Info("password reset requested for account without password", slog.String("user_id", user.ID))
		return nil
	}

	token, err := s.tokens.Issue(user.ID, credential.PasswordHash)
	if err != nil {
		return err
	}

	msg, err := mail.PasswordResetMessage(s.config.MailFrom, user.Email, mail.PasswordResetData{
		URL:              s.resetURL(token),
		ExpiresInMinutes: int(s.tokens.TTL() / time.Minute),
	})
	if err != nil {
		return err
	}

	const kind = "password_reset"
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.RecordMailFailed(kind)
		s.logger.Error("failed to send password reset mail",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	s.metrics.RecordMailSent(kind)
	return nil
}

// ResetPassword はトークンを検証してパスワードを更新し、全セッションを失効させる。
func (s *Service) ResetPassword(ctx context.Context, token, password, confirmation string) error {
	if err := validatePassword(password, confirmation); err != nil {
		return err
	}

	userID, fingerprint, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.Info("rejected password reset token", slog.String("reason", err.Error()))
		return model.NewInvalidResetTokenError()
	}

	credential, err := s.credRepo.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("資格情報の取得に失敗しました: %w", err)
	}
	if credential == nil || !s.tokens.VerifyFingerprint(userID, credential.PasswordHash, fingerprint) {
		return model.NewInvalidResetTokenError()
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.credRepo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewInvalidResetTokenError()
		}
		return fmt.Errorf("パスワードの更新に失敗しました: %w", err)
	}
	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("セッションの失効に失敗しました: %w", err)
	}

	s.logger.Info("password reset completed", slog.String("user_id", userID))
	return nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
// セッションが無効な場合はUNAUTHORIZEDを返す。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, model.NewUnauthorizedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}
	return user, nil
}

// startSession は既定カテゴリを投入した上でセッションを発行する。
// カテゴリ投入の失敗はログインを妨げない（後から/api/categories/seedで再実行できる）。
func (s *Service) startSession(ctx context.Context, userID, provider string) (*model.Session, error) {
	if s.seeder != nil {
		if _, err := s.seeder.SeedDefaults(ctx, userID); err != nil {
			s.logger.Warn("failed to seed default categories",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	session, err := s.createSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.metrics.RecordSignIn(provider)
	return session, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

func (s *Service) resetURL(token string) string {
	return strings.TrimRight(s.config.BaseURL, "/") + "/auth/reset-password?token=" + url.QueryEscape(token)
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
