// Package contact はお問い合わせフォームの受付処理を提供する。
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/badoux/checkmail"

	"github.com/hitoshi/kakeibo/internal/mail"
	"github.com/hitoshi/kakeibo/internal/metrics"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/security"
)

// 入力値の上限文字数
const (
	MaxNameLength    = 100
	MaxSubjectLength = 200
	MaxMessageLength = 5000
)

// メール種別（メトリクスのラベル）
const (
	kindAdmin = "contact_admin"
	kindReply = "contact_reply"
)

// Input はお問い合わせフォームの入力値。
type Input struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Service はお問い合わせ受付のサービス層。
type Service struct {
	sender     mail.Sender
	from       string
	adminEmail string
	sanitizer  security.TextSanitizer
	metrics    metrics.MetricsCollector
	logger     *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	sender mail.Sender,
	from, adminEmail string,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		sender:     sender,
		from:       from,
		adminEmail: adminEmail,
		sanitizer:  sanitizer,
		metrics:    collector,
		logger:     logger,
	}
}

// Submit は入力を検証し、管理者への通知メールと問い合わせ者への自動返信メールを順に送信する。
// 管理者通知に失敗した場合は自動返信を送らない。自動返信のみ失敗した場合も
// MAIL_FAILEDを返すが、送信済みの管理者通知は取り消さない。
func (s *Service) Submit(ctx context.Context, input Input) error {
	data, err := s.validate(input)
	if err != nil {
		return err
	}

	adminMsg, err := mail.ContactAdminMessage(s.from, s.adminEmail, data)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, adminMsg); err != nil {
		s.metrics.RecordMailFailed(kindAdmin)
		s.logger.Error("お問い合わせ通知メールの送信に失敗しました",
			slog.String("error", err.Error()),
		)
		return model.NewMailFailedError()
	}
	s.metrics.RecordMailSent(kindAdmin)

	replyMsg, err := mail.ContactReplyMessage(s.from, data)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, replyMsg); err != nil {
		s.metrics.RecordMailFailed(kindReply)
		s.logger.Warn("自動返信メールの送信に失敗しました（管理者通知は送信済み）",
			slog.String("error", err.Error()),
		)
		return model.NewMailFailedError()
	}
	s.metrics.RecordMailSent(kindReply)
	return nil
}

func (s *Service) validate(input Input) (mail.ContactData, error) {
	data := mail.ContactData{
		Name:    s.sanitizer.Sanitize(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: s.sanitizer.Sanitize(input.Subject),
		Message: s.sanitizer.Sanitize(input.Message),
	}

	if data.Name == "" || data.Email == "" || data.Subject == "" || data.Message == "" {
		return data, model.NewValidationError("全ての項目を入力してください")
	}
	if err := checkmail.ValidateFormat(data.Email); err != nil {
		return data, model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	if security.ExceedsRunes(data.Name, MaxNameLength) {
		return data, model.NewValidationError(fmt.Sprintf("お名前は%d文字以内で入力してください", MaxNameLength))
	}
	if security.ExceedsRunes(data.Subject, MaxSubjectLength) {
		return data, model.NewValidationError(fmt.Sprintf("件名は%d文字以内で入力してください", MaxSubjectLength))
	}
	if security.ExceedsRunes(data.Message, MaxMessageLength) {
		return data, model.NewValidationError(fmt.Sprintf("メッセージは%d文字以内で入力してください", MaxMessageLength))
	}
	return data, nil
}
