// Package mail はメール送信機能を提供する。
// Resend APIによる送信と、開発環境向けのログ出力のみの送信を含む。
package mail

import (
	"context"
	"log/slog"
)

// Message は送信するメール1通を表す。本文はプレーンテキストのみ扱う。
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Text    string
}

// Sender はメール送信のインターフェース。
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender はメールを送信せず、内容をログに出力するSender。
// RESEND_API_KEYが未設定の開発環境で使用する。
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender はLogSenderを生成する。
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send はメールの内容をINFOレベルでログ出力する。
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "メール送信（ログ出力のみ）",
		slog.String("from", msg.From),
		slog.Any("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("body_length", len(msg.Text)),
	)
	return nil
}

var (
	_ Sender = (*LogSender)(nil)
	_ Sender = (*ResendClient)(nil)
)
