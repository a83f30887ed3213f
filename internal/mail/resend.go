package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/resend/resend-go/v2"
)

// ResendClient はResend APIでメールを送信するクライアント。
type ResendClient struct {
	client *resend.Client
	logger *slog.Logger
}

// NewResendClient はResendClientの新しいインスタンスを生成する。
// httpClientがnilの場合はSDK既定のクライアントを使う。
func NewResendClient(httpClient *http.Client, apiKey string, logger *slog.Logger) *ResendClient {
	var client *resend.Client
	if httpClient != nil {
		client = resend.NewCustomClient(httpClient, apiKey)
	} else {
		client = resend.NewClient(apiKey)
	}
	return &ResendClient{client: client, logger: logger}
}

// Send はメールを1通送信する。APIがエラーを返した場合はそのまま返し、再送は行わない。
func (c *ResendClient) Send(ctx context.Context, msg Message) error {
	resp, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Text:    msg.Text,
	})
	if err != nil {
		c.logger.Error("Resend APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("subject", msg.Subject),
		)
		return fmt.Errorf("Resend APIの呼び出しに失敗しました: %w", err)
	}

	c.logger.Info("メールを送信しました",
		slog.String("message_id", resp.Id),
		slog.String("subject", msg.Subject),
	)
	return nil
}
