package mail

import (
	"bytes"
	"fmt"
	"text/template"
)

// DefaultFrom は送信元アドレスの既定値。
const DefaultFrom = "マイリー家計簿 <noreply@myly-kakeibo.com>"

var (
	contactAdminTemplate = template.Must(template.New("contact_admin").Parse(
		`お問い合わせがありました。

お名前: {{.Name}}
メールアドレス: {{.Email}}
件名: {{.Subject}}

メッセージ:
{{.Message}}
`))

	contactReplyTemplate = template.Must(template.New("contact_reply").Parse(
		`{{.Name}} 様

この度はお問い合わせいただき、ありがとうございます。
以下の内容でお問い合わせを受け付けました。

件名: {{.Subject}}

メッセージ:
{{.Message}}

内容を確認次第、担当者より折り返しご連絡いたします。
今しばらくお待ちくださいますようお願い申し上げます。

※このメールは送信専用アドレスから自動送信しています。

--
マイリー家計簿
`))

	passwordResetTemplate = template.Must(template.New("password_reset").Parse(
		`マイリー家計簿をご利用いただきありがとうございます。

以下のリンクからパスワードを再設定してください。
{{.URL}}

このリンクの有効期限は{{.ExpiresInMinutes}}分です。
心当たりのない場合は、このメールを破棄してください。

--
マイリー家計簿
`))
)

// ContactData はお問い合わせメールの差し込み値。
type ContactData struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// PasswordResetData はパスワード再設定メールの差し込み値。
type PasswordResetData struct {
	URL              string
	ExpiresInMinutes int
}

// ContactAdminMessage は管理者宛てのお問い合わせ通知メールを組み立てる。
func ContactAdminMessage(from, adminEmail string, data ContactData) (Message, error) {
	text, err := render(contactAdminTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      []string{adminEmail},
		ReplyTo: data.Email,
		Subject: fmt.Sprintf("【お問い合わせ】%s", data.Subject),
		Text:    text,
	}, nil
}

// ContactReplyMessage は問い合わせ者宛ての自動返信メールを組み立てる。
func ContactReplyMessage(from string, data ContactData) (Message, error) {
	text, err := render(contactReplyTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      []string{data.Email},
		Subject: "【自動返信】お問い合わせありがとうございます",
		Text:    text,
	}, nil
}

// PasswordResetMessage はパスワード再設定メールを組み立てる。
func PasswordResetMessage(from, to string, data PasswordResetData) (Message, error) {
	text, err := render(passwordResetTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      []string{to},
		Subject: "【マイリー家計簿】パスワード再設定のご案内",
		Text:    text,
	}, nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("メール本文の生成に失敗しました (%s): %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
