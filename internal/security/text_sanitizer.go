// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は収支メモやお問い合わせ本文などのユーザー入力から
// HTMLマークアップを除去し、プレーンテキストとして保存できる形に整える。
package security

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
type TextSanitizer interface {
	// Sanitize は全てのHTMLタグを除去し、前後の空白を取り除いたテキストを返す。
	// &amp;などの実体参照は元の文字に戻す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのStrictPolicyはスレッドセーフに共有できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// maxSanitizePasses は実体参照の入れ子を剥がす回数の上限。
const maxSanitizePasses = 8

// Sanitize は全てのHTMLタグを除去したテキストを返す。
// 実体参照を戻した結果に再びタグが現れることがあるため、出力が変化しなくなるまで繰り返す。
func (s *textSanitizer) Sanitize(raw string) string {
	out := raw
	for i := 0; i < maxSanitizePasses; i++ {
		next := s.pass(out)
		if next == out {
			return out
		}
		out = next
	}
	// 上限まで収束しない入力は山括弧を落として確定させる
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(out))
}

func (s *textSanitizer) pass(in string) string {
	if in == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}

// ExceedsRunes はsの文字数がmaxを超えるかを返す。
// バイト数ではなくUnicodeコードポイント数で数える。
func ExceedsRunes(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}
