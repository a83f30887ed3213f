package category

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NormalizeID はカテゴリIDを小文字ハイフン区切り（8-4-4-4-12）の正規形に変換する。
// 大文字、ハイフンなしの32桁、波括弧やurn:uuid:付きの表記を受け付ける。
func NormalizeID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid category id %q: %w", raw, err)
	}
	return id.String(), nil
}
