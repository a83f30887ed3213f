package ledger

import (
	"fmt"
	"time"
)

// MonthLayout は年月指定の文字列形式（YYYY-MM）。
const MonthLayout = "2006-01"

// MonthRange はYYYY-MM形式の年月を、その月の初日から翌月初日までの半開区間に変換する。
func MonthRange(month string) (from, to time.Time, err error) {
	from, err = time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return from, from.AddDate(0, 1, 0), nil
}
