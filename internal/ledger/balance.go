package ledger

import (
	"errors"
	"fmt"
)

// ErrUnknownEntryType は残高計算中に未知の種別を検出した場合のエラー。
var ErrUnknownEntryType = errors.New("unknown entry type")

// Balance は資産残高のサマリー。
type Balance struct {
	Total     int64 // 収入 − 支払い
	Savings   int64 // 貯金の累計
	Available int64 // 収入 − 支払い − 貯金（独立に積み上げる）
}

// Reconcile は台帳記録を先頭から1回畳み込み、残高を計算する。
//
//	収入:   Total += a, Available += a
//	支払い: Total -= a, Available -= a
//	貯金:   Savings += a, Available -= a
//	振替:   いずれにも影響しない
//
// 未知の種別を含む場合はErrUnknownEntryTypeを返す。
func Reconcile(entries []Entry) (Balance, error) {
	var b Balance
	for _, e := range entries {
		switch e.Type {
		case EntryTypeIncome:
			b.Total += e.Amount
			b.Available += e.Amount
		case EntryTypePayment:
			b.Total -= e.Amount
			b.Available -= e.Amount
		case EntryTypeSavings:
			b.Savings += e.Amount
			b.Available -= e.Amount
		case EntryTypeTransfer:
			// 管理対象口座間の移動のため差し引きゼロ
		default:
			return Balance{}, fmt.Errorf("%w: %q (entry %s)", ErrUnknownEntryType, e.Type, e.ID)
		}
	}
	return b, nil
}
