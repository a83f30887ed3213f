package ledger

import "sort"

// UnsetPaymentMethod は支払方法が未入力の記録の集計キー。
const UnsetPaymentMethod = "未設定"

// PaymentMethodTotal は支払方法ごとの支払い合計。
type PaymentMethodTotal struct {
	Method string
	Amount int64
	Count  int
}

// SummarizePaymentMethods は支払いの記録を支払方法ごとに集計し、金額の降順で返す。
// 金額が同じ場合は支払方法名の昇順とする。
func SummarizePaymentMethods(entries []Entry) []PaymentMethodTotal {
	totals := make(map[string]*PaymentMethodTotal)
	for _, e := range entries {
		if e.Type != EntryTypePayment {
			continue
		}
		method := e.PaymentMethod
		if method == "" {
			method = UnsetPaymentMethod
		}
		t, ok := totals[method]
		if !ok {
			t = &PaymentMethodTotal{Method: method}
			totals[method] = t
		}
		t.Amount += e.Amount
		t.Count++
	}

	result := make([]PaymentMethodTotal, 0, len(totals))
	for _, t := range totals {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Amount != result[j].Amount {
			return result[i].Amount > result[j].Amount
		}
		return result[i].Method < result[j].Method
	})
	return result
}
