// Package ledger は収支・資産記録のマージと残高計算を提供する。
// DBやHTTPに依存しない純粋な計算のみを扱う。
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
)

// EntryType はマージ後の台帳記録の種別を表す。
type EntryType string

const (
	// EntryTypeIncome は収入。
	EntryTypeIncome EntryType = "income"
	// EntryTypePayment は支払い。
	EntryTypePayment EntryType = "payment"
	// EntryTypeSavings は貯金。
	EntryTypeSavings EntryType = "savings"
	// EntryTypeTransfer は振替。
	EntryTypeTransfer EntryType = "transfer"
)

// Source は記録の保存先テーブルを表す。
type Source string

const (
	SourceExpenses     Source = "expenses"
	SourceTransactions Source = "transactions"
)

var entryTypeLabels = map[EntryType]string{
	EntryTypeIncome:   "収入",
	EntryTypePayment:  "支払い",
	EntryTypeSavings:  "貯金",
	EntryTypeTransfer: "振替",
}

// Label は画面表示用の日本語ラベルを返す。
func (t EntryType) Label() string {
	return entryTypeLabels[t]
}

// Source は種別に対応する保存先テーブルを返す。
func (t EntryType) Source() Source {
	switch t {
	case EntryTypeSavings, EntryTypeTransfer:
		return SourceTransactions
	default:
		return SourceExpenses
	}
}

// Valid は種別が既知の値かどうかを返す。
func (t EntryType) Valid() bool {
	_, ok := entryTypeLabels[t]
	return ok
}

// ParseEntryType は英語の種別値または日本語ラベルからEntryTypeを解析する。
// 未知の値はエラーを返す。
func ParseEntryType(s string) (EntryType, error) {
	v := strings.TrimSpace(s)
	if t := EntryType(strings.ToLower(v)); t.Valid() {
		return t, nil
	}
	for t, label := range entryTypeLabels {
		if label == v {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entry type: %q", s)
}

// Entry はexpensesとtransactionsをマージした台帳の1行を表す。
type Entry struct {
	ID            string
	Type          EntryType
	Amount        int64
	Date          time.Time
	CategoryID    string
	FromAccount   string
	ToAccount     string
	PaymentMethod string
	Note          string
	Source        Source
	CreatedAt     time.Time
}

// FromExpense はexpensesの行を台帳記録に変換する。
func FromExpense(e *model.Expense) Entry {
	t := EntryTypePayment
	if e.Type == model.CategoryTypeIncome {
		t = EntryTypeIncome
	}
	return Entry{
		ID:            e.ID,
		Type:          t,
		Amount:        e.Amount,
		Date:          e.Date,
		CategoryID:    e.CategoryID,
		PaymentMethod: e.PaymentMethod,
		Note:          e.Memo,
		Source:        SourceExpenses,
		CreatedAt:     e.CreatedAt,
	}
}

// FromTransaction はtransactionsの行を台帳記録に変換する。
func FromTransaction(tx *model.Transaction) Entry {
	return Entry{
		ID:            tx.ID,
		Type:          EntryType(tx.Type),
		Amount:        tx.Amount,
		Date:          tx.Date,
		CategoryID:    tx.CategoryID,
		FromAccount:   tx.FromAccount,
		ToAccount:     tx.ToAccount,
		PaymentMethod: tx.PaymentMethod,
		Note:          tx.Note,
		Source:        SourceTransactions,
		CreatedAt:     tx.CreatedAt,
	}
}

// Merge は両テーブルの行を1つの台帳に統合し、日付の降順に並べる。
// 同日の記録は作成日時の降順とする。
func Merge(expenses []*model.Expense, transactions []*model.Transaction) []Entry {
	entries := make([]Entry, 0, len(expenses)+len(transactions))
	for _, e := range expenses {
		entries = append(entries, FromExpense(e))
	}
	for _, tx := range transactions {
		entries = append(entries, FromTransaction(tx))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}
