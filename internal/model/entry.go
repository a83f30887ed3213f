package model

import "time"

// DateLayout は記録日付の文字列形式（YYYY-MM-DD）。
const DateLayout = "2006-01-02"

// Expense はexpensesテーブルに保存される収入・支出の記録を表す。
// 金額は円単位の整数で、常に正の値を持つ。
type Expense struct {
	ID            string
	UserID        string
	CategoryID    string
	Amount        int64
	Type          CategoryType
	Memo          string
	Date          time.Time
	PaymentMethod string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TransactionType は資産台帳（transactionsテーブル）の記録種別を表す。
type TransactionType string

const (
	// TransactionTypeSavings は貯金。
	TransactionTypeSavings TransactionType = "savings"
	// TransactionTypeTransfer は口座間の振替。
	TransactionTypeTransfer TransactionType = "transfer"
)

// Valid は種別が既知の値かどうかを返す。
func (t TransactionType) Valid() bool {
	return t == TransactionTypeSavings || t == TransactionTypeTransfer
}

// Transaction は貯金・振替の資産台帳記録を表す。
// 収入・支払いはexpensesに保存され、表示時にマージされる。
type Transaction struct {
	ID            string
	UserID        string
	Type          TransactionType
	Amount        int64
	Date          time.Time
	FromAccount   string
	ToAccount     string
	PaymentMethod string
	Note          string
	CategoryID    string // 任意
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
