package model

import "time"

// CategoryType はカテゴリおよび収支記録の区分を表す。
type CategoryType string

const (
	// CategoryTypeIncome は収入区分。
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense は支出区分。
	CategoryTypeExpense CategoryType = "expense"
)

// Valid は区分が既知の値かどうかを返す。
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category はユーザーが所有する収支カテゴリを表す。
type Category struct {
	ID        string
	UserID    string
	Name      string
	Type      CategoryType
	Color     string
	Icon      string
	CreatedAt time.Time
}
