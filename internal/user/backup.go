package user

import (
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
)

// Backup はエクスポートされるユーザーデータ全体。
type Backup struct {
	Timestamp    time.Time           `json:"timestamp"`
	Categories   []BackupCategory    `json:"categories"`
	Expenses     []BackupExpense     `json:"expenses"`
	Transactions []BackupTransaction `json:"transactions"`
}

// BackupCategory はバックアップ内のカテゴリ。
type BackupCategory struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// BackupExpense はバックアップ内の収入・支出記録。
type BackupExpense struct {
	ID            string    `json:"id"`
	CategoryID    string    `json:"category_id"`
	Amount        int64     `json:"amount"`
	Type          string    `json:"type"`
	Memo          string    `json:"memo"`
	Date          string    `json:"date"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BackupTransaction はバックアップ内の資産台帳記録。
type BackupTransaction struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	Date          string    `json:"date"`
	CategoryID    string    `json:"category_id,omitempty"`
	FromAccount   string    `json:"from_account,omitempty"`
	ToAccount     string    `json:"to_account,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newBackup(now time.Time, categories []*model.Category, expenses []*model.Expense, transactions []*model.Transaction) *Backup {
	b := &Backup{
		Timestamp:    now.UTC(),
		Categories:   make([]BackupCategory, 0, len(categories)),
		Expenses:     make([]BackupExpense, 0, len(expenses)),
		Transactions: make([]BackupTransaction, 0, len(transactions)),
	}
	for _, c := range categories {
		b.Categories = append(b.Categories, BackupCategory{
			ID:        c.ID,
			Name:      c.Name,
			Type:      string(c.Type),
			Color:     c.Color,
			Icon:      c.Icon,
			CreatedAt: c.CreatedAt,
		})
	}
	for _, e := range expenses {
		b.Expenses = append(b.Expenses, BackupExpense{
			ID:            e.ID,
			CategoryID:    e.CategoryID,
			Amount:        e.Amount,
			Type:          string(e.Type),
			Memo:          e.Memo,
			Date:          e.Date.Format(model.DateLayout),
			PaymentMethod: e.PaymentMethod,
			CreatedAt:     e.CreatedAt,
			UpdatedAt:     e.UpdatedAt,
		})
	}
	for _, t := range transactions {
		b.Transactions = append(b.Transactions, BackupTransaction{
			ID:            t.ID,
			Type:          string(t.Type),
			Amount:        t.Amount,
			Date:          t.Date.Format(model.DateLayout),
			CategoryID:    t.CategoryID,
			FromAccount:   t.FromAccount,
			ToAccount:     t.ToAccount,
			PaymentMethod: t.PaymentMethod,
			Note:          t.Note,
			CreatedAt:     t.CreatedAt,
			UpdatedAt:     t.UpdatedAt,
		})
	}
	return b
}
