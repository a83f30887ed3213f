// Package report はカレンダー表示と月次統計の集計を提供する。
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/kakeibo/internal/ledger"
	"github.com/hitoshi/kakeibo/internal/model"
)

// UncategorizedName はカテゴリが見つからない記録の集計名。
const UncategorizedName = "未分類"

// ExpenseLister は期間内の収入・支出記録を返す。
type ExpenseLister interface {
	List(ctx context.Context, userID string, from, to time.Time) ([]*model.Expense, error)
}

// CategoryLister はユーザーのカテゴリ一覧を返す。
type CategoryLister interface {
	List(ctx context.Context, userID string, categoryType model.CategoryType) ([]*model.Category, error)
}

// Day はカレンダーの1日分の集計。
type Day struct {
	Date    string
	Income  int64
	Expense int64
	Entries []*model.Expense
}

// Calendar は1か月分の日別集計と月合計。
type Calendar struct {
	Month   string
	Days    []Day
	Income  int64
	Expense int64
	Net     int64
}

// CategoryTotal はカテゴリ別の支出合計。
type CategoryTotal struct {
	CategoryID string
	Name       string
	Color      string
	Amount     int64
	Count      int
	Percentage float64 // 支出合計に対する割合（%、小数第1位で四捨五入）
}

// MonthlyTotal は月ごとの収入・支出合計。
type MonthlyTotal struct {
	Month   string
	Income  int64
	Expense int64
}

// Statistics は1か月分の支出統計。
type Statistics struct {
	Month        string
	TotalExpense int64
	TotalIncome  int64
	Count        int
	Average      int64 // 1件あたりの平均支出（円未満四捨五入）
	TopCategory  *CategoryTotal
	Categories   []CategoryTotal
	Monthly      []MonthlyTotal // 対象年の1月から12月まで
}

// Service は集計のサービス層。
type Service struct {
	expenses   ExpenseLister
	categories CategoryLister
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(expenses ExpenseLister, categories CategoryLister) *Service {
	return &Service{expenses: expenses, categories: categories}
}

// Calendar はYYYY-MM形式で指定した月の日別集計を返す。
// 記録のない日も含め、月の全日を日付の昇順で返す。
func (s *Service) Calendar(ctx context.Context, userID, month string) (*Calendar, error) {
	from, to, err := ledger.MonthRange(month)
	if err != nil {
		return nil, model.NewInvalidMonthError(month)
	}
	expenses, err := s.expenses.List(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return BuildCalendar(from, expenses), nil
}

// BuildCalendar はmonthStartから始まる月の記録を日別に集計する。
func BuildCalendar(monthStart time.Time, expenses []*model.Expense) *Calendar {
	cal := &Calendar{Month: monthStart.Format(ledger.MonthLayout)}
	end := monthStart.AddDate(0, 1, 0)
	index := make(map[string]int)
	for d := monthStart; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(model.DateLayout)
		index[key] = len(cal.Days)
		cal.Days = append(cal.Days, Day{Date: key, Entries: []*model.Expense{}})
	}

	for _, e := range expenses {
		i, ok := index[e.Date.Format(model.DateLayout)]
		if !ok {
			continue
		}
		day := &cal.Days[i]
		switch e.Type {
		case model.CategoryTypeIncome:
			day.Income += e.Amount
			cal.Income += e.Amount
		case model.CategoryTypeExpense:
			day.Expense += e.Amount
			cal.Expense += e.Amount
		}
		day.Entries = append(day.Entries, e)
	}
	cal.Net = cal.Income - cal.Expense
	return cal
}

// Statistics はYYYY-MM形式で指定した月の支出統計と、その年の月別推移を返す。
func (s *Service) Statistics(ctx context.Context, userID, month string) (*Statistics, error) {
	from, to, err := ledger.MonthRange(month)
	if err != nil {
		return nil, model.NewInvalidMonthError(month)
	}
	yearStart := time.Date(from.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	expenses, err := s.expenses.List(ctx, userID, yearStart, yearStart.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx, userID, model.CategoryTypeExpense)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}

	var inMonth []*model.Expense
	for _, e := range expenses {
		if !e.Date.Before(from) && e.Date.Before(to) {
			inMonth = append(inMonth, e)
		}
	}

	stats := BuildStatistics(month, inMonth, categories)
	stats.Monthly = MonthlySeries(yearStart, expenses)
	return stats, nil
}

// BuildStatistics は1か月分の記録からカテゴリ別の支出統計を計算する。
// カテゴリ別合計は金額の降順、同額はカテゴリ名の昇順に並べる。
func BuildStatistics(month string, expenses []*model.Expense, categories []*model.Category) *Statistics {
	stats := &Statistics{Month: month, Categories: []CategoryTotal{}}
	byID := make(map[string]*model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	totals := make(map[string]*CategoryTotal)
	for _, e := range expenses {
		if e.Type == model.CategoryTypeIncome {
			stats.TotalIncome += e.Amount
			continue
		}
		stats.TotalExpense += e.Amount
		stats.Count++

		t, ok := totals[e.CategoryID]
		if !ok {
			t = &CategoryTotal{CategoryID: e.CategoryID, Name: UncategorizedName}
			if c, found := byID[e.CategoryID]; found {
				t.Name = c.Name
				t.Color = c.Color
			}
			totals[e.CategoryID] = t
		}
		t.Amount += e.Amount
		t.Count++
	}

	if stats.Count > 0 {
		stats.Average = decimal.NewFromInt(stats.TotalExpense).
			Div(decimal.NewFromInt(int64(stats.Count))).
			Round(0).
			IntPart()
	}

	for _, t := range totals {
		t.Percentage = Percentage(t.Amount, stats.TotalExpense)
		stats.Categories = append(stats.Categories, *t)
	}
	sort.Slice(stats.Categories, func(i, j int) bool {
		if stats.Categories[i].Amount != stats.Categories[j].Amount {
			return stats.Categories[i].Amount > stats.Categories[j].Amount
		}
		return stats.Categories[i].Name < stats.Categories[j].Name
	})
	if len(stats.Categories) > 0 {
		top := stats.Categories[0]
		stats.TopCategory = &top
	}
	return stats
}

// Percentage はpartがtotalに占める割合を小数第1位で四捨五入して返す。
// totalが0の場合は0を返す。
func Percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(1).
		InexactFloat64()
}

// MonthlySeries はyearStartの年の1月から12月までの月別合計を返す。
func MonthlySeries(yearStart time.Time, expenses []*model.Expense) []MonthlyTotal {
	series := make([]MonthlyTotal, 12)
	for i := range series {
		series[i].Month = yearStart.AddDate(0, i, 0).Format(ledger.MonthLayout)
	}
	for _, e := range expenses {
		if e.Date.Year() != yearStart.Year() {
			continue
		}
		m := &series[int(e.Date.Month())-1]
		switch e.Type {
		case model.CategoryTypeIncome:
			m.Income += e.Amount
		case model.CategoryTypeExpense:
			m.Expense += e.Amount
		}
	}
	return series
}
