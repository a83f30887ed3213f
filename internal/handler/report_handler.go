package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/kakeibo/internal/report"
)

// ReportServiceInterface は集計ハンドラーが必要とするサービスインターフェース。
type ReportServiceInterface interface {
	Calendar(ctx context.Context, userID, month string) (*report.Calendar, error)
	Statistics(ctx context.Context, userID, month string) (*report.Statistics, error)
}

// ReportHandler はカレンダーと統計のHTTPハンドラー。
type ReportHandler struct {
	service ReportServiceInterface
}

// NewReportHandler はReportHandlerを生成する。
func NewReportHandler(service ReportServiceInterface) *ReportHandler {
	return &ReportHandler{service: service}
}

type calendarDayResponse struct {
	Date    string            `json:"date"`
	Income  int64             `json:"income"`
	Expense int64             `json:"expense"`
	Entries []expenseResponse `json:"entries"`
}

type calendarResponse struct {
	Month   string                `json:"month"`
	Days    []calendarDayResponse `json:"days"`
	Income  int64                 `json:"income"`
	Expense int64                 `json:"expense"`
	Net     int64                 `json:"net"`
}

type categoryTotalResponse struct {
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Amount     int64   `json:"amount"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type monthlyTotalResponse struct {
	Month   string `json:"month"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}

type statisticsResponse struct {
	Month        string                  `json:"month"`
	TotalExpense int64                   `json:"total_expense"`
	TotalIncome  int64                   `json:"total_income"`
	Count        int                     `json:"count"`
	Average      int64                   `json:"average"`
	TopCategory  *categoryTotalResponse  `json:"top_category"`
	Categories   []categoryTotalResponse `json:"categories"`
	Monthly      []monthlyTotalResponse  `json:"monthly"`
}

// Calendar は指定月の日別収支を返す。
// GET /api/reports/calendar?month=YYYY-MM
func (h *ReportHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	cal, err := h.service.Calendar(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	days := make([]calendarDayResponse, len(cal.Days))
	for i, d := range cal.Days {
		days[i] = calendarDayResponse{
			Date:    d.Date,
			Income:  d.Income,
			Expense: d.Expense,
			Entries: toExpenseResponses(d.Entries),
		}
	}
	writeJSON(w, http.StatusOK, calendarResponse{
		Month:   cal.Month,
		Days:    days,
		Income:  cal.Income,
		Expense: cal.Expense,
		Net:     cal.Net,
	})
}

// Statistics は指定月のカテゴリ別支出と年間推移を返す。
// GET /api/reports/statistics?month=YYYY-MM
func (h *ReportHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Statistics(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := statisticsResponse{
		Month:        stats.Month,
		TotalExpense: stats.TotalExpense,
		TotalIncome:  stats.TotalIncome,
		Count:        stats.Count,
		Average:      stats.Average,
		Categories:   make([]categoryTotalResponse, len(stats.Categories)),
		Monthly:      make([]monthlyTotalResponse, len(stats.Monthly)),
	}
	if stats.TopCategory != nil {
		top := toCategoryTotalResponse(*stats.TopCategory)
		resp.TopCategory = &top
	}
	for i, c := range stats.Categories {
		resp.Categories[i] = toCategoryTotalResponse(c)
	}
	for i, m := range stats.Monthly {
		resp.Monthly[i] = monthlyTotalResponse{Month: m.Month, Income: m.Income, Expense: m.Expense}
	}
	writeJSON(w, http.StatusOK, resp)
}

func toCategoryTotalResponse(c report.CategoryTotal) categoryTotalResponse {
	return categoryTotalResponse{
		CategoryID: c.CategoryID,
		Name:       c.Name,
		Color:      c.Color,
		Amount:     c.Amount,
		Count:      c.Count,
		Percentage: c.Percentage,
	}
}
