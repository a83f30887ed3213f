package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/report"
)

type mockReportService struct {
	calendarFn   func(ctx context.Context, userID, month string) (*report.Calendar, error)
	statisticsFn func(ctx context.Context, userID, month string) (*report.Statistics, error)
}

func (m *mockReportService) Calendar(ctx context.Context, userID, month string) (*report.Calendar, error) {
	if m.calendarFn != nil {
		return m.calendarFn(ctx, userID, month)
	}
	return &report.Calendar{}, nil
}

func (m *mockReportService) Statistics(ctx context.Context, userID, month string) (*report.Statistics, error) {
	if m.statisticsFn != nil {
		return m.statisticsFn(ctx, userID, month)
	}
	return &report.Statistics{}, nil
}

func TestReportHandler_Calendar(t *testing.T) {
	svc := &mockReportService{
		calendarFn: func(_ context.Context, _, month string) (*report.Calendar, error) {
			return &report.Calendar{
				Month: month,
				Days: []report.Day{
					{Date: "2026-03-01", Income: 300000, Entries: []*model.Expense{sampleExpense("e1", 300000, "2026-03-01")}},
					{Date: "2026-03-02", Entries: []*model.Expense{}},
				},
				Income: 300000,
				Net:    300000,
			}, nil
		},
	}
	h := NewReportHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/reports/calendar?month=2026-03", nil), "user-1")
	w := httptest.NewRecorder()
	h.Calendar(w, req)

	assertStatus(t, w, http.StatusOK)
	var body calendarResponse
	decodeBody(t, w, &body)
	if body.Month != "2026-03" || len(body.Days) != 2 || body.Net != 300000 {
		t.Errorf("body = %+v", body)
	}
	if len(body.Days[0].Entries) != 1 || body.Days[1].Entries == nil {
		t.Errorf("days = %+v", body.Days)
	}
}

func TestReportHandler_Calendar_InvalidMonth(t *testing.T) {
	svc := &mockReportService{
		calendarFn: func(_ context.Context, _, month string) (*report.Calendar, error) {
			return nil, model.NewInvalidMonthError(month)
		},
	}
	h := NewReportHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/reports/calendar?month=March", nil), "user-1")
	w := httptest.NewRecorder()
	h.Calendar(w, req)

	assertStatus(t, w, http.StatusBadRequest)
}

func TestReportHandler_Statistics(t *testing.T) {
	food := report.CategoryTotal{CategoryID: "c1", Name: "食費", Color: "#FF5722", Amount: 3000, Count: 2, Percentage: 75}
	svc := &mockReportService{
		statisticsFn: func(_ context.Context, _, month string) (*report.Statistics, error) {
			return &report.Statistics{
				Month:        month,
				TotalExpense: 4000,
				Count:        3,
				Average:      1333,
				TopCategory:  &food,
				Categories:   []report.CategoryTotal{food, {CategoryID: "c2", Name: "交通費", Amount: 1000, Count: 1, Percentage: 25}},
				Monthly:      []report.MonthlyTotal{{Month: "2026-01"}, {Month: "2026-02"}, {Month: "2026-03", Expense: 4000}},
			}, nil
		},
	}
	h := NewReportHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/reports/statistics?month=2026-03", nil), "user-1")
	w := httptest.NewRecorder()
	h.Statistics(w, req)

	assertStatus(t, w, http.StatusOK)
	var body statisticsResponse
	decodeBody(t, w, &body)
	if body.TopCategory == nil || body.TopCategory.Name != "食費" {
		t.Errorf("TopCategory = %+v", body.TopCategory)
	}
	if len(body.Categories) != 2 || body.Categories[1].Percentage != 25 {
		t.Errorf("Categories = %+v", body.Categories)
	}
	if len(body.Monthly) != 3 || body.Monthly[2].Expense != 4000 {
		t.Errorf("Monthly = %+v", body.Monthly)
	}
}

func TestReportHandler_Statistics_NoExpensesHasNullTop(t *testing.T) {
	h := NewReportHandler(&mockReportService{})

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/reports/statistics?month=2026-03", nil), "user-1")
	w := httptest.NewRecorder()
	h.Statistics(w, req)

	assertStatus(t, w, http.StatusOK)
	var body map[string]any
	decodeBody(t, w, &body)
	if body["top_category"] != nil {
		t.Errorf("top_category = %v, want null", body["top_category"])
	}
	if cats, ok := body["categories"].([]any); !ok || len(cats) != 0 {
		t.Errorf("categories = %v, want []", body["categories"])
	}
}
