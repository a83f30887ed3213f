package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/kakeibo/internal/expense"
	"github.com/hitoshi/kakeibo/internal/model"
)

// ExpenseServiceInterface は収支ハンドラーが必要とするサービスインターフェース。
type ExpenseServiceInterface interface {
	ListByMonth(ctx context.Context, userID, month string) ([]*model.Expense, error)
	Create(ctx context.Context, userID string, input expense.Input) (*model.Expense, error)
	Update(ctx context.Context, userID, id string, input expense.Input) (*model.Expense, error)
	Delete(ctx context.Context, userID, id string) error
}

// ExpenseHandler は収入・支出記録のHTTPハンドラー。
type ExpenseHandler struct {
	service ExpenseServiceInterface
}

// NewExpenseHandler はExpenseHandlerを生成する。
func NewExpenseHandler(service ExpenseServiceInterface) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// expenseRequest は収支記録の作成・更新リクエストのボディ。
type expenseRequest struct {
	CategoryID    string `json:"category_id"`
	Amount        int64  `json:"amount"`
	Type          string `json:"type"`
	Memo          string `json:"memo"`
	Date          string `json:"date"`
	PaymentMethod string `json:"payment_method"`
}

// expenseResponse は収支記録のAPIレスポンス。
type expenseResponse struct {
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

func (req expenseRequest) toInput() expense.Input {
	return expense.Input{
		CategoryID:    req.CategoryID,
		Amount:        req.Amount,
		Type:          model.CategoryType(req.Type),
		Memo:          req.Memo,
		Date:          req.Date,
		PaymentMethod: req.PaymentMethod,
	}
}

// List は収支記録の一覧を返す。monthを省略した場合は全期間を返す。
// GET /api/expenses?month=YYYY-MM
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	expenses, err := h.service.ListByMonth(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(expenses))
}

// Create は収支記録を作成する。
// POST /api/expenses
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	e, err := h.service.Create(r.Context(), userID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

// Update は収支記録を更新する。
// PUT /api/expenses/{id}
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	e, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

// Delete は収支記録を削除する。
// DELETE /api/expenses/{id}
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toExpenseResponse(e *model.Expense) expenseResponse {
	return expenseResponse{
		ID:            e.ID,
		CategoryID:    e.CategoryID,
		Amount:        e.Amount,
		Type:          string(e.Type),
		Memo:          e.Memo,
		Date:          e.Date.Format(model.DateLayout),
		PaymentMethod: e.PaymentMethod,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toExpenseResponses(expenses []*model.Expense) []expenseResponse {
	results := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		results[i] = toExpenseResponse(e)
	}
	return results
}
