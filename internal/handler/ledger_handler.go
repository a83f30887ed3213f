package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/kakeibo/internal/assetledger"
	"github.com/hitoshi/kakeibo/internal/ledger"
	"github.com/hitoshi/kakeibo/internal/model"
)

// LedgerServiceInterface は資産台帳ハンドラーが必要とするサービスインターフェース。
type LedgerServiceInterface interface {
	CreateEntry(ctx context.Context, userID string, input assetledger.Input) (ledger.Entry, error)
	UpdateEntry(ctx context.Context, userID, id string, input assetledger.Input) (ledger.Entry, error)
	DeleteEntry(ctx context.Context, userID, id, rawType string) error
	ListEntries(ctx context.Context, userID, month string) ([]ledger.Entry, error)
	Balance(ctx context.Context, userID string) (ledger.Balance, error)
	PaymentMethods(ctx context.Context, userID, month string) ([]ledger.PaymentMethodTotal, error)
}

// LedgerHandler は資産台帳（収入・支払い・貯金・振替）のHTTPハンドラー。
type LedgerHandler struct {
	service LedgerServiceInterface
}

// NewLedgerHandler はLedgerHandlerを生成する。
func NewLedgerHandler(service LedgerServiceInterface) *LedgerHandler {
	return &LedgerHandler{service: service}
}

type ledgerEntryRequest struct {
	Type          string `json:"type"`
	Amount        int64  `json:"amount"`
	Date          string `json:"date"`
	CategoryID    string `json:"category_id"`
	FromAccount   string `json:"from_account"`
	ToAccount     string `json:"to_account"`
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note"`
}

type ledgerEntryResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Label         string    `json:"label"`
	Amount        int64     `json:"amount"`
	Date          string    `json:"date"`
	CategoryID    string    `json:"category_id,omitempty"`
	FromAccount   string    `json:"from_account,omitempty"`
	ToAccount     string    `json:"to_account,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Note          string    `json:"note,omitempty"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
}

type balanceResponse struct {
	Total     int64 `json:"total"`
	Savings   int64 `json:"savings"`
	Available int64 `json:"available"`
}

type paymentMethodResponse struct {
	Method string `json:"method"`
	Amount int64  `json:"amount"`
	Count  int    `json:"count"`
}

func (req ledgerEntryRequest) toInput() assetledger.Input {
	return assetledger.Input{
		Type:          req.Type,
		Amount:        req.Amount,
		Date:          req.Date,
		CategoryID:    req.CategoryID,
		FromAccount:   req.FromAccount,
		ToAccount:     req.ToAccount,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
	}
}

// List は台帳の記録を日付の新しい順に返す。
// GET /api/ledger?month=YYYY-MM
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListEntries(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]ledgerEntryResponse, len(entries))
	for i, e := range entries {
		results[i] = toLedgerEntryResponse(e)
	}
	writeJSON(w, http.StatusOK, results)
}

// Create は台帳に記録を追加する。
// POST /api/ledger
func (h *LedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ledgerEntryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), userID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLedgerEntryResponse(entry))
}

// Update は台帳の記録を更新する。
// PUT /api/ledger/{id}
func (h *LedgerHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ledgerEntryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	entry, err := h.service.UpdateEntry(r.Context(), userID, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerEntryResponse(entry))
}

// Delete は台帳の記録を削除する。typeクエリで保存先を判定する。
// DELETE /api/ledger/{id}?type=income|payment|savings|transfer
func (h *LedgerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteEntry(r.Context(), userID, chi.URLParam(r, "id"), r.URL.Query().Get("type"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Balance は総残高・貯金累計・使用可能額を返す。
// GET /api/ledger/balance
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	balance, err := h.service.Balance(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		Total:     balance.Total,
		Savings:   balance.Savings,
		Available: balance.Available,
	})
}

// PaymentMethods は支払い方法別の集計を返す。
// GET /api/ledger/payment-methods?month=YYYY-MM
func (h *LedgerHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	totals, err := h.service.PaymentMethods(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]paymentMethodResponse, len(totals))
	for i, t := range totals {
		results[i] = paymentMethodResponse{Method: t.Method, Amount: t.Amount, Count: t.Count}
	}
	writeJSON(w, http.StatusOK, results)
}

func toLedgerEntryResponse(e ledger.Entry) ledgerEntryResponse {
	return ledgerEntryResponse{
		ID:            e.ID,
		Type:          string(e.Type),
		Label:         e.Type.Label(),
		Amount:        e.Amount,
		Date:          e.Date.Format(model.DateLayout),
		CategoryID:    e.CategoryID,
		FromAccount:   e.FromAccount,
		ToAccount:     e.ToAccount,
		PaymentMethod: e.PaymentMethod,
		Note:          e.Note,
		Source:        string(e.Source),
		CreatedAt:     e.CreatedAt,
	}
}
