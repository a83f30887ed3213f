package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/kakeibo/internal/assetledger"
	"github.com/hitoshi/kakeibo/internal/ledger"
	"github.com/hitoshi/kakeibo/internal/model"
)

type mockLedgerService struct {
	createEntryFn    func(ctx context.Context, userID string, input assetledger.Input) (ledger.Entry, error)
	updateEntryFn    func(ctx context.Context, userID, id string, input assetledger.Input) (ledger.Entry, error)
	deleteEntryFn    func(ctx context.Context, userID, id, rawType string) error
	listEntriesFn    func(ctx context.Context, userID, month string) ([]ledger.Entry, error)
	balanceFn        func(ctx context.Context, userID string) (ledger.Balance, error)
	paymentMethodsFn func(ctx context.Context, userID, month string) ([]ledger.PaymentMethodTotal, error)
}

func (m *mockLedgerService) CreateEntry(ctx context.Context, userID string, input assetledger.Input) (ledger.Entry, error) {
	if m.createEntryFn != nil {
		return m.createEntryFn(ctx, userID, input)
	}
	return ledger.Entry{}, nil
}

func (m *mockLedgerService) UpdateEntry(ctx context.Context, userID, id string, input assetledger.Input) (ledger.Entry, error) {
	if m.updateEntryFn != nil {
		return m.updateEntryFn(ctx, userID, id, input)
	}
	return ledger.Entry{}, nil
}

func (m *mockLedgerService) DeleteEntry(ctx context.Context, userID, id, rawType string) error {
	if m.deleteEntryFn != nil {
		return m.deleteEntryFn(ctx, userID, id, rawType)
	}
	return nil
}

func (m *mockLedgerService) ListEntries(ctx context.Context, userID, month string) ([]ledger.Entry, error) {
	if m.listEntriesFn != nil {
		return m.listEntriesFn(ctx, userID, month)
	}
	return []ledger.Entry{}, nil
}

func (m *mockLedgerService) Balance(ctx context.Context, userID string) (ledger.Balance, error) {
	if m.balanceFn != nil {
		return m.balanceFn(ctx, userID)
	}
	return ledger.Balance{}, nil
}

func (m *mockLedgerService) PaymentMethods(ctx context.Context, userID, month string) ([]ledger.PaymentMethodTotal, error) {
	if m.paymentMethodsFn != nil {
		return m.paymentMethodsFn(ctx, userID, month)
	}
	return []ledger.PaymentMethodTotal{}, nil
}

func TestLedgerHandler_List(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	svc := &mockLedgerService{
		listEntriesFn: func(_ context.Context, _, month string) ([]ledger.Entry, error) {
			if month != "2026-03" {
				t.Errorf("month = %q", month)
			}
			return []ledger.Entry{
				{ID: "t1", Type: ledger.EntryTypeSavings, Amount: 20000, Date: date, Source: ledger.SourceTransactions},
				{ID: "e1", Type: ledger.EntryTypePayment, Amount: 1200, Date: date, CategoryID: "c1", Source: ledger.SourceExpenses},
			}, nil
		},
	}
	h := NewLedgerHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/ledger?month=2026-03", nil), "user-1")
	w := httptest.NewRecorder()
	h.List(w, req)

	assertStatus(t, w, http.StatusOK)
	var body []ledgerEntryResponse
	decodeBody(t, w, &body)
	if len(body) != 2 {
		t.Fatalf("len = %d, want 2", len(body))
	}
	if body[0].Type != "savings" || body[0].Label != "貯金" || body[0].Source != "transactions" {
		t.Errorf("body[0] = %+v", body[0])
	}
	if body[1].Date != "2026-03-10" || body[1].Label != "支払い" {
		t.Errorf("body[1] = %+v", body[1])
	}
}

func TestLedgerHandler_Create(t *testing.T) {
	svc := &mockLedgerService{
		createEntryFn: func(_ context.Context, _ string, input assetledger.Input) (ledger.Entry, error) {
			if input.Type != "transfer" || input.FromAccount != "普通預金" || input.ToAccount != "定期預金" {
				t.Errorf("input = %+v", input)
			}
			return ledger.Entry{ID: "t-new", Type: ledger.EntryTypeTransfer, Amount: input.Amount, Source: ledger.SourceTransactions}, nil
		},
	}
	h := NewLedgerHandler(svc)

	req := withUserID(newJSONRequest(http.MethodPost, "/api/ledger",
		`{"type":"transfer","amount":50000,"date":"2026-03-01","from_account":"普通預金","to_account":"定期預金"}`), "user-1")
	w := httptest.NewRecorder()
	h.Create(w, req)

	assertStatus(t, w, http.StatusCreated)
	var body ledgerEntryResponse
	decodeBody(t, w, &body)
	if body.ID != "t-new" || body.Amount != 50000 {
		t.Errorf("body = %+v", body)
	}
}

func TestLedgerHandler_Create_InvalidType(t *testing.T) {
	svc := &mockLedgerService{
		createEntryFn: func(_ context.Context, _ string, input assetledger.Input) (ledger.Entry, error) {
			return ledger.Entry{}, model.NewInvalidEntryTypeError(input.Type)
		},
	}
	h := NewLedgerHandler(svc)

	req := withUserID(newJSONRequest(http.MethodPost, "/api/ledger", `{"type":"loan","amount":1}`), "user-1")
	w := httptest.NewRecorder()
	h.Create(w, req)

	assertStatus(t, w, http.StatusBadRequest)
	if body := decodeAPIError(t, w); body.Code != model.ErrCodeInvalidEntryType {
		t.Errorf("code = %q", body.Code)
	}
}

func TestLedgerHandler_Update(t *testing.T) {
	svc := &mockLedgerService{
		updateEntryFn: func(_ context.Context, _, id string, input assetledger.Input) (ledger.Entry, error) {
			if id != "t1" {
				t.Errorf("id = %q", id)
			}
			return ledger.Entry{ID: id, Type: ledger.EntryTypeSavings, Amount: input.Amount}, nil
		},
	}
	h := NewLedgerHandler(svc)

	req := newJSONRequest(http.MethodPut, "/api/ledger/t1", `{"type":"savings","amount":30000,"date":"2026-03-01"}`)
	req = withChiURLParam(withUserID(req, "user-1"), "id", "t1")
	w := httptest.NewRecorder()
	h.Update(w, req)

	assertStatus(t, w, http.StatusOK)
}

func TestLedgerHandler_Delete_PassesType(t *testing.T) {
	var gotID, gotType string
	svc := &mockLedgerService{
		deleteEntryFn: func(_ context.Context, _, id, rawType string) error {
			gotID, gotType = id, rawType
			return nil
		},
	}
	h := NewLedgerHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/ledger/t1?type=savings", nil)
	req = withChiURLParam(withUserID(req, "user-1"), "id", "t1")
	w := httptest.NewRecorder()
	h.Delete(w, req)

	assertStatus(t, w, http.StatusNoContent)
	if gotID != "t1" || gotType != "savings" {
		t.Errorf("DeleteEntry called with (%q, %q)", gotID, gotType)
	}
}

func TestLedgerHandler_Delete_NotFound(t *testing.T) {
	svc := &mockLedgerService{
		deleteEntryFn: func(_ context.Context, _, id, _ string) error {
			return model.NewEntryNotFoundError(id)
		},
	}
	h := NewLedgerHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/ledger/t1?type=transfer", nil)
	req = withChiURLParam(withUserID(req, "user-1"), "id", "t1")
	w := httptest.NewRecorder()
	h.Delete(w, req)

	assertStatus(t, w, http.StatusNotFound)
}

func TestLedgerHandler_Balance(t *testing.T) {
	svc := &mockLedgerService{
		balanceFn: func(context.Context, string) (ledger.Balance, error) {
			return ledger.Balance{Total: 250000, Savings: 20000, Available: 230000}, nil
		},
	}
	h := NewLedgerHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/ledger/balance", nil), "user-1")
	w := httptest.NewRecorder()
	h.Balance(w, req)

	assertStatus(t, w, http.StatusOK)
	var body balanceResponse
	decodeBody(t, w, &body)
	if body.Total != 250000 || body.Savings != 20000 || body.Available != 230000 {
		t.Errorf("body = %+v", body)
	}
}

func TestLedgerHandler_PaymentMethods(t *testing.T) {
	svc := &mockLedgerService{
		paymentMethodsFn: func(_ context.Context, _, month string) ([]ledger.PaymentMethodTotal, error) {
			return []ledger.PaymentMethodTotal{{Method: "現金", Amount: 3000, Count: 2}}, nil
		},
	}
	h := NewLedgerHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/ledger/payment-methods?month=2026-03", nil), "user-1")
	w := httptest.NewRecorder()
	h.PaymentMethods(w, req)

	assertStatus(t, w, http.StatusOK)
	var body []paymentMethodResponse
	decodeBody(t, w, &body)
	if len(body) != 1 || body[0].Method != "現金" || body[0].Count != 2 {
		t.Errorf("body = %+v", body)
	}
}
