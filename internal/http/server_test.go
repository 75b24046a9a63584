package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"karkhana/internal/services"
	"karkhana/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	s := NewServer(Options{Addr: ":0"}, repo, services.NewLedgerService(repo, nil))
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func createWallet(t *testing.T, s *Server, name, balance string) walletResponse {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/api/v1/wallets", map[string]any{
		"name": name, "type": "physical", "balance": balance,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create wallet status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[walletResponse](t, rec)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if rec := doRequest(t, s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodGet, "/metrics", nil); rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d", rec.Code)
	}
}

func TestCreateTransactionUpdatesWallet(t *testing.T) {
	s := newTestServer(t)
	w := createWallet(t, s, "Cash Box", "1000.00")

	rec := doRequest(t, s, http.MethodPost, "/api/v1/transactions", map[string]any{
		"amount":      "250.50",
		"type":        "expense",
		"description": "angle iron",
		"date":        "2024-03-05",
		"wallet_id":   w.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/wallets/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get wallet status = %d", rec.Code)
	}
	got := decodeBody[walletResponse](t, rec)
	if got.Balance != "749.50" {
		t.Errorf("wallet balance = %s, want 749.50", got.Balance)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)
	createWallet(t, s, "Cash Box", "0.00")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{
			name: "bad amount",
			body: map[string]any{"amount": "abc", "type": "income", "description": "x", "date": "2024-03-05"},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "bad type",
			body: map[string]any{"amount": "10.00", "type": "transfer", "description": "x", "date": "2024-03-05"},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "unknown field",
			body: map[string]any{"amount": "10.00", "type": "income", "description": "x", "date": "2024-03-05", "extra": 1},
			want: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/v1/transactions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestGetMissingWallet(t *testing.T) {
	s := newTestServer(t)
	if rec := doRequest(t, s, http.MethodGet, "/api/v1/wallets/999", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCreateTransactionMissingWallet(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/transactions", map[string]any{
		"amount":      "10.00",
		"type":        "income",
		"description": "x",
		"date":        "2024-03-05",
		"wallet_id":   999,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404, body %s", rec.Code, rec.Body.String())
	}
}

func TestContactDebtIsDefault(t *testing.T) {
	s := newTestServer(t)
	createWallet(t, s, "Cash Box", "0.00")

	rec := doRequest(t, s, http.MethodPost, "/api/v1/contacts", map[string]any{"name": "Sharma Traders"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contact status = %d", rec.Code)
	}
	c := decodeBody[contactResponse](t, rec)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/transactions", map[string]any{
		"amount":      "1500.00",
		"type":        "expense",
		"description": "material supplied on credit",
		"date":        "2024-03-05",
		"contact_id":  c.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction status = %d, body %s", rec.Code, rec.Body.String())
	}
	tr := decodeBody[transactionResponse](t, rec)
	if !tr.IsDebt {
		t.Error("contact-linked transaction should default to debt tracking")
	}
}

func TestSettleContactFlow(t *testing.T) {
	s := newTestServer(t)
	w := createWallet(t, s, "Cash Box", "0.00")

	rec := doRequest(t, s, http.MethodPost, "/api/v1/contacts", map[string]any{"name": "Verma & Sons"})
	c := decodeBody[contactResponse](t, rec)

	// Nothing to settle yet.
	rec = doRequest(t, s, http.MethodPost, "/api/v1/contacts/1/settle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("settle status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp := decodeBody[settleResponse](t, rec); resp.Settled {
		t.Error("settled = true on a zero balance")
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/transactions", map[string]any{
		"amount":      "2000.00",
		"type":        "expense",
		"description": "gate fabrication on credit",
		"date":        "2024-03-05",
		"contact_id":  c.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/contacts/1/balance", nil)
	bal := decodeBody[contactBalanceResponse](t, rec)
	if bal.Balance != "2000.00" || bal.Standing != "debtor" {
		t.Fatalf("balance = %s standing = %s, want 2000.00 debtor", bal.Balance, bal.Standing)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/contacts/1/settle", map[string]any{"wallet_id": w.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("settle status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[settleResponse](t, rec)
	if !resp.Settled || resp.Transaction == nil {
		t.Fatal("expected a settlement transaction")
	}
	if resp.Transaction.Type != "income" || resp.Transaction.Amount != "2000.00" {
		t.Errorf("settlement = %s %s, want income 2000.00", resp.Transaction.Type, resp.Transaction.Amount)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/contacts/1/balance", nil)
	bal = decodeBody[contactBalanceResponse](t, rec)
	if bal.Standing != "settled" {
		t.Errorf("standing after settle = %s, want settled", bal.Standing)
	}
}

func TestBillLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/bills", map[string]any{
		"title": "Main gate",
		"date":  "2024-03-10",
		"items": []map[string]any{
			{"description": "MS sheet", "length": 4, "breadth": 5, "nos": 2, "unit": "sqft", "rate": "12.50"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill status = %d, body %s", rec.Code, rec.Body.String())
	}
	bill := decodeBody[documentResponse](t, rec)
	if bill.Status != "draft" {
		t.Errorf("new bill status = %s, want draft", bill.Status)
	}
	if bill.Total != "500.00" {
		t.Errorf("bill total = %s, want 500.00", bill.Total)
	}
	if len(bill.Items) != 1 || bill.Items[0].Quantity != 40 {
		t.Errorf("items = %+v, want one item with quantity 40", bill.Items)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/v1/bills/1/status", map[string]any{"status": "paid"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[documentResponse](t, rec); got.Status != "paid" {
		t.Errorf("bill status = %s, want paid", got.Status)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/v1/bills/1/status", map[string]any{"status": "overdue"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid status code = %d, want 422", rec.Code)
	}

	// Estimates and bills live in separate namespaces.
	rec = doRequest(t, s, http.MethodGet, "/api/v1/estimates/1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("bill visible as estimate, status = %d", rec.Code)
	}
}

func TestDashboardCaching(t *testing.T) {
	s := newTestServer(t)
	w := createWallet(t, s, "Cash Box", "0.00")

	rec := doRequest(t, s, http.MethodPost, "/api/v1/transactions", map[string]any{
		"amount": "900.00", "type": "income", "description": "advance", "date": "2024-03-05", "wallet_id": w.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/dashboard/financials?month=2024-03", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, body %s", rec.Code, rec.Body.String())
	}
	summary := decodeBody[summaryResponse](t, rec)
	if summary.Income != "900.00" {
		t.Errorf("income = %s, want 900.00", summary.Income)
	}
	if s.summaryCache.Size() != 1 {
		t.Errorf("cache size = %d, want 1", s.summaryCache.Size())
	}

	// A mutation purges the cache so the next read recomputes.
	rec = doRequest(t, s, http.MethodPost, "/api/v1/transactions", map[string]any{
		"amount": "100.00", "type": "expense", "description": "electrodes", "date": "2024-03-06", "wallet_id": w.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction status = %d", rec.Code)
	}
	if s.summaryCache.Size() != 0 {
		t.Errorf("cache size after mutation = %d, want 0", s.summaryCache.Size())
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/dashboard/financials?month=2024-03", nil)
	summary = decodeBody[summaryResponse](t, rec)
	if summary.Expense != "100.00" {
		t.Errorf("expense = %s, want 100.00", summary.Expense)
	}
}

func TestAttendanceAndPayrollEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/staff", map[string]any{
		"name": "Ramu", "role": "welder", "daily_rate": "700.00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create staff status = %d, body %s", rec.Code, rec.Body.String())
	}

	for _, day := range []struct{ date, status string }{
		{"2024-03-04", "Present"},
		{"2024-03-05", "Half-Day"},
		{"2024-03-06", "Absent"},
	} {
		rec = doRequest(t, s, http.MethodPut, "/api/v1/staff/1/attendance", map[string]any{
			"date": day.date, "status": day.status,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("mark attendance status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/staff/1/advances", map[string]any{
		"amount": "300.00", "date": "2024-03-05",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create advance status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/staff/1/payroll?from=2024-03-01&to=2024-03-31", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("payroll status = %d, body %s", rec.Code, rec.Body.String())
	}
	p := decodeBody[payrollResponse](t, rec)
	if p.EffectiveDays != 1.5 {
		t.Errorf("effective days = %v, want 1.5", p.EffectiveDays)
	}
	if p.Earned != "1050.00" {
		t.Errorf("earned = %s, want 1050.00", p.Earned)
	}
	if p.NetPayable != "750.00" {
		t.Errorf("net payable = %s, want 750.00", p.NetPayable)
	}
}

func TestPurchaseAndInventoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/inventory", map[string]any{
		"name": "MS Pipe 1in", "unit": "ft", "stock": 10, "reorder_level": 20,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create inventory status = %d, body %s", rec.Code, rec.Body.String())
	}
	item := decodeBody[inventoryItemResponse](t, rec)
	if !item.LowStock {
		t.Error("stock 10 with reorder level 20 should be flagged low")
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/purchases", map[string]any{
		"date": "2024-03-07",
		"items": []map[string]any{
			{"item_id": item.ID, "description": "MS Pipe 1in", "quantity": 24, "rate": "45.00"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create purchase status = %d, body %s", rec.Code, rec.Body.String())
	}
	p := decodeBody[purchaseResponse](t, rec)
	if p.Total != "1080.00" {
		t.Errorf("purchase total = %s, want 1080.00", p.Total)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/inventory", nil)
	items := decodeBody[[]inventoryItemResponse](t, rec)
	if len(items) != 1 || items[0].Stock != 34 {
		t.Errorf("inventory = %+v, want one item with stock 34", items)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/v1/budgets", map[string]any{
		"month": "2024-03", "limit": "50000.00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("set budget status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Same month again replaces the limit instead of duplicating.
	rec = doRequest(t, s, http.MethodPut, "/api/v1/budgets", map[string]any{
		"month": "2024-03", "limit": "60000.00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("set budget status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/budgets?month=2024-03", nil)
	budgets := decodeBody[[]budgetResponse](t, rec)
	if len(budgets) != 1 || budgets[0].Limit != "60000.00" {
		t.Errorf("budgets = %+v, want one with limit 60000.00", budgets)
	}
}
