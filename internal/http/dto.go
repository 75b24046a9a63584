package http

import (
	"karkhana/internal/core"
	"karkhana/internal/finance"
	"karkhana/internal/storage"
)

// Amounts travel as decimal rupee strings ("1250.50") in both directions;
// paise never leak onto the wire.

type walletRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance,omitempty"`
}

type walletResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
}

func toWalletResponse(w core.Wallet) walletResponse {
	return walletResponse{
		ID:      w.ID,
		Name:    w.Name,
		Type:    string(w.Type),
		Balance: w.Balance.String(),
	}
}

type transactionRequest struct {
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	Description string `json:"description"`
	Date        string `json:"date"`
	ContactID   *int64 `json:"contact_id,omitempty"`
	WalletID    *int64 `json:"wallet_id,omitempty"`
	ProjectID   *int64 `json:"project_id,omitempty"`
	IsDebt      *bool  `json:"is_debt,omitempty"`
}

// toTransaction converts the request body. When the field is absent, a
// contact-linked transaction counts toward the contact's debt balance.
func (req transactionRequest) toTransaction() (core.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	isDebt := req.ContactID != nil
	if req.IsDebt != nil {
		isDebt = *req.IsDebt
	}
	return core.Transaction{
		Amount:      amount,
		Type:        core.TransactionType(req.Type),
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Date:        date,
		ContactID:   req.ContactID,
		WalletID:    req.WalletID,
		ProjectID:   req.ProjectID,
		IsDebt:      isDebt,
	}, nil
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	Description string `json:"description"`
	Date        string `json:"date"`
	ContactID   *int64 `json:"contact_id,omitempty"`
	WalletID    *int64 `json:"wallet_id,omitempty"`
	ProjectID   *int64 `json:"project_id,omitempty"`
	IsDebt      bool   `json:"is_debt"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Amount:      t.Amount.String(),
		Type:        string(t.Type),
		CategoryID:  t.CategoryID,
		Description: t.Description,
		Date:        formatDate(t.Date),
		ContactID:   t.ContactID,
		WalletID:    t.WalletID,
		ProjectID:   t.ProjectID,
		IsDebt:      t.IsDebt,
	}
}

func toTransactionResponses(txns []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

type contactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type contactBalanceResponse struct {
	ContactID int64  `json:"contact_id"`
	Balance   string `json:"balance"`
	Standing  string `json:"standing"`
}

type settleRequest struct {
	WalletID *int64 `json:"wallet_id,omitempty"`
}

type settleResponse struct {
	Settled     bool                 `json:"settled"`
	Transaction *transactionResponse `json:"transaction,omitempty"`
}

type staffRequest struct {
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	DailyRate string `json:"daily_rate"`
	Phone     string `json:"phone,omitempty"`
}

type staffResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	DailyRate string `json:"daily_rate"`
	Phone     string `json:"phone"`
}

func toStaffResponse(s core.Staff) staffResponse {
	return staffResponse{
		ID:        s.ID,
		Name:      s.Name,
		Role:      s.Role,
		DailyRate: s.DailyRate.String(),
		Phone:     s.Phone,
	}
}

type attendanceRequest struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

type attendanceResponse struct {
	StaffID int64  `json:"staff_id"`
	Date    string `json:"date"`
	Status  string `json:"status"`
}

type advanceRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Notes  string `json:"notes,omitempty"`
}

type advanceResponse struct {
	ID      int64  `json:"id"`
	StaffID int64  `json:"staff_id"`
	Amount  string `json:"amount"`
	Date    string `json:"date"`
	Notes   string `json:"notes"`
}

type payrollResponse struct {
	StaffID       int64   `json:"staff_id"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	PresentDays   int     `json:"present_days"`
	HalfDays      int     `json:"half_days"`
	AbsentDays    int     `json:"absent_days"`
	EffectiveDays float64 `json:"effective_days"`
	Earned        string  `json:"earned"`
	Advances      string  `json:"advances"`
	NetPayable    string  `json:"net_payable"`
}

type lineItemRequest struct {
	Description string  `json:"description"`
	Length      float64 `json:"length,omitempty"`
	Breadth     float64 `json:"breadth,omitempty"`
	Nos         float64 `json:"nos,omitempty"`
	Unit        string  `json:"unit"`
	Rate        string  `json:"rate"`
}

type documentRequest struct {
	Number    string            `json:"number,omitempty"`
	ContactID *int64            `json:"contact_id,omitempty"`
	Title     string            `json:"title"`
	Date      string            `json:"date"`
	Status    string            `json:"status,omitempty"`
	Items     []lineItemRequest `json:"items"`
}

func (req documentRequest) toDocument() (core.Document, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Document{}, err
	}
	d := core.Document{
		Number:    req.Number,
		ContactID: req.ContactID,
		Title:     req.Title,
		Date:      date,
		Status:    core.BillStatus(req.Status),
	}
	for _, item := range req.Items {
		rate, err := parseRate(item.Rate)
		if err != nil {
			return core.Document{}, err
		}
		nos := item.Nos
		if nos == 0 {
			nos = 1
		}
		d.Items = append(d.Items, core.LineItem{
			Description: item.Description,
			Dimensions: core.Dimensions{
				Length:  item.Length,
				Breadth: item.Breadth,
				Nos:     nos,
				Unit:    core.Unit(item.Unit),
			},
			Rate: rate,
		})
	}
	return d, nil
}

type lineItemResponse struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Length      float64 `json:"length"`
	Breadth     float64 `json:"breadth"`
	Nos         float64 `json:"nos"`
	Unit        string  `json:"unit"`
	Rate        string  `json:"rate"`
	Quantity    float64 `json:"quantity"`
	Amount      string  `json:"amount"`
}

type documentResponse struct {
	ID        int64              `json:"id"`
	Number    string             `json:"number"`
	ContactID *int64             `json:"contact_id,omitempty"`
	Title     string             `json:"title"`
	Date      string             `json:"date"`
	Status    string             `json:"status,omitempty"`
	Total     string             `json:"total"`
	Items     []lineItemResponse `json:"items,omitempty"`
}

func toDocumentResponse(d core.Document) documentResponse {
	resp := documentResponse{
		ID:        d.ID,
		Number:    d.Number,
		ContactID: d.ContactID,
		Title:     d.Title,
		Date:      formatDate(d.Date),
		Status:    string(d.Status),
		Total:     d.Total.String(),
	}
	for _, li := range d.Items {
		resp.Items = append(resp.Items, lineItemResponse{
			ID:          li.ID,
			Description: li.Description,
			Length:      li.Dimensions.Length,
			Breadth:     li.Dimensions.Breadth,
			Nos:         li.Dimensions.Nos,
			Unit:        string(li.Dimensions.Unit),
			Rate:        li.Rate.String(),
			Quantity:    li.Quantity,
			Amount:      li.Amount.String(),
		})
	}
	return resp
}

type billStatusRequest struct {
	Status string `json:"status"`
}

type inventoryItemRequest struct {
	Name         string  `json:"name"`
	Unit         string  `json:"unit,omitempty"`
	Stock        float64 `json:"stock,omitempty"`
	ReorderLevel float64 `json:"reorder_level,omitempty"`
}

type purchaseItemRequest struct {
	ItemID      *int64  `json:"item_id,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        string  `json:"rate"`
}

type purchaseRequest struct {
	SupplierID *int64                `json:"supplier_id,omitempty"`
	Date       string                `json:"date"`
	Items      []purchaseItemRequest `json:"items"`
}

func (req purchaseRequest) toPurchase() (core.Purchase, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Purchase{}, err
	}
	p := core.Purchase{SupplierID: req.SupplierID, Date: date}
	for _, item := range req.Items {
		rate, err := parseRate(item.Rate)
		if err != nil {
			return core.Purchase{}, err
		}
		p.Items = append(p.Items, core.PurchaseItem{
			ItemID:      item.ItemID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        rate,
		})
	}
	return p, nil
}

type purchaseItemResponse struct {
	ID          int64   `json:"id"`
	ItemID      *int64  `json:"item_id,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        string  `json:"rate"`
	Amount      string  `json:"amount"`
}

type purchaseResponse struct {
	ID         int64                  `json:"id"`
	SupplierID *int64                 `json:"supplier_id,omitempty"`
	Date       string                 `json:"date"`
	Total      string                 `json:"total"`
	Items      []purchaseItemResponse `json:"items,omitempty"`
}

func toPurchaseResponse(p core.Purchase) purchaseResponse {
	resp := purchaseResponse{
		ID:         p.ID,
		SupplierID: p.SupplierID,
		Date:       formatDate(p.Date),
		Total:      p.Total.String(),
	}
	for _, it := range p.Items {
		resp.Items = append(resp.Items, purchaseItemResponse{
			ID:          it.ID,
			ItemID:      it.ItemID,
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate.String(),
			Amount:      it.Amount.String(),
		})
	}
	return resp
}

type shoppingItemRequest struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity,omitempty"`
}

type shoppingItemDoneRequest struct {
	Done bool `json:"done"`
}

type categoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type budgetRequest struct {
	Month      string `json:"month"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Limit      string `json:"limit"`
}

type budgetResponse struct {
	ID         int64  `json:"id"`
	Month      string `json:"month"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Limit      string `json:"limit"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:         b.ID,
		Month:      b.Month.String(),
		CategoryID: b.CategoryID,
		Limit:      b.Limit.String(),
	}
}

type reconcileResponse struct {
	WalletID int64  `json:"wallet_id"`
	Before   string `json:"before"`
	After    string `json:"after"`
	Drift    string `json:"drift"`
}

func toReconcileResponse(rr storage.ReconcileResult) reconcileResponse {
	return reconcileResponse{
		WalletID: rr.WalletID,
		Before:   rr.Before.String(),
		After:    rr.After.String(),
		Drift:    rr.Drift().String(),
	}
}

type categoryUsageResponse struct {
	Name      string `json:"name"`
	Limit     string `json:"limit"`
	Used      string `json:"used"`
	Remaining string `json:"remaining"`
	Pct       int    `json:"pct"`
}

type summaryResponse struct {
	Month          string                  `json:"month"`
	Income         string                  `json:"income"`
	Expense        string                  `json:"expense"`
	Balance        string                  `json:"balance"`
	BudgetLimit    string                  `json:"budget_limit"`
	BudgetUsed     string                  `json:"budget_used"`
	SpendingPct    int                     `json:"spending_pct"`
	SolvencyGap    string                  `json:"solvency_gap"`
	IsInsolvent    bool                    `json:"is_insolvent"`
	SavingsRatePct int                     `json:"savings_rate_pct"`
	Runway         string                  `json:"runway"`
	TopCategory    string                  `json:"top_category"`
	Categories     []categoryUsageResponse `json:"categories"`
}

func toSummaryResponse(s finance.Summary) summaryResponse {
	resp := summaryResponse{
		Month:          s.Month.String(),
		Income:         s.Income.String(),
		Expense:        s.Expense.String(),
		Balance:        s.Balance.String(),
		BudgetLimit:    s.BudgetLimit.String(),
		BudgetUsed:     s.BudgetUsed.String(),
		SpendingPct:    s.SpendingPct,
		SolvencyGap:    s.Solvency.Gap.String(),
		IsInsolvent:    s.Solvency.IsInsolvent,
		SavingsRatePct: s.SavingsRatePct,
		Runway:         s.Runway,
		TopCategory:    s.TopCategory,
		Categories:     make([]categoryUsageResponse, 0, len(s.Categories)),
	}
	for _, c := range s.Categories {
		resp.Categories = append(resp.Categories, categoryUsageResponse{
			Name:      c.Name,
			Limit:     c.Limit.String(),
			Used:      c.Used.String(),
			Remaining: c.Remaining.String(),
			Pct:       c.Pct,
		})
	}
	return resp
}
