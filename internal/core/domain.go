package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	WalletPhysical WalletType = "physical"
	WalletDigital  WalletType = "digital"
)

const (
	Present AttendanceStatus = "Present"
	Absent  AttendanceStatus = "Absent"
	HalfDay AttendanceStatus = "Half-Day"
)

const (
	BillDraft BillStatus = "draft"
	BillSent  BillStatus = "sent"
	BillPaid  BillStatus = "paid"
)

type (
	TransactionType  string
	WalletType       string
	AttendanceStatus string
	BillStatus       string

	// Month identifies a calendar month. Transactions are bucketed by
	// calendar year/month match, not by range semantics.
	Month struct {
		Year  int
		Month time.Month
	}

	Transaction struct {
		ID          int64
		Amount      Money
		Type        TransactionType
		CategoryID  *int64
		Description string
		Date        time.Time
		ContactID   *int64
		WalletID    *int64
		ProjectID   *int64
		IsDebt      bool
	}

	Wallet struct {
		ID      int64
		Name    string
		Type    WalletType
		Balance Money
	}

	Contact struct {
		ID    int64
		Name  string
		Phone string
		Email string
	}

	Category struct {
		ID   int64
		Name string
		Kind TransactionType
	}

	// Budget is a monthly spending limit. CategoryID nil means the
	// overall month limit.
	Budget struct {
		ID         int64
		Month      Month
		CategoryID *int64
		Limit      Money
	}

	Staff struct {
		ID        int64
		Name      string
		Role      string
		DailyRate Money
		Phone     string
	}

	Attendance struct {
		ID      int64
		StaffID int64
		Date    time.Time
		Status  AttendanceStatus
	}

	Advance struct {
		ID      int64
		StaffID int64
		Amount  Money
		Date    time.Time
		Notes   string
	}

	Supplier struct {
		ID    int64
		Name  string
		Phone string
	}

	InventoryItem struct {
		ID           int64
		Name         string
		Unit         string
		Stock        float64
		ReorderLevel float64
	}

	Purchase struct {
		ID         int64
		SupplierID *int64
		Date       time.Time
		Total      Money
		Items      []PurchaseItem
	}

	PurchaseItem struct {
		ID          int64
		PurchaseID  int64
		ItemID      *int64
		Description string
		Quantity    float64
		Rate        Money
		Amount      Money
	}

	ShoppingItem struct {
		ID          int64
		Description string
		Quantity    float64
		Done        bool
	}

	// Document is the shared header for estimates, bills, and
	// measurements. Status is only meaningful for bills.
	Document struct {
		ID        int64
		Number    string
		ContactID *int64
		Title     string
		Date      time.Time
		Status    BillStatus
		Total     Money
		Items     []LineItem
	}

	// LineItem is one measured row of a document; Quantity and Amount
	// are derived from the dimensions via Extend.
	LineItem struct {
		ID          int64
		DocumentID  int64
		Description string
		Dimensions  Dimensions
		Rate        Money
		Quantity    float64
		Amount      Money
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid type")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyDescription  = errors.New("empty description")
	ErrNegativeDimension = errors.New("negative dimension")
)

// MonthOf returns the calendar month a time falls in.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a "YYYY-MM" month string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// Contains reports whether t falls in this calendar month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// First returns midnight UTC on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) Validate() error {
	if m.Year < 1 || m.Month < time.January || m.Month > time.December {
		return ErrInvalidDate
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

// Sign is +1 for income and -1 for expense: the direction a transaction
// moves its wallet balance.
func (t TransactionType) Sign() int64 {
	if t == Income {
		return 1
	}
	return -1
}

func (w WalletType) Validate() error {
	switch w {
	case WalletPhysical, WalletDigital:
		return nil
	}
	return ErrInvalidType
}

func (s AttendanceStatus) Validate() error {
	switch s {
	case Present, Absent, HalfDay:
		return nil
	}
	return ErrInvalidStatus
}

func (s BillStatus) Validate() error {
	switch s {
	case BillDraft, BillSent, BillPaid:
		return nil
	}
	return ErrInvalidStatus
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Effect is the signed delta this transaction applies to its wallet.
func (t Transaction) Effect() Money {
	return Money{Paise: t.Type.Sign() * t.Amount.Paise}
}

func (w Wallet) Validate() error {
	if len(strings.TrimSpace(w.Name)) == 0 {
		return ErrEmptyName
	}
	return w.Type.Validate()
}

func (c Contact) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	return nil
}

func (s Staff) Validate() error {
	if len(strings.TrimSpace(s.Name)) == 0 {
		return ErrEmptyName
	}
	return s.DailyRate.Validate()
}

func (a Attendance) Validate() error {
	if a.StaffID == 0 {
		return errors.New("missing staff id")
	}
	if a.Date.IsZero() {
		return ErrInvalidDate
	}
	return a.Status.Validate()
}

func (a Advance) Validate() error {
	if a.StaffID == 0 {
		return errors.New("missing staff id")
	}
	if a.Date.IsZero() {
		return ErrInvalidDate
	}
	return a.Amount.Validate()
}

func (d Document) Validate() error {
	if len(strings.TrimSpace(d.Title)) == 0 {
		return errors.New("empty title")
	}
	if d.Date.IsZero() {
		return ErrInvalidDate
	}
	if d.Status != "" {
		if err := d.Status.Validate(); err != nil {
			return err
		}
	}
	for i, item := range d.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return nil
}

func (li LineItem) Validate() error {
	if len(strings.TrimSpace(li.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := li.Dimensions.Validate(); err != nil {
		return err
	}
	if li.Rate.Paise < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p Purchase) Validate() error {
	if p.Date.IsZero() {
		return ErrInvalidDate
	}
	for i, item := range p.Items {
		if len(strings.TrimSpace(item.Description)) == 0 {
			return fmt.Errorf("item %d: %w", i+1, ErrEmptyDescription)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: invalid quantity", i+1)
		}
	}
	return nil
}
