package models

import "time"

// DailyRevenue is one day's recorded turnover. FiscalRevenue goes through
// the cash register and counts toward VAT; PocketMoney does not.
type DailyRevenue struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CompanyID     string    `json:"company_id,omitempty"`
	Date          string    `json:"date"`
	FiscalRevenue float64   `json:"fiscal_revenue"`
	PocketMoney   float64   `json:"pocket_money"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// DailyRevenueCreate upserts the record for Date (YYYY-MM-DD).
type DailyRevenueCreate struct {
	Date          string  `json:"date"`
	FiscalRevenue float64 `json:"fiscal_revenue"`
	PocketMoney   float64 `json:"pocket_money"`
	Notes         string  `json:"notes,omitempty"`
}

// NonInvoiceExpense is an expense with no supplier invoice behind it.
type NonInvoiceExpense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CompanyID   string    `json:"company_id,omitempty"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        string    `json:"date"`
	Category    string    `json:"category,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NonInvoiceExpenseCreate records a new expense.
type NonInvoiceExpenseCreate struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// DateRange filters list endpoints by inclusive YYYY-MM-DD bounds.
// Empty bounds are omitted from the query string.
type DateRange struct {
	StartDate string
	EndDate   string
}
