package models

import "time"

// Budget caps a month's expenses; the backend raises alerts at the threshold.
type Budget struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	Month          string    `json:"month"` // YYYY-MM
	ExpenseLimit   float64   `json:"expense_limit"`
	AlertThreshold float64   `json:"alert_threshold"`
	CreatedAt      time.Time `json:"created_at"`
}

// BudgetSet creates or replaces the budget for Month.
type BudgetSet struct {
	Month          string  `json:"month"`
	ExpenseLimit   float64 `json:"expense_limit"`
	AlertThreshold float64 `json:"alert_threshold,omitempty"`
}

// RecurringExpense is generated automatically on DayOfMonth each month.
type RecurringExpense struct {
	ID            string     `json:"id"`
	CompanyID     string     `json:"company_id"`
	UserID        string     `json:"user_id"`
	Description   string     `json:"description"`
	Amount        float64    `json:"amount"`
	DayOfMonth    int        `json:"day_of_month"` // 1-28
	Category      string     `json:"category,omitempty"`
	IsActive      bool       `json:"is_active"`
	LastGenerated *time.Time `json:"last_generated,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RecurringExpenseCreate registers a monthly recurring expense.
type RecurringExpenseCreate struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DayOfMonth  int     `json:"day_of_month"`
	Category    string  `json:"category,omitempty"`
}

// ForecastPoint is one month of the backend's expense forecast.
type ForecastPoint struct {
	Month     string  `json:"month"`
	Projected float64 `json:"projected"`
	Actual    float64 `json:"actual,omitempty"`
}

// AuditLogEntry records one user action, for the company audit trail.
type AuditLogEntry struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id,omitempty"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Action     string    `json:"action"`      // create, update, delete, login, logout
	EntityType string    `json:"entity_type"` // invoice, expense, revenue, user
	EntityID   string    `json:"entity_id,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
