package models

import "time"

// Company is the tenant every invoice, revenue and expense record is scoped to.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	EIK       string    `json:"eik"`
	VATNumber string    `json:"vat_number,omitempty"`
	MOL       string    `json:"mol,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	BankName  string    `json:"bank_name,omitempty"`
	BankIBAN  string    `json:"bank_iban,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyCreate registers a new company for the current user.
type CompanyCreate struct {
	Name      string `json:"name"`
	EIK       string `json:"eik"`
	VATNumber string `json:"vat_number,omitempty"`
	MOL       string `json:"mol,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
}

// CompanyUpdate carries the edited profile fields; nil means unchanged.
type CompanyUpdate struct {
	Name      *string `json:"name,omitempty"`
	VATNumber *string `json:"vat_number,omitempty"`
	MOL       *string `json:"mol,omitempty"`
	Address   *string `json:"address,omitempty"`
	City      *string `json:"city,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	BankName  *string `json:"bank_name,omitempty"`
	BankIBAN  *string `json:"bank_iban,omitempty"`
}

// NotificationSettings controls VAT threshold and periodic reminders.
type NotificationSettings struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	VATThresholdEnabled bool      `json:"vat_threshold_enabled"`
	VATThresholdAmount  float64   `json:"vat_threshold_amount"`
	PeriodicEnabled     bool      `json:"periodic_enabled"`
	PeriodicDates       []int     `json:"periodic_dates"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NotificationSettingsUpdate carries edited settings; nil means unchanged.
type NotificationSettingsUpdate struct {
	VATThresholdEnabled *bool    `json:"vat_threshold_enabled,omitempty"`
	VATThresholdAmount  *float64 `json:"vat_threshold_amount,omitempty"`
	PeriodicEnabled     *bool    `json:"periodic_enabled,omitempty"`
	PeriodicDates       []int    `json:"periodic_dates,omitempty"`
}
