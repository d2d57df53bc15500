package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fakturo/fakturo/internal/models"
)

// ValidationError reports which submission fields failed the
// pre-submission checks. These never reach the network layer.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateEIK validates a Bulgarian company registry number (9 or 13 digits).
func ValidateEIK(eik string) error {
	if len(eik) != 9 && len(eik) != 13 {
		return fmt.Errorf("EIK must be 9 or 13 digits: %s", eik)
	}
	for _, r := range eik {
		if r < '0' || r > '9' {
			return fmt.Errorf("EIK must contain only digits: %s", eik)
		}
	}
	return nil
}

// ValidateAmount validates a monetary amount
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive: %.2f", amount)
	}
	return nil
}

// ValidateInvoiceCreate runs the required-field checks an invoice must
// pass before submission: supplier, invoice number and a positive total.
func ValidateInvoiceCreate(inv models.InvoiceCreate) error {
	fields := make(map[string]string)

	if strings.TrimSpace(inv.Supplier) == "" {
		fields["supplier"] = "доставчикът е задължителен"
	}
	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		fields["invoice_number"] = "номерът на фактурата е задължителен"
	}
	if inv.TotalAmount <= 0 {
		fields["total_amount"] = "общата сума трябва да е положителна"
	}
	if inv.Date == "" {
		fields["date"] = "датата е задължителна"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateDailyRevenueCreate checks a revenue entry before submission.
func ValidateDailyRevenueCreate(rev models.DailyRevenueCreate) error {
	fields := make(map[string]string)

	if rev.Date == "" {
		fields["date"] = "датата е задължителна"
	}
	if rev.FiscalRevenue < 0 {
		fields["fiscal_revenue"] = "оборотът не може да е отрицателен"
	}
	if rev.PocketMoney < 0 {
		fields["pocket_money"] = "джобчето не може да е отрицателно"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateExpenseCreate checks a non-invoice expense before submission.
func ValidateExpenseCreate(exp models.NonInvoiceExpenseCreate) error {
	fields := make(map[string]string)

	if strings.TrimSpace(exp.Description) == "" {
		fields["description"] = "описанието е задължително"
	}
	if exp.Amount <= 0 {
		fields["amount"] = "сумата трябва да е положителна"
	}
	if exp.Date == "" {
		fields["date"] = "датата е задължителна"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
