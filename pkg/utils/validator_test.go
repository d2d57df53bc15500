package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakturo/fakturo/internal/models"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ivan@mail.bg"))
	assert.NoError(t, ValidateEmail("first.last+tag@example.co.uk"))

	for _, invalid := range []string{"", "ivan", "ivan@", "@mail.bg", "ivan@mail"} {
		assert.Error(t, ValidateEmail(invalid), "email %q must be rejected", invalid)
	}
}

func TestValidateEIK(t *testing.T) {
	assert.NoError(t, ValidateEIK("123456789"))
	assert.NoError(t, ValidateEIK("1234567890123"))

	tests := []struct {
		name string
		eik  string
	}{
		{"too short", "12345678"},
		{"between valid lengths", "1234567890"},
		{"letters", "12345678A"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateEIK(tt.eik))
		})
	}
}

func TestValidateInvoiceCreate(t *testing.T) {
	valid := models.InvoiceCreate{
		Supplier:      "Метро",
		InvoiceNumber: "0000000001",
		TotalAmount:   120,
		Date:          "2025-03-01",
	}
	assert.NoError(t, ValidateInvoiceCreate(valid))

	err := ValidateInvoiceCreate(models.InvoiceCreate{Supplier: "  ", TotalAmount: -5})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "supplier")
	assert.Contains(t, vErr.Fields, "invoice_number")
	assert.Contains(t, vErr.Fields, "total_amount")
	assert.Contains(t, vErr.Fields, "date")
}

func TestValidateDailyRevenueCreate(t *testing.T) {
	// A zero-turnover day is a legal record.
	assert.NoError(t, ValidateDailyRevenueCreate(models.DailyRevenueCreate{Date: "2025-03-01"}))

	err := ValidateDailyRevenueCreate(models.DailyRevenueCreate{FiscalRevenue: -1, PocketMoney: -2})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "date")
	assert.Contains(t, vErr.Fields, "fiscal_revenue")
	assert.Contains(t, vErr.Fields, "pocket_money")
}

func TestValidateExpenseCreate(t *testing.T) {
	assert.NoError(t, ValidateExpenseCreate(models.NonInvoiceExpenseCreate{
		Description: "Гориво",
		Amount:      50,
		Date:        "2025-03-01",
	}))

	err := ValidateExpenseCreate(models.NonInvoiceExpenseCreate{Amount: 0})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "description")
	assert.Contains(t, vErr.Fields, "amount")
}
