package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/models"
)

func sampleInvoices() []models.Invoice {
	return []models.Invoice{
		{
			Supplier:         "Метро Кеш енд Кери",
			InvoiceNumber:    "0000012345",
			AmountWithoutVAT: 100,
			VATAmount:        20,
			TotalAmount:      120,
			Date:             time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Notes:            "брашно и мая",
		},
		{
			Supplier:         "Кауфланд",
			InvoiceNumber:    "0000099999",
			AmountWithoutVAT: 50,
			VATAmount:        10,
			TotalAmount:      60,
			Date:             time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteInvoices(t *testing.T) {
	dir := t.TempDir()
	writer := NewExcelWriter(dir, zap.NewNop())

	summary := &models.Summary{
		TotalInvoiceAmount: 180,
		TotalInvoiceVAT:    30,
		VATToPay:           -30,
		InvoiceCount:       2,
	}

	path, err := writer.WriteInvoices(sampleInvoices(), summary, "test.xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Фактури")
	assert.Contains(t, sheets, "Обобщение")
	assert.NotContains(t, sheets, "Sheet1")

	header, err := f.GetCellValue("Фактури", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Доставчик", header)

	supplier, err := f.GetCellValue("Фактури", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Метро Кеш енд Кери", supplier)

	date, err := f.GetCellValue("Фактури", "A3")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", date)

	total, err := f.GetCellValue("Фактури", "F2")
	require.NoError(t, err)
	assert.Equal(t, "120", total)

	vatLabel, err := f.GetCellValue("Обобщение", "A6")
	require.NoError(t, err)
	assert.Equal(t, "ДДС за плащане", vatLabel)
}

func TestWriteInvoicesWithoutSummary(t *testing.T) {
	writer := NewExcelWriter(t.TempDir(), zap.NewNop())

	path, err := writer.WriteInvoices(nil, nil, "empty.xlsx")
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.NotContains(t, f.GetSheetList(), "Обобщение")

	header, err := f.GetCellValue("Фактури", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Дата", header)
}

func TestBuildInvoiceWorkbookInMemory(t *testing.T) {
	f, err := BuildInvoiceWorkbook(sampleInvoices(), nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Фактури")
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus two invoices")
}
