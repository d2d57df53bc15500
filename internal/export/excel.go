// Package export renders fetched data into local files. The backend
// also serves ready-made exports by URL; this writer exists for the
// CLI, which has no browser to hand a download URL to.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/models"
)

// ExcelWriter renders invoices and the period summary into an .xlsx
// workbook matching the backend's own Excel export layout.
type ExcelWriter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExcelWriter creates a writer that saves workbooks under outputDir.
func NewExcelWriter(outputDir string, logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{
		outputDir: outputDir,
		logger:    logger,
	}
}

var invoiceHeaders = []string{"Дата", "Доставчик", "№ Фактура", "Без ДДС", "ДДС", "Общо", "Бележки"}

// WriteInvoices writes the invoice sheet (and a summary sheet when
// summary is non-nil) and returns the saved file path.
func (w *ExcelWriter) WriteInvoices(invoices []models.Invoice, summary *models.Summary, filename string) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := BuildInvoiceWorkbook(invoices, summary)
	if err != nil {
		return "", err
	}
	defer f.Close()

	outputPath := filepath.Join(w.outputDir, filename)
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	w.logger.Info("Excel export written",
		zap.String("path", outputPath),
		zap.Int("invoice_count", len(invoices)))
	return outputPath, nil
}

// BuildInvoiceWorkbook assembles the export workbook in memory. The
// caller owns the file and must Close it.
func BuildInvoiceWorkbook(invoices []models.Invoice, summary *models.Summary) (*excelize.File, error) {
	f := excelize.NewFile()

	const sheet = "Фактури"
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F46E5"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range invoiceHeaders {
		cell := cellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, inv := range invoices {
		_ = f.SetCellValue(sheet, cellName(1, row+2), inv.Date.Format("2006-01-02"))
		_ = f.SetCellValue(sheet, cellName(2, row+2), inv.Supplier)
		_ = f.SetCellValue(sheet, cellName(3, row+2), inv.InvoiceNumber)
		_ = f.SetCellValue(sheet, cellName(4, row+2), inv.AmountWithoutVAT)
		_ = f.SetCellValue(sheet, cellName(5, row+2), inv.VATAmount)
		_ = f.SetCellValue(sheet, cellName(6, row+2), inv.TotalAmount)
		_ = f.SetCellValue(sheet, cellName(7, row+2), inv.Notes)
	}

	widths := []float64{12, 25, 15, 12, 12, 12, 30}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, width)
	}

	if summary != nil {
		if err := writeSummarySheet(f, summary); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func writeSummarySheet(f *excelize.File, summary *models.Summary) error {
	const sheet = "Обобщение"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	rows := []struct {
		label string
		value interface{}
	}{
		{"Общо фактури", summary.TotalInvoiceAmount},
		{"ДДС по фактури", summary.TotalInvoiceVAT},
		{"Фискализиран оборот", summary.TotalFiscalRevenue},
		{"Джобче", summary.TotalPocketMoney},
		{"ДДС от продажби", summary.FiscalVAT},
		{"ДДС за плащане", summary.VATToPay},
		{"Разходи без фактура", summary.TotalNonInvoiceExpenses},
		{"Общ приход", summary.TotalIncome},
		{"Общ разход", summary.TotalExpense},
		{"Печалба", summary.Profit},
		{"Брой фактури", summary.InvoiceCount},
	}

	for i, row := range rows {
		_ = f.SetCellValue(sheet, cellName(1, i+1), row.label)
		_ = f.SetCellValue(sheet, cellName(2, i+1), row.value)
	}

	_ = f.SetColWidth(sheet, "A", "A", 25)
	_ = f.SetColWidth(sheet, "B", "B", 15)
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
