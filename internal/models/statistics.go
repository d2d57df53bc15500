package models

// Summary is the server-computed aggregate for a period. All VAT and profit
// math happens on the backend; the client only displays these numbers.
type Summary struct {
	TotalInvoiceAmount      float64 `json:"total_invoice_amount"`
	TotalInvoiceVAT         float64 `json:"total_invoice_vat"`
	TotalFiscalRevenue      float64 `json:"total_fiscal_revenue"`
	TotalPocketMoney        float64 `json:"total_pocket_money"`
	FiscalVAT               float64 `json:"fiscal_vat"`
	VATToPay                float64 `json:"vat_to_pay"`
	TotalNonInvoiceExpenses float64 `json:"total_non_invoice_expenses"`
	TotalIncome             float64 `json:"total_income"`
	TotalExpense            float64 `json:"total_expense"`
	Profit                  float64 `json:"profit"`
	InvoiceCount            int     `json:"invoice_count"`
}

// ChartDataPoint is one day on the income/expense/VAT chart.
type ChartDataPoint struct {
	Date    string  `json:"date"`
	Label   string  `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	VAT     float64 `json:"vat"`
}

// SupplierStat is the server-side ranking entry for one supplier.
type SupplierStat struct {
	Supplier     string  `json:"supplier"`
	InvoiceCount int     `json:"invoice_count"`
	TotalAmount  float64 `json:"total_amount"`
	SharePercent float64 `json:"share_percent"`
}

// ItemStat is the server-side ranking entry for one purchased item.
type ItemStat struct {
	Name          string  `json:"name"`
	Supplier      string  `json:"supplier,omitempty"`
	Quantity      float64 `json:"quantity"`
	TotalAmount   float64 `json:"total_amount"`
	AvgUnitPrice  float64 `json:"avg_unit_price"`
	LastUnitPrice float64 `json:"last_unit_price"`
}

// PriceAlert reports a significant unit-price change detected server-side.
type PriceAlert struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"company_id"`
	ItemName      string  `json:"item_name"`
	Supplier      string  `json:"supplier"`
	OldPrice      float64 `json:"old_price"`
	NewPrice      float64 `json:"new_price"`
	ChangePercent float64 `json:"change_percent"`
	InvoiceID     string  `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	Status        string  `json:"status"`
}
