package devserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fakturo/fakturo/internal/models"
)

func TestBuildSummaryVATMath(t *testing.T) {
	invoices := []models.Invoice{
		{TotalAmount: 120, VATAmount: 20},
		{TotalAmount: 60, VATAmount: 10},
	}
	revenues := []models.DailyRevenue{
		{FiscalRevenue: 1200, PocketMoney: 100},
	}
	expenses := []models.NonInvoiceExpense{
		{Amount: 50},
	}

	summary := buildSummary(invoices, revenues, expenses)

	// Sales VAT is the 20% embedded in the gross turnover: 1200*0.2/1.2 = 200.
	assert.Equal(t, 200.0, summary.FiscalVAT)
	// Payable VAT nets out the purchase VAT: 200 - 30 = 170.
	assert.Equal(t, 170.0, summary.VATToPay)
	assert.Equal(t, 1300.0, summary.TotalIncome)
	assert.Equal(t, 230.0, summary.TotalExpense)
	assert.Equal(t, 1070.0, summary.Profit)
	assert.Equal(t, 2, summary.InvoiceCount)
}

func TestBuildSummaryEmpty(t *testing.T) {
	summary := buildSummary(nil, nil, nil)
	assert.Zero(t, summary.VATToPay)
	assert.Zero(t, summary.Profit)
	assert.Zero(t, summary.InvoiceCount)
}

func TestBuildChartData(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	invoices := []models.Invoice{
		{Date: day, TotalAmount: 120, VATAmount: 20},
	}
	revenues := []models.DailyRevenue{
		{Date: "2025-03-10", FiscalRevenue: 600, PocketMoney: 50},
		{Date: "2025-03-11", FiscalRevenue: 120},
	}

	points := buildChartData(invoices, revenues, nil)

	assert.Len(t, points, 2)
	assert.Equal(t, "2025-03-10", points[0].Date)
	assert.Equal(t, "03-10", points[0].Label)
	assert.Equal(t, 650.0, points[0].Income)
	assert.Equal(t, 120.0, points[0].Expense)
	// 600*0.2/1.2 - 20 = 80
	assert.Equal(t, 80.0, points[0].VAT)

	assert.Equal(t, "2025-03-11", points[1].Date)
	assert.Equal(t, 120.0, points[1].Income)
	assert.Zero(t, points[1].Expense)
}

func TestBuildSupplierStats(t *testing.T) {
	invoices := []models.Invoice{
		{Supplier: "Метро", TotalAmount: 300},
		{Supplier: "Метро", TotalAmount: 100},
		{Supplier: "Кауфланд", TotalAmount: 100},
	}

	stats := buildSupplierStats(invoices)

	assert.Len(t, stats, 2)
	assert.Equal(t, "Метро", stats[0].Supplier)
	assert.Equal(t, 2, stats[0].InvoiceCount)
	assert.Equal(t, 400.0, stats[0].TotalAmount)
	assert.Equal(t, 80.0, stats[0].SharePercent)
	assert.Equal(t, "Кауфланд", stats[1].Supplier)
	assert.Equal(t, 20.0, stats[1].SharePercent)
}

func TestBuildItemStatsTracksLastPrice(t *testing.T) {
	older := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
	invoices := []models.Invoice{
		{Date: newer, Supplier: "Кауфланд", Items: []models.InvoiceItem{
			{Name: "Брашно", Quantity: 10, UnitPrice: 1.5, TotalPrice: 15},
		}},
		{Date: older, Supplier: "Метро", Items: []models.InvoiceItem{
			{Name: "Брашно", Quantity: 20, UnitPrice: 1.2, TotalPrice: 24},
		}},
	}

	stats := buildItemStats(invoices)

	assert.Len(t, stats, 1)
	assert.Equal(t, "Брашно", stats[0].Name)
	assert.Equal(t, 30.0, stats[0].Quantity)
	assert.Equal(t, 39.0, stats[0].TotalAmount)
	assert.Equal(t, 1.35, stats[0].AvgUnitPrice)
	assert.Equal(t, 1.5, stats[0].LastUnitPrice, "last price comes from the newest invoice")
	assert.Equal(t, "Кауфланд", stats[0].Supplier)
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, -7), periodStart("week", now))
	assert.Equal(t, now.AddDate(0, 0, -30), periodStart("month", now))
	assert.Equal(t, now.AddDate(-1, 0, 0), periodStart("year", now))
	assert.Equal(t, now.AddDate(-1, 0, 0), periodStart("bogus", now))
}
