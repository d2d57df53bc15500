package devserver

import (
	"math"
	"sort"
	"time"

	"github.com/fakturo/fakturo/internal/models"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// buildSummary reproduces the backend's VAT arithmetic: sales VAT is
// 20% embedded in the gross fiscal turnover (0.2/1.2), purchase VAT
// comes from invoices, and pocket money counts toward income only.
func buildSummary(invoices []models.Invoice, revenues []models.DailyRevenue, expenses []models.NonInvoiceExpense) models.Summary {
	var summary models.Summary

	for _, inv := range invoices {
		summary.TotalInvoiceAmount += inv.TotalAmount
		summary.TotalInvoiceVAT += inv.VATAmount
	}
	for _, rev := range revenues {
		summary.TotalFiscalRevenue += rev.FiscalRevenue
		summary.TotalPocketMoney += rev.PocketMoney
	}
	for _, exp := range expenses {
		summary.TotalNonInvoiceExpenses += exp.Amount
	}

	summary.FiscalVAT = summary.TotalFiscalRevenue * 0.2 / 1.2
	summary.VATToPay = summary.FiscalVAT - summary.TotalInvoiceVAT
	summary.TotalIncome = summary.TotalFiscalRevenue + summary.TotalPocketMoney
	summary.TotalExpense = summary.TotalInvoiceAmount + summary.TotalNonInvoiceExpenses
	summary.Profit = summary.TotalIncome - summary.TotalExpense
	summary.InvoiceCount = len(invoices)

	summary.TotalInvoiceAmount = round2(summary.TotalInvoiceAmount)
	summary.TotalInvoiceVAT = round2(summary.TotalInvoiceVAT)
	summary.TotalFiscalRevenue = round2(summary.TotalFiscalRevenue)
	summary.TotalPocketMoney = round2(summary.TotalPocketMoney)
	summary.FiscalVAT = round2(summary.FiscalVAT)
	summary.VATToPay = round2(summary.VATToPay)
	summary.TotalNonInvoiceExpenses = round2(summary.TotalNonInvoiceExpenses)
	summary.TotalIncome = round2(summary.TotalIncome)
	summary.TotalExpense = round2(summary.TotalExpense)
	summary.Profit = round2(summary.Profit)

	return summary
}

// periodStart maps the chart period name to its window start.
func periodStart(period string, now time.Time) time.Time {
	switch period {
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, 0, -30)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// buildChartData groups income, expense and VAT per day, sorted by date.
// Invoice VAT enters as credit (negative), sales VAT as debit.
func buildChartData(invoices []models.Invoice, revenues []models.DailyRevenue, expenses []models.NonInvoiceExpense) []models.ChartDataPoint {
	type bucket struct {
		income, expense, vat float64
	}
	daily := make(map[string]*bucket)

	get := func(date string) *bucket {
		if b, ok := daily[date]; ok {
			return b
		}
		b := &bucket{}
		daily[date] = b
		return b
	}

	for _, inv := range invoices {
		b := get(inv.Date.Format("2006-01-02"))
		b.expense += inv.TotalAmount
		b.vat -= inv.VATAmount
	}
	for _, rev := range revenues {
		date := rev.Date
		if len(date) > 10 {
			date = date[:10]
		}
		b := get(date)
		b.income += rev.FiscalRevenue + rev.PocketMoney
		b.vat += rev.FiscalRevenue * 0.2 / 1.2
	}
	for _, exp := range expenses {
		date := exp.Date
		if len(date) > 10 {
			date = date[:10]
		}
		get(date).expense += exp.Amount
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	points := make([]models.ChartDataPoint, 0, len(dates))
	for _, date := range dates {
		b := daily[date]
		points = append(points, models.ChartDataPoint{
			Date:    date,
			Label:   date[5:],
			Income:  round2(b.income),
			Expense: round2(b.expense),
			VAT:     round2(b.vat),
		})
	}
	return points
}

// buildSupplierStats ranks suppliers by total spend with concentration
// percentages, mirroring the backend's supplier report.
func buildSupplierStats(invoices []models.Invoice) []models.SupplierStat {
	totals := make(map[string]*models.SupplierStat)
	var grandTotal float64

	for _, inv := range invoices {
		stat, ok := totals[inv.Supplier]
		if !ok {
			stat = &models.SupplierStat{Supplier: inv.Supplier}
			totals[inv.Supplier] = stat
		}
		stat.InvoiceCount++
		stat.TotalAmount += inv.TotalAmount
		grandTotal += inv.TotalAmount
	}

	stats := make([]models.SupplierStat, 0, len(totals))
	for _, stat := range totals {
		if grandTotal > 0 {
			stat.SharePercent = round2(stat.TotalAmount / grandTotal * 100)
		}
		stat.TotalAmount = round2(stat.TotalAmount)
		stats = append(stats, *stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalAmount != stats[j].TotalAmount {
			return stats[i].TotalAmount > stats[j].TotalAmount
		}
		return stats[i].Supplier < stats[j].Supplier
	})
	return stats
}

// buildItemStats aggregates invoice line items by name.
func buildItemStats(invoices []models.Invoice) []models.ItemStat {
	type agg struct {
		stat     models.ItemStat
		count    float64
		lastDate time.Time
	}
	items := make(map[string]*agg)

	for _, inv := range invoices {
		for _, item := range inv.Items {
			a, ok := items[item.Name]
			if !ok {
				a = &agg{stat: models.ItemStat{Name: item.Name, Supplier: inv.Supplier}}
				items[item.Name] = a
			}
			a.stat.Quantity += item.Quantity
			a.stat.TotalAmount += item.TotalPrice
			a.stat.AvgUnitPrice += item.UnitPrice
			a.count++
			if !inv.Date.Before(a.lastDate) {
				a.lastDate = inv.Date
				a.stat.LastUnitPrice = item.UnitPrice
				a.stat.Supplier = inv.Supplier
			}
		}
	}

	stats := make([]models.ItemStat, 0, len(items))
	for _, a := range items {
		if a.count > 0 {
			a.stat.AvgUnitPrice = round2(a.stat.AvgUnitPrice / a.count)
		}
		a.stat.Quantity = round2(a.stat.Quantity)
		a.stat.TotalAmount = round2(a.stat.TotalAmount)
		stats = append(stats, a.stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalAmount != stats[j].TotalAmount {
			return stats[i].TotalAmount > stats[j].TotalAmount
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}
