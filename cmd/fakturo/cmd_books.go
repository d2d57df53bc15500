package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/fakturo/fakturo/internal/models"
	"github.com/fakturo/fakturo/internal/roles"
)

func (a *app) cmdInvoices(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("invoices", flag.ContinueOnError)
	supplier := fs.String("supplier", "", "filter by supplier substring")
	number := fs.String("number", "", "filter by invoice number substring")
	from := fs.String("from", "", "start date (YYYY-MM-DD)")
	to := fs.String("to", "", "end date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	invoices, err := a.client.ListInvoices(ctx, models.InvoiceFilter{
		Supplier:      *supplier,
		InvoiceNumber: *number,
		StartDate:     *from,
		EndDate:       *to,
	})
	if err != nil {
		return err
	}

	if len(invoices) == 0 {
		fmt.Println("No invoices.")
		return nil
	}
	fmt.Printf("%-12s %-25s %-15s %10s %10s %10s\n",
		"DATE", "SUPPLIER", "NUMBER", "NET", "VAT", "TOTAL")
	for _, inv := range invoices {
		fmt.Printf("%-12s %-25.25s %-15s %10.2f %10.2f %10.2f\n",
			inv.Date.Format("2006-01-02"), inv.Supplier, inv.InvoiceNumber,
			inv.AmountWithoutVAT, inv.VATAmount, inv.TotalAmount)
	}
	return nil
}

func (a *app) cmdScan(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	save := fs.Bool("save", false, "create an invoice from the extracted fields")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: fakturo scan [-save] FILE")
	}

	result, err := a.newScanner().ScanFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("Supplier:  %s\n", result.Supplier)
	fmt.Printf("Number:    %s\n", result.InvoiceNumber)
	fmt.Printf("Net:       %.2f\n", result.AmountWithoutVAT)
	fmt.Printf("VAT:       %.2f\n", result.VATAmount)
	fmt.Printf("Total:     %.2f\n", result.TotalAmount)
	if result.InvoiceDate != "" {
		fmt.Printf("Date:      %s\n", result.InvoiceDate)
	}
	for _, correction := range result.Corrections {
		fmt.Printf("Corrected: %s\n", correction)
	}

	if !*save {
		return nil
	}

	date := result.InvoiceDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	inv, err := a.client.CreateInvoice(ctx, models.InvoiceCreate{
		Supplier:         result.Supplier,
		InvoiceNumber:    result.InvoiceNumber,
		AmountWithoutVAT: result.AmountWithoutVAT,
		VATAmount:        result.VATAmount,
		TotalAmount:      result.TotalAmount,
		Date:             date,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Saved invoice %s\n", inv.ID)
	return nil
}

func (a *app) cmdRevenue(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: fakturo revenue {add|list|today}")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("revenue add", flag.ContinueOnError)
		date := fs.String("date", time.Now().Format("2006-01-02"), "date (YYYY-MM-DD)")
		fiscal := fs.Float64("fiscal", 0, "fiscal revenue")
		pocket := fs.Float64("pocket", 0, "pocket money")
		notes := fs.String("notes", "", "notes")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		rev, err := a.client.CreateDailyRevenue(ctx, models.DailyRevenueCreate{
			Date:          *date,
			FiscalRevenue: *fiscal,
			PocketMoney:   *pocket,
			Notes:         *notes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Recorded %s: fiscal %.2f, pocket %.2f\n", rev.Date, rev.FiscalRevenue, rev.PocketMoney)
		return nil

	case "list":
		fs := flag.NewFlagSet("revenue list", flag.ContinueOnError)
		from := fs.String("from", "", "start date")
		to := fs.String("to", "", "end date")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		revenues, err := a.client.ListDailyRevenue(ctx, models.DateRange{StartDate: *from, EndDate: *to})
		if err != nil {
			return err
		}
		if len(revenues) == 0 {
			fmt.Println("No revenue records.")
			return nil
		}
		fmt.Printf("%-12s %10s %10s  %s\n", "DATE", "FISCAL", "POCKET", "NOTES")
		for _, rev := range revenues {
			fmt.Printf("%-12s %10.2f %10.2f  %s\n", rev.Date, rev.FiscalRevenue, rev.PocketMoney, rev.Notes)
		}
		return nil

	case "today":
		rev, err := a.client.TodayRevenue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s: fiscal %.2f, pocket %.2f\n", rev.Date, rev.FiscalRevenue, rev.PocketMoney)
		return nil

	default:
		return fmt.Errorf("unknown revenue subcommand %q", args[0])
	}
}

func (a *app) cmdExpenses(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: fakturo expenses {add|list}")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("expenses add", flag.ContinueOnError)
		description := fs.String("description", "", "what the money went to")
		amount := fs.Float64("amount", 0, "amount")
		date := fs.String("date", time.Now().Format("2006-01-02"), "date (YYYY-MM-DD)")
		category := fs.String("category", "", "category")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		exp, err := a.client.CreateExpense(ctx, models.NonInvoiceExpenseCreate{
			Description: *description,
			Amount:      *amount,
			Date:        *date,
			Category:    *category,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Recorded expense %s: %.2f\n", exp.ID, exp.Amount)
		return nil

	case "list":
		fs := flag.NewFlagSet("expenses list", flag.ContinueOnError)
		from := fs.String("from", "", "start date")
		to := fs.String("to", "", "end date")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		expenses, err := a.client.ListExpenses(ctx, models.DateRange{StartDate: *from, EndDate: *to})
		if err != nil {
			return err
		}
		if len(expenses) == 0 {
			fmt.Println("No expenses.")
			return nil
		}
		fmt.Printf("%-12s %10s  %s\n", "DATE", "AMOUNT", "DESCRIPTION")
		for _, exp := range expenses {
			fmt.Printf("%-12s %10.2f  %s\n", exp.Date, exp.Amount, exp.Description)
		}
		return nil

	default:
		return fmt.Errorf("unknown expenses subcommand %q", args[0])
	}
}

func (a *app) cmdStats(ctx context.Context, args []string) error {
	if err := a.requirePermission(roles.PermViewStatistics); err != nil {
		return err
	}

	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	from := fs.String("from", "", "start date")
	to := fs.String("to", "", "end date")
	if err := fs.Parse(args); err != nil {
		return err
	}

	summary, err := a.client.Summary(ctx, models.DateRange{StartDate: *from, EndDate: *to})
	if err != nil {
		return err
	}

	fmt.Printf("Invoices:            %d (%.2f, VAT %.2f)\n",
		summary.InvoiceCount, summary.TotalInvoiceAmount, summary.TotalInvoiceVAT)
	fmt.Printf("Fiscal revenue:      %.2f (VAT %.2f)\n", summary.TotalFiscalRevenue, summary.FiscalVAT)
	fmt.Printf("Pocket money:        %.2f\n", summary.TotalPocketMoney)
	fmt.Printf("Non-invoice expense: %.2f\n", summary.TotalNonInvoiceExpenses)
	fmt.Printf("VAT to pay:          %.2f\n", summary.VATToPay)
	fmt.Printf("Income / expense:    %.2f / %.2f\n", summary.TotalIncome, summary.TotalExpense)
	fmt.Printf("Profit:              %.2f\n", summary.Profit)
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	if err := a.requirePermission(roles.PermExportData); err != nil {
		return err
	}

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	from := fs.String("from", "", "start date")
	to := fs.String("to", "", "end date")
	urlOnly := fs.Bool("url", false, "print the backend download URL instead of writing a file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rng := models.DateRange{StartDate: *from, EndDate: *to}
	if *urlOnly {
		fmt.Println(a.client.ExcelExportURL(rng))
		return nil
	}

	invoices, err := a.client.ListInvoices(ctx, models.InvoiceFilter{StartDate: *from, EndDate: *to})
	if err != nil {
		return err
	}
	summary, err := a.client.Summary(ctx, rng)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("fakturo-%s.xlsx", time.Now().Format("2006-01-02"))
	path, err := a.newExcelWriter().WriteInvoices(invoices, summary, filename)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d invoices to %s\n", len(invoices), path)
	return nil
}
