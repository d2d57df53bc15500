package api

import (
	"context"
	"net/http"

	"github.com/fakturo/fakturo/internal/models"
)

// CreateDailyRevenue records (or overwrites) the revenue entry for a date.
func (c *Client) CreateDailyRevenue(ctx context.Context, req models.DailyRevenueCreate) (*models.DailyRevenue, error) {
	var out models.DailyRevenue
	if err := c.do(ctx, http.MethodPost, "/daily-revenue", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDailyRevenue returns revenue entries within the range, newest first.
func (c *Client) ListDailyRevenue(ctx context.Context, rng models.DateRange) ([]models.DailyRevenue, error) {
	var out []models.DailyRevenue
	if err := c.do(ctx, http.MethodGet, "/daily-revenue", dateRangeQuery(rng), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DailyRevenueByDate returns the single entry for a YYYY-MM-DD date.
func (c *Client) DailyRevenueByDate(ctx context.Context, date string) (*models.DailyRevenue, error) {
	var out models.DailyRevenue
	if err := c.do(ctx, http.MethodGet, "/daily-revenue/by-date/"+date, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TodayRevenue returns today's entry, if any.
func (c *Client) TodayRevenue(ctx context.Context) (*models.DailyRevenue, error) {
	var out models.DailyRevenue
	if err := c.do(ctx, http.MethodGet, "/daily-revenue/today", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateExpense records a non-invoice expense.
func (c *Client) CreateExpense(ctx context.Context, req models.NonInvoiceExpenseCreate) (*models.NonInvoiceExpense, error) {
	var out models.NonInvoiceExpense
	if err := c.do(ctx, http.MethodPost, "/expenses", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListExpenses returns non-invoice expenses within the range, newest first.
func (c *Client) ListExpenses(ctx context.Context, rng models.DateRange) ([]models.NonInvoiceExpense, error) {
	var out []models.NonInvoiceExpense
	if err := c.do(ctx, http.MethodGet, "/expenses", dateRangeQuery(rng), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteExpense removes a non-invoice expense.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+id, nil, nil, nil)
}
