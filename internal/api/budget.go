package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fakturo/fakturo/internal/models"
)

// GetBudget fetches the budget for a YYYY-MM month, if one is set.
func (c *Client) GetBudget(ctx context.Context, month string) (*models.Budget, error) {
	q := url.Values{}
	addQuery(q, "month", month)

	var out models.Budget
	if err := c.do(ctx, http.MethodGet, "/budget", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetBudget creates or replaces a month's expense budget.
func (c *Client) SetBudget(ctx context.Context, req models.BudgetSet) (*models.Budget, error) {
	var out models.Budget
	if err := c.do(ctx, http.MethodPost, "/budget", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRecurringExpenses returns the company's recurring expense templates.
func (c *Client) ListRecurringExpenses(ctx context.Context) ([]models.RecurringExpense, error) {
	var out []models.RecurringExpense
	if err := c.do(ctx, http.MethodGet, "/recurring-expenses", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRecurringExpense registers a monthly recurring expense.
func (c *Client) CreateRecurringExpense(ctx context.Context, req models.RecurringExpenseCreate) (*models.RecurringExpense, error) {
	var out models.RecurringExpense
	if err := c.do(ctx, http.MethodPost, "/recurring-expenses", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecurringExpense deactivates a recurring expense template.
func (c *Client) DeleteRecurringExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/recurring-expenses/"+id, nil, nil, nil)
}

// Forecast fetches the backend's projected expenses for coming months.
func (c *Client) Forecast(ctx context.Context, months int) ([]models.ForecastPoint, error) {
	q := url.Values{}
	if months > 0 {
		q.Set("months", strconv.Itoa(months))
	}

	var out []models.ForecastPoint
	if err := c.do(ctx, http.MethodGet, "/forecast", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AuditLog returns the company audit trail, newest first.
func (c *Client) AuditLog(ctx context.Context, rng models.DateRange) ([]models.AuditLogEntry, error) {
	var out []models.AuditLogEntry
	if err := c.do(ctx, http.MethodGet, "/audit-log", dateRangeQuery(rng), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
