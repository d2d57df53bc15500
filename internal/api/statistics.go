package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fakturo/fakturo/internal/models"
)

// Summary fetches the server-computed VAT/profit aggregate for a period.
func (c *Client) Summary(ctx context.Context, rng models.DateRange) (*models.Summary, error) {
	var out models.Summary
	if err := c.do(ctx, http.MethodGet, "/statistics/summary", dateRangeQuery(rng), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChartData fetches daily income/expense/VAT points for the period
// ("week", "month" or "year").
func (c *Client) ChartData(ctx context.Context, period string) ([]models.ChartDataPoint, error) {
	q := url.Values{}
	addQuery(q, "period", period)

	var out []models.ChartDataPoint
	if err := c.do(ctx, http.MethodGet, "/statistics/chart-data", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SupplierStats fetches the server-side supplier ranking with
// concentration percentages.
func (c *Client) SupplierStats(ctx context.Context, rng models.DateRange) ([]models.SupplierStat, error) {
	var out []models.SupplierStat
	if err := c.do(ctx, http.MethodGet, "/statistics/suppliers", dateRangeQuery(rng), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ItemStats fetches the server-side purchased-item ranking.
func (c *Client) ItemStats(ctx context.Context, rng models.DateRange) ([]models.ItemStat, error) {
	var out []models.ItemStat
	if err := c.do(ctx, http.MethodGet, "/statistics/items", dateRangeQuery(rng), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PriceAlerts fetches unread price-trend alerts computed server-side.
func (c *Client) PriceAlerts(ctx context.Context) ([]models.PriceAlert, error) {
	var out []models.PriceAlert
	if err := c.do(ctx, http.MethodGet, "/statistics/price-alerts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
