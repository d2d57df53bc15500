package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fakturo/fakturo/internal/models"
)

// CreateInvoice submits a reviewed invoice.
func (c *Client) CreateInvoice(ctx context.Context, req models.InvoiceCreate) (*models.Invoice, error) {
	var out models.Invoice
	if err := c.do(ctx, http.MethodPost, "/invoices", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvoices returns invoices matching the filter, newest first.
// Unset filter fields are omitted from the query string.
func (c *Client) ListInvoices(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, error) {
	q := url.Values{}
	addQuery(q, "supplier", filter.Supplier)
	addQuery(q, "invoice_number", filter.InvoiceNumber)
	addQuery(q, "start_date", filter.StartDate)
	addQuery(q, "end_date", filter.EndDate)

	var out []models.Invoice
	if err := c.do(ctx, http.MethodGet, "/invoices", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInvoice fetches one invoice including its stored image.
func (c *Client) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	var out models.Invoice
	if err := c.do(ctx, http.MethodGet, "/invoices/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateInvoice applies the user's edits to an existing invoice.
func (c *Client) UpdateInvoice(ctx context.Context, id string, req models.InvoiceUpdate) (*models.Invoice, error) {
	var out models.Invoice
	if err := c.do(ctx, http.MethodPut, "/invoices/"+id, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteInvoice removes an invoice.
func (c *Client) DeleteInvoice(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/invoices/"+id, nil, nil, nil)
}

// ScanInvoice sends a base64-encoded invoice image to the OCR service
// and returns the extracted fields for the user to review.
func (c *Client) ScanInvoice(ctx context.Context, imageBase64 string) (*models.OCRResult, error) {
	var out models.OCRResult
	err := c.do(ctx, http.MethodPost, "/ocr/scan", nil, models.OCRRequest{ImageBase64: imageBase64}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
