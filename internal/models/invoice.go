package models

import "time"

// Invoice represents a supplier invoice (фактура).
type Invoice struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	CompanyID        string        `json:"company_id,omitempty"`
	Supplier         string        `json:"supplier"`
	InvoiceNumber    string        `json:"invoice_number"`
	AmountWithoutVAT float64       `json:"amount_without_vat"`
	VATAmount        float64       `json:"vat_amount"`
	TotalAmount      float64       `json:"total_amount"`
	Date             time.Time     `json:"date"`
	ImageBase64      string        `json:"image_base64,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	Items            []InvoiceItem `json:"items,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// InvoiceItem is a single line item on an invoice.
type InvoiceItem struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
	VATAmount  float64 `json:"vat_amount"`
}

// InvoiceCreate is the submission payload; Date is an ISO 8601 string
// because the backend parses it server-side.
type InvoiceCreate struct {
	Supplier         string        `json:"supplier"`
	InvoiceNumber    string        `json:"invoice_number"`
	AmountWithoutVAT float64       `json:"amount_without_vat"`
	VATAmount        float64       `json:"vat_amount"`
	TotalAmount      float64       `json:"total_amount"`
	Date             string        `json:"date"`
	ImageBase64      string        `json:"image_base64,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	Items            []InvoiceItem `json:"items,omitempty"`
}

// InvoiceUpdate carries only the fields the user edited; nil means unchanged.
type InvoiceUpdate struct {
	Supplier         *string  `json:"supplier,omitempty"`
	InvoiceNumber    *string  `json:"invoice_number,omitempty"`
	AmountWithoutVAT *float64 `json:"amount_without_vat,omitempty"`
	VATAmount        *float64 `json:"vat_amount,omitempty"`
	TotalAmount      *float64 `json:"total_amount,omitempty"`
	Date             *string  `json:"date,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

// InvoiceFilter narrows GET /invoices. Zero values are omitted from the
// query string entirely.
type InvoiceFilter struct {
	Supplier      string
	InvoiceNumber string
	StartDate     string
	EndDate       string
}

// OCRResult holds the fields the OCR service extracted from an invoice image.
type OCRResult struct {
	Supplier         string   `json:"supplier"`
	InvoiceNumber    string   `json:"invoice_number"`
	AmountWithoutVAT float64  `json:"amount_without_vat"`
	VATAmount        float64  `json:"vat_amount"`
	TotalAmount      float64  `json:"total_amount"`
	InvoiceDate      string   `json:"invoice_date,omitempty"`
	Corrections      []string `json:"corrections,omitempty"`
	Confidence       float64  `json:"confidence,omitempty"`
}

// OCRRequest submits a base64-encoded invoice image for extraction.
type OCRRequest struct {
	ImageBase64 string `json:"image_base64"`
}
