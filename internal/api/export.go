package api

// Export endpoints produce binary downloads. The client has no role in
// streaming or persisting them, so these methods only build the
// fully-qualified URL for the platform's file opener (or the CLI's
// local exporter) to fetch.

import (
	"github.com/fakturo/fakturo/internal/models"
)

// ExcelExportURL returns the download URL for the Excel export of the
// given period.
func (c *Client) ExcelExportURL(rng models.DateRange) string {
	return c.endpointURL("/export/excel", dateRangeQuery(rng))
}

// PDFExportURL returns the download URL for the PDF export of the
// given period.
func (c *Client) PDFExportURL(rng models.DateRange) string {
	return c.endpointURL("/export/pdf", dateRangeQuery(rng))
}
