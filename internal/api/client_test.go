package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, Timeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	return client, server
}

func TestClientDecodesResponseVerbatim(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/invoices/inv-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "inv-1",
			"supplier": "Метро Кеш енд Кери",
			"invoice_number": "0000012345",
			"amount_without_vat": 100.5,
			"vat_amount": 20.1,
			"total_amount": 120.6,
			"date": "2025-03-01T00:00:00Z"
		}`))
	})

	inv, err := client.GetInvoice(context.Background(), "inv-1")
	require.NoError(t, err)

	assert.Equal(t, "inv-1", inv.ID)
	assert.Equal(t, "Метро Кеш енд Кери", inv.Supplier)
	assert.Equal(t, "0000012345", inv.InvoiceNumber)
	assert.Equal(t, 100.5, inv.AmountWithoutVAT)
	assert.Equal(t, 20.1, inv.VATAmount)
	assert.Equal(t, 120.6, inv.TotalAmount)
}

func TestClientSurfacesDetailMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Фактурата вече съществува"}`))
	})

	_, err := client.GetInvoice(context.Background(), "dup")
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Фактурата вече съществува", apiErr.Message)
}

func TestClientFallbackMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"html error page", "<html><body>502 Bad Gateway</body></html>"},
		{"empty body", ""},
		{"json without detail", `{"error": "nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(tt.body))
			})

			_, err := client.Me(context.Background())
			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, FallbackMessage, apiErr.Message)
			assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		})
	}
}

func TestClientTokenHeader(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	ctx := context.Background()

	// No token yet: no Authorization header at all.
	_, err := client.Me(ctx)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	client.SetToken("tok-123")
	_, err = client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)

	client.ClearToken()
	_, err = client.Me(ctx)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClientOmitsEmptyFilters(t *testing.T) {
	var gotQuery url.Values
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	})

	ctx := context.Background()

	_, err := client.ListInvoices(ctx, models.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, gotQuery, "zero-value filter must produce no query parameters")

	_, err = client.ListInvoices(ctx, models.InvoiceFilter{Supplier: "Метро", StartDate: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "Метро", gotQuery.Get("supplier"))
	assert.Equal(t, "2025-01-01", gotQuery.Get("start_date"))
	assert.False(t, gotQuery.Has("invoice_number"))
	assert.False(t, gotQuery.Has("end_date"))
}

func TestClientTransportError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	_, ok := AsAPIError(err)
	assert.False(t, ok)
	assert.Equal(t, 0, StatusCode(err))
}

func TestClientContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Me(ctx)
	require.Error(t, err)
	assert.True(t, IsTransport(err), "cancellation happens before a response, so it is a transport error")
}

func TestExportURLs(t *testing.T) {
	client, err := New(Config{BaseURL: "https://app.fakturo.bg/", Timeout: time.Second}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "https://app.fakturo.bg/api/export/excel", client.ExcelExportURL(models.DateRange{}))
	assert.Equal(t,
		"https://app.fakturo.bg/api/export/excel?end_date=2025-01-31&start_date=2025-01-01",
		client.ExcelExportURL(models.DateRange{StartDate: "2025-01-01", EndDate: "2025-01-31"}))
	assert.Equal(t, "https://app.fakturo.bg/api/export/pdf", client.PDFExportURL(models.DateRange{}))
}
