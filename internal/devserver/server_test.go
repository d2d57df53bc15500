package devserver_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/api"
	"github.com/fakturo/fakturo/internal/config"
	"github.com/fakturo/fakturo/internal/devserver"
	"github.com/fakturo/fakturo/internal/models"
	"github.com/fakturo/fakturo/internal/roles"
	"github.com/fakturo/fakturo/internal/session"
	"github.com/fakturo/fakturo/pkg/database"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "devserver.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := devserver.NewStore(db, zap.NewNop())
	require.NoError(t, err)

	server := devserver.NewServer(config.DevServerConfig{}, store, devserver.StubExtractor{}, zap.NewNop())
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, backend *httptest.Server) *api.Client {
	t.Helper()
	client, err := api.New(api.Config{BaseURL: backend.URL, Timeout: 10 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	return client
}

// registerUser creates an account through the public API and returns a
// logged-in client.
func registerUser(t *testing.T, backend *httptest.Server, email string) (*api.Client, *session.Manager) {
	t.Helper()
	client := newClient(t, backend)
	manager := session.NewManager(client, nil, zap.NewNop())
	require.NoError(t, manager.Register(context.Background(), email, "parola123", "Тест Потребител"))
	return client, manager
}

func TestLoginPermissionAuthenticatedFetch(t *testing.T) {
	backend := newBackend(t)
	ctx := context.Background()

	// Register, then sign in again from a cold client.
	registerUser(t, backend, "ivan@mail.bg")

	client := newClient(t, backend)
	manager := session.NewManager(client, nil, zap.NewNop())
	require.NoError(t, manager.Login(ctx, "ivan@mail.bg", "parola123"))
	require.NotEmpty(t, client.Token())

	// First registered user is an owner and may manage users.
	checker := roles.NewChecker(manager)
	assert.True(t, checker.HasPermission(roles.PermManageUsers))

	// The bearer token authenticates subsequent fetches.
	_, err := client.CreateInvoice(ctx, models.InvoiceCreate{
		Supplier:         "Метро",
		InvoiceNumber:    "0000000001",
		AmountWithoutVAT: 100,
		VATAmount:        20,
		TotalAmount:      120,
		Date:             "2025-03-01",
	})
	require.NoError(t, err)

	invoices, err := client.ListInvoices(ctx, models.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "Метро", invoices[0].Supplier)

	// Dropping the bearer header alone does not end the session: the
	// cookie issued at login still authenticates this client.
	client.ClearToken()
	_, err = client.ListInvoices(ctx, models.InvoiceFilter{})
	require.NoError(t, err, "the session cookie keeps authenticating")

	// A client holding neither credential is rejected in the app's locale.
	anon := newClient(t, backend)
	_, err = anon.ListInvoices(ctx, models.InvoiceFilter{})
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Не сте влезли в системата", apiErr.Message)

	// Logout invalidates the server-side session, so the cookie stops
	// working too.
	manager.Logout(ctx)
	_, err = client.ListInvoices(ctx, models.InvoiceFilter{})
	apiErr, ok = api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestWrongPasswordRejected(t *testing.T) {
	backend := newBackend(t)
	registerUser(t, backend, "ivan@mail.bg")

	client := newClient(t, backend)
	_, err := client.Login(context.Background(), models.LoginRequest{Email: "ivan@mail.bg", Password: "ne-tazi"})
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Грешен имейл или парола", apiErr.Message)
}

func TestInvoiceFiltersAndImageStripping(t *testing.T) {
	backend := newBackend(t)
	client, _ := registerUser(t, backend, "ivan@mail.bg")
	ctx := context.Background()

	seed := []models.InvoiceCreate{
		{Supplier: "Метро", InvoiceNumber: "A-1", TotalAmount: 120, AmountWithoutVAT: 100, VATAmount: 20, Date: "2025-01-10", ImageBase64: "aW1hZ2U="},
		{Supplier: "Кауфланд", InvoiceNumber: "B-2", TotalAmount: 60, AmountWithoutVAT: 50, VATAmount: 10, Date: "2025-02-10"},
	}
	var firstID string
	for _, req := range seed {
		inv, err := client.CreateInvoice(ctx, req)
		require.NoError(t, err)
		if firstID == "" {
			firstID = inv.ID
		}
	}

	bySupplier, err := client.ListInvoices(ctx, models.InvoiceFilter{Supplier: "Метро"})
	require.NoError(t, err)
	require.Len(t, bySupplier, 1)
	assert.Equal(t, "A-1", bySupplier[0].InvoiceNumber)
	assert.Empty(t, bySupplier[0].ImageBase64, "lists never carry image payloads")

	byDate, err := client.ListInvoices(ctx, models.InvoiceFilter{StartDate: "2025-02-01"})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, "Кауфланд", byDate[0].Supplier)

	full, err := client.GetInvoice(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "aW1hZ2U=", full.ImageBase64, "the detail endpoint keeps the image")

	_, err = client.GetInvoice(ctx, "no-such-id")
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Фактурата не е намерена", apiErr.Message)
}

func TestInvoiceUpdateAcceptsBareDate(t *testing.T) {
	backend := newBackend(t)
	client, _ := registerUser(t, backend, "ivan@mail.bg")
	ctx := context.Background()

	inv, err := client.CreateInvoice(ctx, models.InvoiceCreate{
		Supplier: "Метро", InvoiceNumber: "A-1",
		AmountWithoutVAT: 100, VATAmount: 20, TotalAmount: 120, Date: "2025-03-01",
	})
	require.NoError(t, err)

	// The update form sends the same bare day format creation accepts.
	newDate := "2025-04-01"
	supplier := "Билла"
	updated, err := client.UpdateInvoice(ctx, inv.ID, models.InvoiceUpdate{Date: &newDate, Supplier: &supplier})
	require.NoError(t, err)
	assert.Equal(t, "Билла", updated.Supplier)
	assert.Equal(t, "2025-04-01", updated.Date.Format("2006-01-02"))

	// Full timestamps from the OCR flow keep working.
	stamped := "2025-05-01T10:30:00Z"
	updated, err = client.UpdateInvoice(ctx, inv.ID, models.InvoiceUpdate{Date: &stamped})
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", updated.Date.Format("2006-01-02"))

	bad := "утре"
	_, err = client.UpdateInvoice(ctx, inv.ID, models.InvoiceUpdate{Date: &bad})
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Невалидна дата", apiErr.Message)
}

func TestDailyRevenueUpsertByDate(t *testing.T) {
	backend := newBackend(t)
	client, _ := registerUser(t, backend, "ivan@mail.bg")
	ctx := context.Background()

	_, err := client.CreateDailyRevenue(ctx, models.DailyRevenueCreate{Date: "2025-03-01", FiscalRevenue: 500})
	require.NoError(t, err)

	// Same date again overwrites instead of duplicating.
	updated, err := client.CreateDailyRevenue(ctx, models.DailyRevenueCreate{Date: "2025-03-01", FiscalRevenue: 700, PocketMoney: 30})
	require.NoError(t, err)
	assert.Equal(t, 700.0, updated.FiscalRevenue)

	all, err := client.ListDailyRevenue(ctx, models.DateRange{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 700.0, all[0].FiscalRevenue)
	assert.Equal(t, 30.0, all[0].PocketMoney)

	byDate, err := client.DailyRevenueByDate(ctx, "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, all[0].ID, byDate.ID)
}

func TestStatisticsSummary(t *testing.T) {
	backend := newBackend(t)
	client, _ := registerUser(t, backend, "ivan@mail.bg")
	ctx := context.Background()

	_, err := client.CreateInvoice(ctx, models.InvoiceCreate{
		Supplier: "Метро", InvoiceNumber: "A-1",
		AmountWithoutVAT: 100, VATAmount: 20, TotalAmount: 120, Date: "2025-03-01",
	})
	require.NoError(t, err)
	_, err = client.CreateDailyRevenue(ctx, models.DailyRevenueCreate{Date: "2025-03-01", FiscalRevenue: 1200})
	require.NoError(t, err)

	summary, err := client.Summary(ctx, models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 200.0, summary.FiscalVAT)
	assert.Equal(t, 180.0, summary.VATToPay)
	assert.Equal(t, 1, summary.InvoiceCount)
}

func TestChartDataDefaultsToWeek(t *testing.T) {
	backend := newBackend(t)
	client, _ := registerUser(t, backend, "ivan@mail.bg")
	ctx := context.Background()

	recent := time.Now().AddDate(0, 0, -2).Format("2006-01-02")
	old := time.Now().AddDate(0, 0, -20).Format("2006-01-02")
	for i, date := range []string{recent, old} {
		_, err := client.CreateInvoice(ctx, models.InvoiceCreate{
			Supplier: "Метро", InvoiceNumber: fmt.Sprintf("A-%d", i),
			AmountWithoutVAT: 100, VATAmount: 20, TotalAmount: 120, Date: date,
		})
		require.NoError(t, err)
	}

	// No explicit period means the trailing week, so the older invoice
	// stays out of the buckets.
	points, err := client.ChartData(ctx, "")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, recent[5:], points[0].Label)

	points, err = client.ChartData(ctx, "month")
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestOAuthSessionExchange(t *testing.T) {
	backend := newBackend(t)
	client := newClient(t, backend)
	manager := session.NewManager(client, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, manager.LoginWithSession(ctx, "redirect-abc"))
	assert.True(t, manager.IsAuthenticated())
	require.NotEmpty(t, client.Token())

	me, err := client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, manager.CurrentUser().UserID, me.UserID)
	assert.Equal(t, "owner", me.Role)

	// The same session id resolves to the same account on a later login.
	again := newClient(t, backend)
	repeat := session.NewManager(again, nil, zap.NewNop())
	require.NoError(t, repeat.LoginWithSession(ctx, "redirect-abc"))
	assert.Equal(t, me.UserID, repeat.CurrentUser().UserID)
}

func TestUserManagementIsOwnerOnly(t *testing.T) {
	backend := newBackend(t)
	owner, _ := registerUser(t, backend, "owner@mail.bg")
	ctx := context.Background()

	// Owner forms a company and invites a staff member.
	_, err := owner.CreateCompany(ctx, models.CompanyCreate{Name: "Пекарна ЕООД", EIK: "123456789"})
	require.NoError(t, err)

	invitation, err := owner.CreateInvitation(ctx, "staff")
	require.NoError(t, err)

	staff, staffSession := registerUser(t, backend, "staff@mail.bg")
	joined, err := staff.AcceptInvitation(ctx, invitation.Code)
	require.NoError(t, err)
	assert.Equal(t, "staff", joined.Role)
	staffSession.SetUser(joined)

	// Staff cannot list or manage users.
	_, err = staff.ListUsers(ctx)
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Нямате права за това действие", apiErr.Message)

	checker := roles.NewChecker(staffSession)
	assert.False(t, checker.HasPermission(roles.PermManageUsers))

	// Owner sees both members and may change the staff user's role.
	users, err := owner.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	require.NoError(t, owner.UpdateUserRole(ctx, joined.UserID, "manager"))
	users, err = owner.ListUsers(ctx)
	require.NoError(t, err)
	for _, u := range users {
		if u.UserID == joined.UserID {
			assert.Equal(t, "manager", u.Role)
		}
	}
}

func TestBackupAndRestore(t *testing.T) {
	backend := newBackend(t)
	client, _ := registerUser(t, backend, "ivan@mail.bg")
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		_, err := client.CreateInvoice(ctx, models.InvoiceCreate{
			Supplier: "Метро", InvoiceNumber: fmt.Sprintf("A-%d", i),
			AmountWithoutVAT: 100, VATAmount: 20, TotalAmount: 120, Date: "2025-03-01",
		})
		require.NoError(t, err)
	}

	info, err := client.CreateBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.InvoiceCount)
	assert.Equal(t, "completed", info.Status)

	// Wipe by restoring after deleting one invoice.
	invoices, err := client.ListInvoices(ctx, models.InvoiceFilter{})
	require.NoError(t, err)
	require.NoError(t, client.DeleteInvoice(ctx, invoices[0].ID))

	require.NoError(t, client.RestoreBackup(ctx, info.ID))

	restored, err := client.ListInvoices(ctx, models.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, restored, 2)

	status, err := client.BackupStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.BackupCount)
	require.NotNil(t, status.LastBackupAt)
}

func TestScanWithStubExtractor(t *testing.T) {
	backend := newBackend(t)
	client, _ := registerUser(t, backend, "ivan@mail.bg")

	result, err := client.ScanInvoice(context.Background(), "aW1hZ2UtYnl0ZXM=")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Supplier)
	assert.NotEmpty(t, result.InvoiceNumber)
	assert.InDelta(t, result.AmountWithoutVAT+result.VATAmount, result.TotalAmount, 0.001)
}

func TestBudgetAndRecurring(t *testing.T) {
	backend := newBackend(t)
	client, _ := registerUser(t, backend, "ivan@mail.bg")
	ctx := context.Background()

	_, err := client.GetBudget(ctx, "2025-06")
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	budget, err := client.SetBudget(ctx, models.BudgetSet{Month: "2025-06", ExpenseLimit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 80.0, budget.AlertThreshold, "threshold defaults to 80%")

	// Setting again replaces.
	budget, err = client.SetBudget(ctx, models.BudgetSet{Month: "2025-06", ExpenseLimit: 6000, AlertThreshold: 90})
	require.NoError(t, err)
	assert.Equal(t, 6000.0, budget.ExpenseLimit)

	rec, err := client.CreateRecurringExpense(ctx, models.RecurringExpenseCreate{
		Description: "Наем", Amount: 800, DayOfMonth: 1,
	})
	require.NoError(t, err)
	assert.True(t, rec.IsActive)

	require.NoError(t, client.DeleteRecurringExpense(ctx, rec.ID))
	all, err := client.ListRecurringExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive, "deletion deactivates instead of removing history")

	forecast, err := client.Forecast(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, forecast, 3)
}

func TestAuditLogRecordsActions(t *testing.T) {
	backend := newBackend(t)
	client, _ := registerUser(t, backend, "ivan@mail.bg")
	ctx := context.Background()

	_, err := client.CreateInvoice(ctx, models.InvoiceCreate{
		Supplier: "Метро", InvoiceNumber: "A-1",
		AmountWithoutVAT: 100, VATAmount: 20, TotalAmount: 120, Date: "2025-03-01",
	})
	require.NoError(t, err)

	entries, err := client.AuditLog(ctx, models.DateRange{})
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	actions := make(map[string]bool)
	for _, e := range entries {
		actions[e.Action+"/"+e.EntityType] = true
	}
	assert.True(t, actions["register/user"])
	assert.True(t, actions["create/invoice"])
}
