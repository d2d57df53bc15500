package devserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fakturo/fakturo/internal/models"
)

const invoiceColumns = `id, user_id, company_id, supplier, invoice_number,
	amount_without_vat, vat_amount, total_amount, date, image_base64, notes, items_json, created_at`

func (s *Store) CreateInvoice(inv *models.Invoice) error {
	itemsJSON := "[]"
	if len(inv.Items) > 0 {
		encoded, err := json.Marshal(inv.Items)
		if err != nil {
			return fmt.Errorf("failed to encode items: %w", err)
		}
		itemsJSON = string(encoded)
	}

	_, err := s.db.Exec(`
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.UserID, inv.CompanyID, inv.Supplier, inv.InvoiceNumber,
		inv.AmountWithoutVAT, inv.VATAmount, inv.TotalAmount, fmtTime(inv.Date),
		inv.ImageBase64, inv.Notes, itemsJSON, fmtTime(inv.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func scanInvoiceRow(scan func(dest ...interface{}) error, withImage bool) (*models.Invoice, error) {
	var inv models.Invoice
	var date, itemsJSON, createdAt string
	err := scan(&inv.ID, &inv.UserID, &inv.CompanyID, &inv.Supplier, &inv.InvoiceNumber,
		&inv.AmountWithoutVAT, &inv.VATAmount, &inv.TotalAmount, &date,
		&inv.ImageBase64, &inv.Notes, &itemsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}
	inv.Date = parseTime(date)
	inv.CreatedAt = parseTime(createdAt)
	if itemsJSON != "" && itemsJSON != "[]" {
		if err := json.Unmarshal([]byte(itemsJSON), &inv.Items); err != nil {
			return nil, fmt.Errorf("failed to decode items: %w", err)
		}
	}
	if !withImage {
		// The list endpoint never ships images; they can be megabytes.
		inv.ImageBase64 = ""
	}
	return &inv, nil
}

// ListInvoices returns the owner's invoices newest-first, applying the
// optional filters the same way the backend does (substring match on
// supplier and number, inclusive date bounds).
func (s *Store) ListInvoices(owner *models.User, filter models.InvoiceFilter) ([]models.Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices WHERE ((company_id = ? AND company_id != '') OR user_id = ?)"
	args := []interface{}{owner.CompanyID, owner.UserID}

	if filter.Supplier != "" {
		query += " AND supplier LIKE ?"
		args = append(args, "%"+filter.Supplier+"%")
	}
	if filter.InvoiceNumber != "" {
		query += " AND invoice_number LIKE ?"
		args = append(args, "%"+filter.InvoiceNumber+"%")
	}
	if filter.StartDate != "" {
		query += " AND date >= ?"
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		// Date bound is inclusive; stored values are RFC3339 so a bare
		// day needs the end-of-day suffix to compare correctly.
		query += " AND date <= ?"
		args = append(args, filter.EndDate+"T23:59:59Z")
	}
	query += " ORDER BY date DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		inv, err := scanInvoiceRow(rows.Scan, false)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (s *Store) GetInvoice(id string, owner *models.User) (*models.Invoice, error) {
	row := s.db.QueryRow(
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = ? AND ((company_id = ? AND company_id != '') OR user_id = ?)",
		id, owner.CompanyID, owner.UserID)
	return scanInvoiceRow(row.Scan, true)
}

func (s *Store) UpdateInvoice(id string, owner *models.User, upd models.InvoiceUpdate) (*models.Invoice, error) {
	inv, err := s.GetInvoice(id, owner)
	if err != nil {
		return nil, err
	}

	if upd.Supplier != nil {
		inv.Supplier = *upd.Supplier
	}
	if upd.InvoiceNumber != nil {
		inv.InvoiceNumber = *upd.InvoiceNumber
	}
	if upd.AmountWithoutVAT != nil {
		inv.AmountWithoutVAT = *upd.AmountWithoutVAT
	}
	if upd.VATAmount != nil {
		inv.VATAmount = *upd.VATAmount
	}
	if upd.TotalAmount != nil {
		inv.TotalAmount = *upd.TotalAmount
	}
	if upd.Date != nil {
		// Accept the same formats as creation; forms send bare days.
		parsed, err := parseDate(*upd.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, *upd.Date)
		}
		inv.Date = parsed
	}
	if upd.Notes != nil {
		inv.Notes = *upd.Notes
	}

	_, err = s.db.Exec(`
		UPDATE invoices SET supplier = ?, invoice_number = ?, amount_without_vat = ?,
			vat_amount = ?, total_amount = ?, date = ?, notes = ?
		WHERE id = ?
	`, inv.Supplier, inv.InvoiceNumber, inv.AmountWithoutVAT, inv.VATAmount,
		inv.TotalAmount, fmtTime(inv.Date), inv.Notes, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return inv, nil
}

func (s *Store) DeleteInvoice(id string, owner *models.User) error {
	res, err := s.db.Exec(
		"DELETE FROM invoices WHERE id = ? AND ((company_id = ? AND company_id != '') OR user_id = ?)",
		id, owner.CompanyID, owner.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const revenueColumns = "id, user_id, company_id, date, fiscal_revenue, pocket_money, notes, created_at"

// UpsertDailyRevenue overwrites the entry for the date if one exists,
// matching the backend's create-or-update semantics.
func (s *Store) UpsertDailyRevenue(rev *models.DailyRevenue) error {
	owner := rev.CompanyID
	if owner == "" {
		owner = rev.UserID
	}

	_, err := s.db.Exec(`
		INSERT INTO daily_revenue (id, owner_key, user_id, company_id, date, fiscal_revenue, pocket_money, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_key, date) DO UPDATE SET
			fiscal_revenue = excluded.fiscal_revenue,
			pocket_money = excluded.pocket_money,
			notes = excluded.notes
	`, rev.ID, owner, rev.UserID, rev.CompanyID, rev.Date,
		rev.FiscalRevenue, rev.PocketMoney, rev.Notes, fmtTime(rev.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert daily revenue: %w", err)
	}
	return nil
}

func (s *Store) ListDailyRevenue(owner *models.User, rng models.DateRange) ([]models.DailyRevenue, error) {
	query := "SELECT " + revenueColumns + " FROM daily_revenue WHERE owner_key = ?"
	args := []interface{}{ownerKey(owner)}

	if rng.StartDate != "" {
		query += " AND date >= ?"
		args = append(args, rng.StartDate)
	}
	if rng.EndDate != "" {
		query += " AND date <= ?"
		args = append(args, rng.EndDate)
	}
	query += " ORDER BY date DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily revenue: %w", err)
	}
	defer rows.Close()

	var revenues []models.DailyRevenue
	for rows.Next() {
		var rev models.DailyRevenue
		var createdAt string
		if err := rows.Scan(&rev.ID, &rev.UserID, &rev.CompanyID, &rev.Date,
			&rev.FiscalRevenue, &rev.PocketMoney, &rev.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily revenue: %w", err)
		}
		rev.CreatedAt = parseTime(createdAt)
		revenues = append(revenues, rev)
	}
	return revenues, rows.Err()
}

func (s *Store) GetDailyRevenueByDate(owner *models.User, date string) (*models.DailyRevenue, error) {
	var rev models.DailyRevenue
	var createdAt string
	err := s.db.QueryRow(
		"SELECT "+revenueColumns+" FROM daily_revenue WHERE owner_key = ? AND date = ?",
		ownerKey(owner), date,
	).Scan(&rev.ID, &rev.UserID, &rev.CompanyID, &rev.Date,
		&rev.FiscalRevenue, &rev.PocketMoney, &rev.Notes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily revenue: %w", err)
	}
	rev.CreatedAt = parseTime(createdAt)
	return &rev, nil
}

const expenseColumns = "id, user_id, company_id, description, amount, date, category, notes, created_at"

func (s *Store) CreateExpense(exp *models.NonInvoiceExpense) error {
	_, err := s.db.Exec(`
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, exp.ID, exp.UserID, exp.CompanyID, exp.Description, exp.Amount,
		exp.Date, exp.Category, exp.Notes, fmtTime(exp.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (s *Store) ListExpenses(owner *models.User, rng models.DateRange) ([]models.NonInvoiceExpense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE ((company_id = ? AND company_id != '') OR user_id = ?)"
	args := []interface{}{owner.CompanyID, owner.UserID}

	if rng.StartDate != "" {
		query += " AND date >= ?"
		args = append(args, rng.StartDate)
	}
	if rng.EndDate != "" {
		query += " AND date <= ?"
		args = append(args, rng.EndDate)
	}
	query += " ORDER BY date DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.NonInvoiceExpense
	for rows.Next() {
		var exp models.NonInvoiceExpense
		var createdAt string
		if err := rows.Scan(&exp.ID, &exp.UserID, &exp.CompanyID, &exp.Description,
			&exp.Amount, &exp.Date, &exp.Category, &exp.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		exp.CreatedAt = parseTime(createdAt)
		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}

func (s *Store) DeleteExpense(id string, owner *models.User) error {
	res, err := s.db.Exec(
		"DELETE FROM expenses WHERE id = ? AND ((company_id = ? AND company_id != '') OR user_id = ?)",
		id, owner.CompanyID, owner.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOrCreateNotificationSettings returns the user's settings, creating
// defaults on first access the way the backend does.
func (s *Store) GetOrCreateNotificationSettings(userID string) (*models.NotificationSettings, error) {
	settings, err := s.getNotificationSettings(userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	defaults := &models.NotificationSettings{
		ID:            userID,
		UserID:        userID,
		PeriodicDates: []int{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err = s.db.Exec(`
		INSERT INTO notification_settings (user_id, vat_threshold_enabled, vat_threshold_amount,
			periodic_enabled, periodic_dates_json, created_at, updated_at)
		VALUES (?, 0, 0, 0, '[]', ?, ?)
	`, userID, fmtTime(now), fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification settings: %w", err)
	}
	return defaults, nil
}

func (s *Store) getNotificationSettings(userID string) (*models.NotificationSettings, error) {
	var n models.NotificationSettings
	var datesJSON, createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT user_id, vat_threshold_enabled, vat_threshold_amount, periodic_enabled,
			periodic_dates_json, created_at, updated_at
		FROM notification_settings WHERE user_id = ?
	`, userID).Scan(&n.UserID, &n.VATThresholdEnabled, &n.VATThresholdAmount,
		&n.PeriodicEnabled, &datesJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification settings: %w", err)
	}
	n.ID = n.UserID
	n.CreatedAt = parseTime(createdAt)
	n.UpdatedAt = parseTime(updatedAt)
	if err := json.Unmarshal([]byte(datesJSON), &n.PeriodicDates); err != nil {
		n.PeriodicDates = []int{}
	}
	return &n, nil
}

func (s *Store) UpdateNotificationSettings(userID string, upd models.NotificationSettingsUpdate) (*models.NotificationSettings, error) {
	settings, err := s.GetOrCreateNotificationSettings(userID)
	if err != nil {
		return nil, err
	}

	if upd.VATThresholdEnabled != nil {
		settings.VATThresholdEnabled = *upd.VATThresholdEnabled
	}
	if upd.VATThresholdAmount != nil {
		settings.VATThresholdAmount = *upd.VATThresholdAmount
	}
	if upd.PeriodicEnabled != nil {
		settings.PeriodicEnabled = *upd.PeriodicEnabled
	}
	if upd.PeriodicDates != nil {
		settings.PeriodicDates = upd.PeriodicDates
	}
	settings.UpdatedAt = time.Now().UTC()

	datesJSON, err := json.Marshal(settings.PeriodicDates)
	if err != nil {
		return nil, fmt.Errorf("failed to encode periodic dates: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE notification_settings SET vat_threshold_enabled = ?, vat_threshold_amount = ?,
			periodic_enabled = ?, periodic_dates_json = ?, updated_at = ?
		WHERE user_id = ?
	`, settings.VATThresholdEnabled, settings.VATThresholdAmount,
		settings.PeriodicEnabled, string(datesJSON), fmtTime(settings.UpdatedAt), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update notification settings: %w", err)
	}
	return settings, nil
}
