package devserver

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fakturo/fakturo/internal/models"
)

func (s *Store) CreateBackup(ownerKey string, info *models.BackupInfo, payload []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO backups (id, owner_key, created_at, size_bytes, invoice_count, status, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, info.ID, ownerKey, fmtTime(info.CreatedAt), info.SizeBytes, info.InvoiceCount, info.Status, payload)
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	return nil
}

func (s *Store) ListBackups(ownerKey string) ([]models.BackupInfo, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, size_bytes, invoice_count, status
		FROM backups WHERE owner_key = ? ORDER BY created_at DESC
	`, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	defer rows.Close()

	var backups []models.BackupInfo
	for rows.Next() {
		var info models.BackupInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &createdAt, &info.SizeBytes, &info.InvoiceCount, &info.Status); err != nil {
			return nil, fmt.Errorf("failed to scan backup: %w", err)
		}
		info.CreatedAt = parseTime(createdAt)
		backups = append(backups, info)
	}
	return backups, rows.Err()
}

func (s *Store) GetBackupPayload(ownerKey, backupID string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(
		"SELECT payload FROM backups WHERE id = ? AND owner_key = ?", backupID, ownerKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backup payload: %w", err)
	}
	return payload, nil
}

// GetBackupStatus summarizes the owner's backup history.
func (s *Store) GetBackupStatus(ownerKey string) (*models.BackupStatus, error) {
	var status models.BackupStatus
	var lastBackup sql.NullString
	err := s.db.QueryRow(
		"SELECT COUNT(*), MAX(created_at) FROM backups WHERE owner_key = ?", ownerKey,
	).Scan(&status.BackupCount, &lastBackup)
	if err != nil {
		return nil, fmt.Errorf("failed to get backup status: %w", err)
	}
	if lastBackup.Valid {
		t := parseTime(lastBackup.String)
		status.LastBackupAt = &t
	}
	return &status, nil
}

// PurgeOwnerBooks wipes the owner's ledgers ahead of a backup restore.
func (s *Store) PurgeOwnerBooks(owner *models.User) error {
	return s.db.WithTransaction(func(tx *sql.Tx) error {
		for _, stmt := range []string{
			"DELETE FROM invoices WHERE ((company_id = ? AND company_id != '') OR user_id = ?)",
			"DELETE FROM expenses WHERE ((company_id = ? AND company_id != '') OR user_id = ?)",
		} {
			if _, err := tx.Exec(stmt, owner.CompanyID, owner.UserID); err != nil {
				return fmt.Errorf("failed to purge books: %w", err)
			}
		}
		if _, err := tx.Exec("DELETE FROM daily_revenue WHERE owner_key = ?", ownerKey(owner)); err != nil {
			return fmt.Errorf("failed to purge books: %w", err)
		}
		return nil
	})
}

// UpsertBudget replaces the owner's budget for the given month.
func (s *Store) UpsertBudget(ownerKey string, b *models.Budget) error {
	_, err := s.db.Exec(`
		INSERT INTO budgets (id, owner_key, month, expense_limit, alert_threshold, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_key, month) DO UPDATE SET
			expense_limit = excluded.expense_limit,
			alert_threshold = excluded.alert_threshold
	`, b.ID, ownerKey, b.Month, b.ExpenseLimit, b.AlertThreshold, fmtTime(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}
	return nil
}

func (s *Store) GetBudget(ownerKey, month string) (*models.Budget, error) {
	var b models.Budget
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, owner_key, month, expense_limit, alert_threshold, created_at
		FROM budgets WHERE owner_key = ? AND month = ?
	`, ownerKey, month).Scan(&b.ID, &b.CompanyID, &b.Month, &b.ExpenseLimit, &b.AlertThreshold, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	b.CreatedAt = parseTime(createdAt)
	return &b, nil
}

func (s *Store) CreateRecurringExpense(ownerKey string, r *models.RecurringExpense) error {
	_, err := s.db.Exec(`
		INSERT INTO recurring_expenses (id, owner_key, user_id, description, amount, day_of_month, category, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, ownerKey, r.UserID, r.Description, r.Amount, r.DayOfMonth, r.Category, r.IsActive, fmtTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create recurring expense: %w", err)
	}
	return nil
}

func (s *Store) ListRecurringExpenses(ownerKey string) ([]models.RecurringExpense, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_key, user_id, description, amount, day_of_month, category, is_active, last_generated, created_at
		FROM recurring_expenses WHERE owner_key = ? ORDER BY created_at
	`, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.RecurringExpense
	for rows.Next() {
		var r models.RecurringExpense
		var lastGenerated sql.NullString
		var createdAt string
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.UserID, &r.Description, &r.Amount,
			&r.DayOfMonth, &r.Category, &r.IsActive, &lastGenerated, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan recurring expense: %w", err)
		}
		if lastGenerated.Valid {
			t := parseTime(lastGenerated.String)
			r.LastGenerated = &t
		}
		r.CreatedAt = parseTime(createdAt)
		expenses = append(expenses, r)
	}
	return expenses, rows.Err()
}

func (s *Store) DeactivateRecurringExpense(ownerKey, id string) error {
	res, err := s.db.Exec(
		"UPDATE recurring_expenses SET is_active = 0 WHERE id = ? AND owner_key = ?", id, ownerKey)
	if err != nil {
		return fmt.Errorf("failed to deactivate recurring expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AppendAuditLog(ownerKey string, entry *models.AuditLogEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO audit_log (id, owner_key, user_id, user_name, action, entity_type, entity_id, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, ownerKey, entry.UserID, entry.UserName, entry.Action,
		entry.EntityType, entry.EntityID, entry.IPAddress, fmtTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListAuditLog returns newest entries first, capped at limit.
func (s *Store) ListAuditLog(ownerKey string, since time.Time, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT id, owner_key, user_id, user_name, action, entity_type, entity_id, ip_address, created_at
		FROM audit_log WHERE owner_key = ? AND created_at >= ?
		ORDER BY created_at DESC LIMIT ?
	`, ownerKey, fmtTime(since), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.UserID, &e.UserName, &e.Action,
			&e.EntityType, &e.EntityID, &e.IPAddress, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
