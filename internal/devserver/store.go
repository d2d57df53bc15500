package devserver

import (
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/pkg/database"
)

// Store persists the dev server's data in SQLite. Layout mirrors the
// production backend's collections closely enough that the client
// cannot tell the two apart.
type Store struct {
	db     *database.DB
	logger *zap.Logger
}

var migrations = []database.Migration{
	{
		Version: 1,
		Name:    "create_core_tables",
		SQL: `
			CREATE TABLE users (
				user_id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				picture TEXT NOT NULL DEFAULT '',
				company_id TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL DEFAULT 'staff',
				auth_provider TEXT NOT NULL DEFAULT 'password',
				hashed_password TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			);
			CREATE TABLE sessions (
				session_token TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL
			);
			CREATE TABLE companies (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				eik TEXT NOT NULL DEFAULT '',
				vat_number TEXT NOT NULL DEFAULT '',
				mol TEXT NOT NULL DEFAULT '',
				address TEXT NOT NULL DEFAULT '',
				city TEXT NOT NULL DEFAULT '',
				phone TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL DEFAULT '',
				bank_name TEXT NOT NULL DEFAULT '',
				bank_iban TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);
			CREATE TABLE invitations (
				id TEXT PRIMARY KEY,
				company_id TEXT NOT NULL,
				invited_by TEXT NOT NULL,
				role TEXT NOT NULL,
				code TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				used INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_bookkeeping_tables",
		SQL: `
			CREATE TABLE invoices (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				company_id TEXT NOT NULL DEFAULT '',
				supplier TEXT NOT NULL,
				invoice_number TEXT NOT NULL,
				amount_without_vat REAL NOT NULL,
				vat_amount REAL NOT NULL,
				total_amount REAL NOT NULL,
				date TEXT NOT NULL,
				image_base64 TEXT NOT NULL DEFAULT '',
				notes TEXT NOT NULL DEFAULT '',
				items_json TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			);
			CREATE INDEX idx_invoices_owner_date ON invoices (user_id, company_id, date);
			CREATE TABLE daily_revenue (
				id TEXT PRIMARY KEY,
				owner_key TEXT NOT NULL,
				user_id TEXT NOT NULL,
				company_id TEXT NOT NULL DEFAULT '',
				date TEXT NOT NULL,
				fiscal_revenue REAL NOT NULL,
				pocket_money REAL NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				UNIQUE (owner_key, date)
			);
			CREATE TABLE expenses (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				company_id TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL,
				amount REAL NOT NULL,
				date TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				notes TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			);
			CREATE TABLE notification_settings (
				user_id TEXT PRIMARY KEY,
				vat_threshold_enabled INTEGER NOT NULL DEFAULT 0,
				vat_threshold_amount REAL NOT NULL DEFAULT 0,
				periodic_enabled INTEGER NOT NULL DEFAULT 0,
				periodic_dates_json TEXT NOT NULL DEFAULT '[]',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_secondary_tables",
		SQL: `
			CREATE TABLE backups (
				id TEXT PRIMARY KEY,
				owner_key TEXT NOT NULL,
				created_at TEXT NOT NULL,
				size_bytes INTEGER NOT NULL,
				invoice_count INTEGER NOT NULL,
				status TEXT NOT NULL,
				payload BLOB NOT NULL
			);
			CREATE TABLE budgets (
				id TEXT PRIMARY KEY,
				owner_key TEXT NOT NULL,
				month TEXT NOT NULL,
				expense_limit REAL NOT NULL,
				alert_threshold REAL NOT NULL DEFAULT 80,
				created_at TEXT NOT NULL,
				UNIQUE (owner_key, month)
			);
			CREATE TABLE recurring_expenses (
				id TEXT PRIMARY KEY,
				owner_key TEXT NOT NULL,
				user_id TEXT NOT NULL,
				description TEXT NOT NULL,
				amount REAL NOT NULL,
				day_of_month INTEGER NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				is_active INTEGER NOT NULL DEFAULT 1,
				last_generated TEXT,
				created_at TEXT NOT NULL
			);
			CREATE TABLE audit_log (
				id TEXT PRIMARY KEY,
				owner_key TEXT NOT NULL,
				user_id TEXT NOT NULL,
				user_name TEXT NOT NULL,
				action TEXT NOT NULL,
				entity_type TEXT NOT NULL,
				entity_id TEXT NOT NULL DEFAULT '',
				ip_address TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			);
		`,
	},
}

// NewStore migrates and wraps the given database.
func NewStore(db *database.DB, logger *zap.Logger) (*Store, error) {
	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(migrations); err != nil {
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}
