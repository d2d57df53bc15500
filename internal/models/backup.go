package models

import "time"

// BackupInfo describes one JSON snapshot held by the backend.
type BackupInfo struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	SizeBytes    int64     `json:"size_bytes"`
	InvoiceCount int       `json:"invoice_count"`
	Status       string    `json:"status"`
}

// BackupStatus reports whether a backup exists and when it last ran.
type BackupStatus struct {
	LastBackupAt *time.Time `json:"last_backup_at,omitempty"`
	BackupCount  int        `json:"backup_count"`
	AutoEnabled  bool       `json:"auto_enabled"`
}

// BackupRestoreRequest replays a snapshot over the company's current data.
type BackupRestoreRequest struct {
	BackupID string `json:"backup_id"`
}
