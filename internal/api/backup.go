package api

import (
	"context"
	"net/http"

	"github.com/fakturo/fakturo/internal/models"
)

// CreateBackup asks the backend to snapshot the company's data.
func (c *Client) CreateBackup(ctx context.Context) (*models.BackupInfo, error) {
	var out models.BackupInfo
	if err := c.do(ctx, http.MethodPost, "/backup/create", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BackupStatus reports when the last snapshot ran.
func (c *Client) BackupStatus(ctx context.Context) (*models.BackupStatus, error) {
	var out models.BackupStatus
	if err := c.do(ctx, http.MethodGet, "/backup/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBackups returns available snapshots, newest first.
func (c *Client) ListBackups(ctx context.Context) ([]models.BackupInfo, error) {
	var out []models.BackupInfo
	if err := c.do(ctx, http.MethodGet, "/backup/list", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RestoreBackup replays a snapshot over the company's current data.
func (c *Client) RestoreBackup(ctx context.Context, backupID string) error {
	return c.do(ctx, http.MethodPost, "/backup/restore", nil, models.BackupRestoreRequest{BackupID: backupID}, nil)
}

// NotificationSettings fetches the user's reminder configuration.
func (c *Client) NotificationSettings(ctx context.Context) (*models.NotificationSettings, error) {
	var out models.NotificationSettings
	if err := c.do(ctx, http.MethodGet, "/notifications/settings", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNotificationSettings applies reminder configuration edits.
func (c *Client) UpdateNotificationSettings(ctx context.Context, req models.NotificationSettingsUpdate) (*models.NotificationSettings, error) {
	var out models.NotificationSettings
	if err := c.do(ctx, http.MethodPut, "/notifications/settings", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
