package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/export"
	"github.com/fakturo/fakturo/internal/models"
)

func (s *Server) handleExportExcel(c *gin.Context) {
	invoices, revenues, expenses, err := s.ownerBooks(currentUser(c), queryRange(c))
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}

	summary := buildSummary(invoices, revenues, expenses)
	f, err := export.BuildInvoiceWorkbook(invoices, &summary)
	if err != nil {
		s.logger.Error("Failed to build Excel export", zap.Error(err))
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("fakturo-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		s.logger.Error("Failed to stream Excel export", zap.Error(err))
	}
}

// PDF rendering runs on the production backend only; the dev server
// says so instead of shipping a second rendering stack.
func (s *Server) handleExportPDF(c *gin.Context) {
	detail(c, http.StatusNotImplemented, "PDF експортът не е наличен в тестовата среда")
}

// backupPayload is the snapshot format stored by /backup/create.
type backupPayload struct {
	Invoices []models.Invoice           `json:"invoices"`
	Revenues []models.DailyRevenue      `json:"daily_revenue"`
	Expenses []models.NonInvoiceExpense `json:"expenses"`
}

func (s *Server) handleCreateBackup(c *gin.Context) {
	user := currentUser(c)

	invoices, revenues, expenses, err := s.ownerBooks(user, models.DateRange{})
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}

	// The list call strips images; re-fetch each invoice so the
	// snapshot is complete enough to restore from.
	for i := range invoices {
		full, err := s.store.GetInvoice(invoices[i].ID, user)
		if err == nil {
			invoices[i] = *full
		}
	}

	payload, err := json.Marshal(backupPayload{Invoices: invoices, Revenues: revenues, Expenses: expenses})
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}

	info := &models.BackupInfo{
		ID:           uuid.NewString(),
		CompanyID:    user.CompanyID,
		CreatedAt:    time.Now().UTC(),
		SizeBytes:    int64(len(payload)),
		InvoiceCount: len(invoices),
		Status:       "completed",
	}
	if err := s.store.CreateBackup(ownerKey(user), info, payload); err != nil {
		s.logger.Error("Failed to create backup", zap.Error(err))
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "create", "backup", info.ID)
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleBackupStatus(c *gin.Context) {
	status, err := s.store.GetBackupStatus(ownerKey(currentUser(c)))
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleListBackups(c *gin.Context) {
	backups, err := s.store.ListBackups(ownerKey(currentUser(c)))
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	if backups == nil {
		backups = []models.BackupInfo{}
	}
	c.JSON(http.StatusOK, backups)
}

func (s *Server) handleRestoreBackup(c *gin.Context) {
	user := currentUser(c)

	var req models.BackupRestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BackupID == "" {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}

	raw, err := s.store.GetBackupPayload(ownerKey(user), req.BackupID)
	if err != nil {
		detail(c, http.StatusNotFound, "Резервното копие не е намерено")
		return
	}
	var payload backupPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		detail(c, http.StatusInternalServerError, "Резервното копие е повредено")
		return
	}

	if err := s.store.PurgeOwnerBooks(user); err != nil {
		s.logger.Error("Failed to purge before restore", zap.Error(err))
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	for i := range payload.Invoices {
		if err := s.store.CreateInvoice(&payload.Invoices[i]); err != nil {
			detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
			return
		}
	}
	for i := range payload.Revenues {
		if err := s.store.UpsertDailyRevenue(&payload.Revenues[i]); err != nil {
			detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
			return
		}
	}
	for i := range payload.Expenses {
		if err := s.store.CreateExpense(&payload.Expenses[i]); err != nil {
			detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
			return
		}
	}

	s.audit(c, user, "update", "backup", req.BackupID)
	c.JSON(http.StatusOK, gin.H{
		"message":       "Данните са възстановени",
		"invoices":      len(payload.Invoices),
		"daily_revenue": len(payload.Revenues),
		"expenses":      len(payload.Expenses),
	})
}
