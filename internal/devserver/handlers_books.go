package devserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/models"
	"github.com/fakturo/fakturo/pkg/utils"
)

// parseDate accepts both the bare YYYY-MM-DD the forms send and full
// RFC 3339 timestamps from the OCR flow.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (s *Server) handleScan(c *gin.Context) {
	var req models.OCRRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ImageBase64 == "" {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}

	result, err := s.extractor.Extract(c.Request.Context(), req.ImageBase64)
	if err != nil {
		s.logger.Error("OCR extraction failed", zap.Error(err))
		detail(c, http.StatusBadGateway, "Разпознаването на фактурата не успя")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCreateInvoice(c *gin.Context) {
	user := currentUser(c)

	var req models.InvoiceCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}
	if err := utils.ValidateInvoiceCreate(req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		detail(c, http.StatusBadRequest, "Невалидна дата")
		return
	}

	inv := &models.Invoice{
		ID:               uuid.NewString(),
		UserID:           user.UserID,
		CompanyID:        user.CompanyID,
		Supplier:         req.Supplier,
		InvoiceNumber:    req.InvoiceNumber,
		AmountWithoutVAT: req.AmountWithoutVAT,
		VATAmount:        req.VATAmount,
		TotalAmount:      req.TotalAmount,
		Date:             date,
		ImageBase64:      req.ImageBase64,
		Notes:            req.Notes,
		Items:            req.Items,
		CreatedAt:        time.Now().UTC(),
	}
	for i := range inv.Items {
		if inv.Items[i].ID == "" {
			inv.Items[i].ID = uuid.NewString()
		}
	}

	if err := s.store.CreateInvoice(inv); err != nil {
		s.logger.Error("Failed to create invoice", zap.Error(err))
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "create", "invoice", inv.ID)

	// The creation response, like the list, omits the image payload.
	inv.ImageBase64 = ""
	c.JSON(http.StatusOK, inv)
}

func (s *Server) handleListInvoices(c *gin.Context) {
	filter := models.InvoiceFilter{
		Supplier:      c.Query("supplier"),
		InvoiceNumber: c.Query("invoice_number"),
		StartDate:     c.Query("start_date"),
		EndDate:       c.Query("end_date"),
	}

	invoices, err := s.store.ListInvoices(currentUser(c), filter)
	if err != nil {
		s.logger.Error("Failed to list invoices", zap.Error(err))
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	c.JSON(http.StatusOK, invoices)
}

func (s *Server) handleGetInvoice(c *gin.Context) {
	inv, err := s.store.GetInvoice(c.Param("id"), currentUser(c))
	if errors.Is(err, ErrNotFound) {
		detail(c, http.StatusNotFound, "Фактурата не е намерена")
		return
	}
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (s *Server) handleUpdateInvoice(c *gin.Context) {
	user := currentUser(c)

	var req models.InvoiceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}

	inv, err := s.store.UpdateInvoice(c.Param("id"), user, req)
	if errors.Is(err, ErrNotFound) {
		detail(c, http.StatusNotFound, "Фактурата не е намерена")
		return
	}
	if errors.Is(err, ErrInvalidDate) {
		detail(c, http.StatusBadRequest, "Невалидна дата")
		return
	}
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "update", "invoice", inv.ID)
	c.JSON(http.StatusOK, inv)
}

func (s *Server) handleDeleteInvoice(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	err := s.store.DeleteInvoice(id, user)
	if errors.Is(err, ErrNotFound) {
		detail(c, http.StatusNotFound, "Фактурата не е намерена")
		return
	}
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "delete", "invoice", id)
	c.JSON(http.StatusOK, gin.H{"message": "Фактурата е изтрита"})
}

func (s *Server) handleCreateDailyRevenue(c *gin.Context) {
	user := currentUser(c)

	var req models.DailyRevenueCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}
	if err := utils.ValidateDailyRevenueCreate(req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	rev := &models.DailyRevenue{
		ID:            uuid.NewString(),
		UserID:        user.UserID,
		CompanyID:     user.CompanyID,
		Date:          req.Date,
		FiscalRevenue: req.FiscalRevenue,
		PocketMoney:   req.PocketMoney,
		Notes:         req.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.UpsertDailyRevenue(rev); err != nil {
		s.logger.Error("Failed to upsert daily revenue", zap.Error(err))
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}

	// The upsert may have kept a pre-existing row id; return the stored row.
	stored, err := s.store.GetDailyRevenueByDate(user, req.Date)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "create", "revenue", stored.ID)
	c.JSON(http.StatusOK, stored)
}

func (s *Server) handleListDailyRevenue(c *gin.Context) {
	rng := models.DateRange{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	revenues, err := s.store.ListDailyRevenue(currentUser(c), rng)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	if revenues == nil {
		revenues = []models.DailyRevenue{}
	}
	c.JSON(http.StatusOK, revenues)
}

func (s *Server) handleTodayRevenue(c *gin.Context) {
	s.revenueByDate(c, time.Now().Format("2006-01-02"))
}

func (s *Server) handleRevenueByDate(c *gin.Context) {
	s.revenueByDate(c, c.Param("date"))
}

func (s *Server) revenueByDate(c *gin.Context, date string) {
	rev, err := s.store.GetDailyRevenueByDate(currentUser(c), date)
	if errors.Is(err, ErrNotFound) {
		detail(c, http.StatusNotFound, "Няма запис за тази дата")
		return
	}
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, rev)
}

func (s *Server) handleCreateExpense(c *gin.Context) {
	user := currentUser(c)

	var req models.NonInvoiceExpenseCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}
	if err := utils.ValidateExpenseCreate(req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	exp := &models.NonInvoiceExpense{
		ID:          uuid.NewString(),
		UserID:      user.UserID,
		CompanyID:   user.CompanyID,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
		Category:    req.Category,
		Notes:       req.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateExpense(exp); err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "create", "expense", exp.ID)
	c.JSON(http.StatusOK, exp)
}

func (s *Server) handleListExpenses(c *gin.Context) {
	rng := models.DateRange{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	expenses, err := s.store.ListExpenses(currentUser(c), rng)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	if expenses == nil {
		expenses = []models.NonInvoiceExpense{}
	}
	c.JSON(http.StatusOK, expenses)
}

func (s *Server) handleDeleteExpense(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	err := s.store.DeleteExpense(id, user)
	if errors.Is(err, ErrNotFound) {
		detail(c, http.StatusNotFound, "Разходът не е намерен")
		return
	}
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "delete", "expense", id)
	c.JSON(http.StatusOK, gin.H{"message": "Разходът е изтрит"})
}

func (s *Server) handleGetNotificationSettings(c *gin.Context) {
	settings, err := s.store.GetOrCreateNotificationSettings(currentUser(c).UserID)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) handleUpdateNotificationSettings(c *gin.Context) {
	var req models.NotificationSettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}

	settings, err := s.store.UpdateNotificationSettings(currentUser(c).UserID, req)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, settings)
}
