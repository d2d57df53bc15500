package devserver

import (
	"errors"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/models"
)

// ownerBooks loads the three ledgers for the period in one place; every
// statistics endpoint starts from the same snapshot.
func (s *Server) ownerBooks(user *models.User, rng models.DateRange) ([]models.Invoice, []models.DailyRevenue, []models.NonInvoiceExpense, error) {
	invoices, err := s.store.ListInvoices(user, models.InvoiceFilter{StartDate: rng.StartDate, EndDate: rng.EndDate})
	if err != nil {
		return nil, nil, nil, err
	}
	revenues, err := s.store.ListDailyRevenue(user, rng)
	if err != nil {
		return nil, nil, nil, err
	}
	expenses, err := s.store.ListExpenses(user, rng)
	if err != nil {
		return nil, nil, nil, err
	}
	return invoices, revenues, expenses, nil
}

func queryRange(c *gin.Context) models.DateRange {
	return models.DateRange{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
}

func (s *Server) handleSummary(c *gin.Context) {
	invoices, revenues, expenses, err := s.ownerBooks(currentUser(c), queryRange(c))
	if err != nil {
		s.logger.Error("Failed to compute summary", zap.Error(err))
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, buildSummary(invoices, revenues, expenses))
}

func (s *Server) handleChartData(c *gin.Context) {
	start := periodStart(c.DefaultQuery("period", "week"), time.Now())
	rng := models.DateRange{StartDate: start.Format("2006-01-02")}

	invoices, revenues, expenses, err := s.ownerBooks(currentUser(c), rng)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, buildChartData(invoices, revenues, expenses))
}

func (s *Server) handleSupplierStats(c *gin.Context) {
	invoices, err := s.store.ListInvoices(currentUser(c), models.InvoiceFilter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	})
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, buildSupplierStats(invoices))
}

func (s *Server) handleItemStats(c *gin.Context) {
	invoices, err := s.store.ListInvoices(currentUser(c), models.InvoiceFilter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	})
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, buildItemStats(invoices))
}

// handlePriceAlerts recomputes alerts from the invoice history: a unit
// price moving 20% or more against the same item's previous price.
func (s *Server) handlePriceAlerts(c *gin.Context) {
	user := currentUser(c)
	invoices, err := s.store.ListInvoices(user, models.InvoiceFilter{})
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}

	// ListInvoices returns newest-first; walk oldest-first.
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].Date.Before(invoices[j].Date) })

	lastPrice := make(map[string]float64)
	alerts := []models.PriceAlert{}
	for _, inv := range invoices {
		for _, item := range inv.Items {
			prev, seen := lastPrice[item.Name]
			lastPrice[item.Name] = item.UnitPrice
			if !seen || prev == 0 || item.UnitPrice == 0 {
				continue
			}
			change := (item.UnitPrice - prev) / prev * 100
			if math.Abs(change) < 20 {
				continue
			}
			alerts = append(alerts, models.PriceAlert{
				ID:            uuid.NewString(),
				CompanyID:     user.CompanyID,
				ItemName:      item.Name,
				Supplier:      inv.Supplier,
				OldPrice:      prev,
				NewPrice:      item.UnitPrice,
				ChangePercent: round2(change),
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
				Status:        "new",
			})
		}
	}
	c.JSON(http.StatusOK, alerts)
}

func (s *Server) handleGetBudget(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	budget, err := s.store.GetBudget(ownerKey(currentUser(c)), month)
	if errors.Is(err, ErrNotFound) {
		detail(c, http.StatusNotFound, "Няма зададен бюджет за този месец")
		return
	}
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (s *Server) handleSetBudget(c *gin.Context) {
	user := currentUser(c)

	var req models.BudgetSet
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}
	if _, err := time.Parse("2006-01", req.Month); err != nil {
		detail(c, http.StatusBadRequest, "Невалиден месец")
		return
	}
	if req.ExpenseLimit <= 0 {
		detail(c, http.StatusBadRequest, "Лимитът трябва да е положително число")
		return
	}
	if req.AlertThreshold <= 0 {
		req.AlertThreshold = 80
	}

	budget := &models.Budget{
		ID:             uuid.NewString(),
		CompanyID:      user.CompanyID,
		Month:          req.Month,
		ExpenseLimit:   req.ExpenseLimit,
		AlertThreshold: req.AlertThreshold,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.UpsertBudget(ownerKey(user), budget); err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}

	stored, err := s.store.GetBudget(ownerKey(user), req.Month)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "update", "budget", stored.ID)
	c.JSON(http.StatusOK, stored)
}

func (s *Server) handleListRecurring(c *gin.Context) {
	expenses, err := s.store.ListRecurringExpenses(ownerKey(currentUser(c)))
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	if expenses == nil {
		expenses = []models.RecurringExpense{}
	}
	c.JSON(http.StatusOK, expenses)
}

func (s *Server) handleCreateRecurring(c *gin.Context) {
	user := currentUser(c)

	var req models.RecurringExpenseCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}
	if req.Description == "" || req.Amount <= 0 {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}
	if req.DayOfMonth < 1 || req.DayOfMonth > 28 {
		detail(c, http.StatusBadRequest, "Денят трябва да е между 1 и 28")
		return
	}

	exp := &models.RecurringExpense{
		ID:          uuid.NewString(),
		CompanyID:   user.CompanyID,
		UserID:      user.UserID,
		Description: req.Description,
		Amount:      req.Amount,
		DayOfMonth:  req.DayOfMonth,
		Category:    req.Category,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateRecurringExpense(ownerKey(user), exp); err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "create", "recurring_expense", exp.ID)
	c.JSON(http.StatusOK, exp)
}

func (s *Server) handleDeleteRecurring(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	err := s.store.DeactivateRecurringExpense(ownerKey(user), id)
	if errors.Is(err, ErrNotFound) {
		detail(c, http.StatusNotFound, "Записът не е намерен")
		return
	}
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "delete", "recurring_expense", id)
	c.JSON(http.StatusOK, gin.H{"message": "Записът е деактивиран"})
}

// handleForecast projects coming months from the recurring templates
// plus the trailing three-month average of actual spending.
func (s *Server) handleForecast(c *gin.Context) {
	user := currentUser(c)

	months := 3
	if v := c.Query("months"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 12 {
			months = parsed
		}
	}

	recurring, err := s.store.ListRecurringExpenses(ownerKey(user))
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	var recurringTotal float64
	for _, r := range recurring {
		if r.IsActive {
			recurringTotal += r.Amount
		}
	}

	now := time.Now()
	trailingStart := now.AddDate(0, -3, 0).Format("2006-01-02")
	invoices, _, expenses, err := s.ownerBooks(user, models.DateRange{StartDate: trailingStart})
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	var trailing float64
	for _, inv := range invoices {
		trailing += inv.TotalAmount
	}
	for _, exp := range expenses {
		trailing += exp.Amount
	}
	baseline := trailing / 3

	points := make([]models.ForecastPoint, 0, months)
	for i := 1; i <= months; i++ {
		month := now.AddDate(0, i, 0).Format("2006-01")
		points = append(points, models.ForecastPoint{
			Month:     month,
			Projected: round2(baseline + recurringTotal),
		})
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) handleAuditLog(c *gin.Context) {
	rng := queryRange(c)
	since := time.Time{}
	if rng.StartDate != "" {
		if parsed, err := time.Parse("2006-01-02", rng.StartDate); err == nil {
			since = parsed
		}
	}

	entries, err := s.store.ListAuditLog(ownerKey(currentUser(c)), since, 100)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	if entries == nil {
		entries = []models.AuditLogEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
