// Package devserver runs a local stand-in for the production backend.
// It speaks the same /api surface, including the Bulgarian error
// details, so the client and CLI can be developed and tested offline.
package devserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/config"
	"github.com/fakturo/fakturo/internal/models"
	"github.com/fakturo/fakturo/internal/roles"
)

const userContextKey = "devserver.user"

// Server serves the backend API surface over a local SQLite store.
type Server struct {
	cfg       config.DevServerConfig
	store     *Store
	extractor InvoiceExtractor
	logger    *zap.Logger
	engine    *gin.Engine
}

// NewServer wires the routes. The extractor may be a live OpenAI client
// or the deterministic stub, depending on configuration.
func NewServer(cfg config.DevServerConfig, store *Store, extractor InvoiceExtractor, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		logger:    logger,
		engine:    engine,
	}
	s.registerRoutes()
	return s
}

// Handler exposes the router, mainly for tests mounting the server on
// an httptest listener.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Dev server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("dev server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down dev server")
		return srv.Shutdown(context.Background())
	}
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/session", s.handleSession)

	authed := api.Group("", s.requireAuth())

	authed.GET("/auth/me", s.handleMe)
	authed.POST("/auth/logout", s.handleLogout)
	authed.GET("/auth/users", s.requirePermission(roles.PermManageUsers), s.handleListUsers)
	authed.PUT("/auth/role/:user_id", s.requirePermission(roles.PermManageUsers), s.handleUpdateRole)
	authed.DELETE("/auth/users/:user_id", s.requirePermission(roles.PermManageUsers), s.handleRemoveUser)

	authed.POST("/ocr/scan", s.handleScan)

	authed.POST("/invoices", s.handleCreateInvoice)
	authed.GET("/invoices", s.handleListInvoices)
	authed.GET("/invoices/:id", s.handleGetInvoice)
	authed.PUT("/invoices/:id", s.handleUpdateInvoice)
	authed.DELETE("/invoices/:id", s.handleDeleteInvoice)

	authed.POST("/daily-revenue", s.handleCreateDailyRevenue)
	authed.GET("/daily-revenue", s.handleListDailyRevenue)
	authed.GET("/daily-revenue/today", s.handleTodayRevenue)
	authed.GET("/daily-revenue/by-date/:date", s.handleRevenueByDate)

	authed.POST("/expenses", s.handleCreateExpense)
	authed.GET("/expenses", s.handleListExpenses)
	authed.DELETE("/expenses/:id", s.handleDeleteExpense)

	authed.GET("/statistics/summary", s.handleSummary)
	authed.GET("/statistics/chart-data", s.handleChartData)
	authed.GET("/statistics/suppliers", s.handleSupplierStats)
	authed.GET("/statistics/items", s.handleItemStats)
	authed.GET("/statistics/price-alerts", s.handlePriceAlerts)

	authed.GET("/export/excel", s.requirePermission(roles.PermExportData), s.handleExportExcel)
	authed.GET("/export/pdf", s.requirePermission(roles.PermExportData), s.handleExportPDF)

	authed.GET("/company", s.handleGetCompany)
	authed.POST("/company", s.handleCreateCompany)
	authed.PUT("/company", s.requirePermission(roles.PermManageCompany), s.handleUpdateCompany)
	authed.POST("/company/join/:eik", s.handleJoinCompany)
	authed.POST("/company/leave", s.handleLeaveCompany)

	authed.POST("/invitations", s.requirePermission(roles.PermManageInvitations), s.handleCreateInvitation)
	authed.GET("/invitations", s.requirePermission(roles.PermManageInvitations), s.handleListInvitations)
	authed.DELETE("/invitations/:id", s.requirePermission(roles.PermManageInvitations), s.handleDeleteInvitation)
	authed.POST("/invitations/accept", s.handleAcceptInvitation)

	authed.GET("/notifications/settings", s.handleGetNotificationSettings)
	authed.PUT("/notifications/settings", s.handleUpdateNotificationSettings)

	authed.POST("/backup/create", s.requirePermission(roles.PermManageBackup), s.handleCreateBackup)
	authed.GET("/backup/status", s.requirePermission(roles.PermManageBackup), s.handleBackupStatus)
	authed.GET("/backup/list", s.requirePermission(roles.PermManageBackup), s.handleListBackups)
	authed.POST("/backup/restore", s.requirePermission(roles.PermManageBackup), s.handleRestoreBackup)

	authed.GET("/budget", s.handleGetBudget)
	authed.POST("/budget", s.handleSetBudget)
	authed.GET("/recurring-expenses", s.handleListRecurring)
	authed.POST("/recurring-expenses", s.handleCreateRecurring)
	authed.DELETE("/recurring-expenses/:id", s.handleDeleteRecurring)
	authed.GET("/forecast", s.handleForecast)
	authed.GET("/audit-log", s.handleAuditLog)
}

// detail writes an error body in the backend's {"detail": ...} shape.
func detail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": message})
}

// sessionToken pulls the token from the cookie or the Bearer header;
// the mobile client sends both, the CLI only the header.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie("session_token"); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			detail(c, http.StatusUnauthorized, "Не сте влезли в системата")
			return
		}

		user, err := s.store.GetSessionUser(token)
		if err != nil {
			detail(c, http.StatusUnauthorized, "Невалидна сесия")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func (s *Server) requirePermission(p roles.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		role, err := roles.ParseRole(user.Role)
		if err != nil || !role.Has(p) {
			detail(c, http.StatusForbidden, "Нямате права за това действие")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userContextKey).(*models.User)
}
