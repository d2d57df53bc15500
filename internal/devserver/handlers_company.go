package devserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/models"
	"github.com/fakturo/fakturo/internal/roles"
	"github.com/fakturo/fakturo/pkg/utils"
)

const invitationTTL = 7 * 24 * time.Hour

func (s *Server) handleGetCompany(c *gin.Context) {
	user := currentUser(c)
	if user.CompanyID == "" {
		detail(c, http.StatusNotFound, "Нямате фирма")
		return
	}

	company, err := s.store.GetCompanyByID(user.CompanyID)
	if errors.Is(err, ErrNotFound) {
		detail(c, http.StatusNotFound, "Фирмата не е намерена")
		return
	}
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, company)
}

func (s *Server) handleCreateCompany(c *gin.Context) {
	user := currentUser(c)
	if user.CompanyID != "" {
		detail(c, http.StatusBadRequest, "Вече сте член на фирма")
		return
	}

	var req models.CompanyCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}
	if req.Name == "" {
		detail(c, http.StatusBadRequest, "Името на фирмата е задължително")
		return
	}
	if err := utils.ValidateEIK(req.EIK); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetCompanyByEIK(req.EIK); err == nil {
		detail(c, http.StatusBadRequest, "Фирма с този ЕИК вече съществува")
		return
	}

	now := time.Now().UTC()
	company := &models.Company{
		ID:        uuid.NewString(),
		Name:      req.Name,
		EIK:       req.EIK,
		VATNumber: req.VATNumber,
		MOL:       req.MOL,
		Address:   req.Address,
		City:      req.City,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCompany(company); err != nil {
		s.logger.Error("Failed to create company", zap.Error(err))
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}

	// The founder becomes the company owner.
	if err := s.store.UpdateUserCompany(user.UserID, company.ID, string(roles.RoleOwner)); err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	user.CompanyID = company.ID
	user.Role = string(roles.RoleOwner)

	s.audit(c, user, "create", "company", company.ID)
	c.JSON(http.StatusOK, company)
}

func (s *Server) handleUpdateCompany(c *gin.Context) {
	user := currentUser(c)
	if user.CompanyID == "" {
		detail(c, http.StatusNotFound, "Нямате фирма")
		return
	}

	var req models.CompanyUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}

	company, err := s.store.GetCompanyByID(user.CompanyID)
	if err != nil {
		detail(c, http.StatusNotFound, "Фирмата не е намерена")
		return
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.VATNumber != nil {
		company.VATNumber = *req.VATNumber
	}
	if req.MOL != nil {
		company.MOL = *req.MOL
	}
	if req.Address != nil {
		company.Address = *req.Address
	}
	if req.City != nil {
		company.City = *req.City
	}
	if req.Phone != nil {
		company.Phone = *req.Phone
	}
	if req.Email != nil {
		company.Email = *req.Email
	}
	if req.BankName != nil {
		company.BankName = *req.BankName
	}
	if req.BankIBAN != nil {
		company.BankIBAN = *req.BankIBAN
	}

	if err := s.store.UpdateCompany(company); err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	company.UpdatedAt = time.Now().UTC()

	s.audit(c, user, "update", "company", company.ID)
	c.JSON(http.StatusOK, company)
}

// handleJoinCompany attaches the user as staff. Production gates this
// behind an invitation; the dev server allows direct joins by EIK so a
// second test account is one request away.
func (s *Server) handleJoinCompany(c *gin.Context) {
	user := currentUser(c)
	if user.CompanyID != "" {
		detail(c, http.StatusBadRequest, "Вече сте член на фирма")
		return
	}

	company, err := s.store.GetCompanyByEIK(c.Param("eik"))
	if errors.Is(err, ErrNotFound) {
		detail(c, http.StatusNotFound, "Фирмата не е намерена")
		return
	}
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}

	if err := s.store.UpdateUserCompany(user.UserID, company.ID, string(roles.RoleStaff)); err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	user.CompanyID = company.ID
	user.Role = string(roles.RoleStaff)

	s.audit(c, user, "update", "user", user.UserID)
	c.JSON(http.StatusOK, company)
}

func (s *Server) handleLeaveCompany(c *gin.Context) {
	user := currentUser(c)
	if user.CompanyID == "" {
		detail(c, http.StatusBadRequest, "Нямате фирма")
		return
	}

	if err := s.store.UpdateUserCompany(user.UserID, "", string(roles.RoleOwner)); err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "update", "user", user.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "Напуснахте фирмата"})
}

func (s *Server) handleCreateInvitation(c *gin.Context) {
	user := currentUser(c)
	if user.CompanyID == "" {
		detail(c, http.StatusBadRequest, "Нямате фирма")
		return
	}

	var req models.InvitationCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}
	role, err := roles.ParseRole(req.Role)
	if err != nil {
		detail(c, http.StatusBadRequest, "Невалидна роля")
		return
	}
	// Nobody invites above their own rank.
	if !roles.Role(user.Role).AtLeast(role) {
		detail(c, http.StatusForbidden, "Нямате права за това действие")
		return
	}

	inv := &models.Invitation{
		ID:        uuid.NewString(),
		CompanyID: user.CompanyID,
		InvitedBy: user.UserID,
		Role:      string(role),
		Code:      uuid.NewString(),
		ExpiresAt: time.Now().Add(invitationTTL),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateInvitation(inv); err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "create", "invitation", inv.ID)
	c.JSON(http.StatusOK, inv)
}

func (s *Server) handleListInvitations(c *gin.Context) {
	user := currentUser(c)
	if user.CompanyID == "" {
		c.JSON(http.StatusOK, []models.Invitation{})
		return
	}

	invitations, err := s.store.ListInvitations(user.CompanyID)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	if invitations == nil {
		invitations = []models.Invitation{}
	}
	c.JSON(http.StatusOK, invitations)
}

func (s *Server) handleDeleteInvitation(c *gin.Context) {
	user := currentUser(c)

	err := s.store.DeleteInvitation(c.Param("id"), user.CompanyID)
	if errors.Is(err, ErrNotFound) {
		detail(c, http.StatusNotFound, "Поканата не е намерена")
		return
	}
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Поканата е изтрита"})
}

func (s *Server) handleAcceptInvitation(c *gin.Context) {
	user := currentUser(c)
	if user.CompanyID != "" {
		detail(c, http.StatusBadRequest, "Вече сте член на фирма")
		return
	}

	var req models.InvitationAccept
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}

	inv, err := s.store.GetInvitationByCode(req.Code)
	if err != nil || inv.Used || inv.ExpiresAt.Before(time.Now()) {
		detail(c, http.StatusBadRequest, "Невалидна или изтекла покана")
		return
	}

	if err := s.store.UpdateUserCompany(user.UserID, inv.CompanyID, inv.Role); err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	if err := s.store.MarkInvitationUsed(inv.ID); err != nil {
		s.logger.Warn("Failed to mark invitation used", zap.Error(err))
	}
	user.CompanyID = inv.CompanyID
	user.Role = inv.Role

	s.audit(c, user, "update", "user", user.UserID)
	c.JSON(http.StatusOK, user)
}
