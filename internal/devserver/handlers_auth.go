package devserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fakturo/fakturo/internal/models"
	"github.com/fakturo/fakturo/internal/roles"
	"github.com/fakturo/fakturo/pkg/utils"
)

const sessionTTL = 7 * 24 * time.Hour

// audit records the action without failing the request; the audit trail
// is advisory.
func (s *Server) audit(c *gin.Context, user *models.User, action, entityType, entityID string) {
	entry := &models.AuditLogEntry{
		ID:         uuid.NewString(),
		UserID:     user.UserID,
		UserName:   user.Name,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  c.ClientIP(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.AppendAuditLog(ownerKey(user), entry); err != nil {
		s.logger.Warn("Failed to append audit entry",
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *Server) issueSession(c *gin.Context, user *models.User) (*models.AuthResponse, error) {
	token := uuid.NewString()
	if err := s.store.CreateSession(token, user.UserID, time.Now().Add(sessionTTL)); err != nil {
		return nil, err
	}
	c.SetCookie("session_token", token, int(sessionTTL.Seconds()), "/", "", false, true)
	return &models.AuthResponse{User: *user, SessionToken: token}, nil
}

func (s *Server) handleRegister(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Password) < 6 {
		detail(c, http.StatusBadRequest, "Паролата трябва да е поне 6 символа")
		return
	}

	if _, _, err := s.store.GetUserByEmail(req.Email); err == nil {
		detail(c, http.StatusBadRequest, "Имейлът вече е регистриран")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при регистрацията")
		return
	}

	user := &models.User{
		UserID:       uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		Role:         string(roles.RoleOwner),
		AuthProvider: "password",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(user, string(hashed)); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		detail(c, http.StatusInternalServerError, "Възникна грешка при регистрацията")
		return
	}

	resp, err := s.issueSession(c, user)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при регистрацията")
		return
	}
	s.audit(c, user, "register", "user", user.UserID)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}

	user, hashed, err := s.store.GetUserByEmail(req.Email)
	if err != nil {
		detail(c, http.StatusUnauthorized, "Грешен имейл или парола")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(req.Password)) != nil {
		detail(c, http.StatusUnauthorized, "Грешен имейл или парола")
		return
	}

	resp, err := s.issueSession(c, user)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при влизането")
		return
	}
	s.audit(c, user, "login", "user", user.UserID)
	c.JSON(http.StatusOK, resp)
}

// handleSession emulates the OAuth redirect exchange: any session id is
// accepted and mapped to a throwaway demo account. Real OAuth stays on
// the production backend.
func (s *Server) handleSession(c *gin.Context) {
	var req models.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}

	email := "oauth-" + req.SessionID + "@fakturo.local"
	user, _, err := s.store.GetUserByEmail(email)
	if err != nil {
		user = &models.User{
			UserID:       uuid.NewString(),
			GoogleID:     req.SessionID,
			Email:        email,
			Name:         "OAuth потребител",
			Role:         string(roles.RoleOwner),
			AuthProvider: "google",
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.store.CreateUser(user, ""); err != nil {
			detail(c, http.StatusInternalServerError, "Възникна грешка при влизането")
			return
		}
	}

	resp, err := s.issueSession(c, user)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при влизането")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) handleLogout(c *gin.Context) {
	user := currentUser(c)
	if token := sessionToken(c); token != "" {
		if err := s.store.DeleteSession(token); err != nil {
			s.logger.Warn("Failed to delete session", zap.Error(err))
		}
	}
	c.SetCookie("session_token", "", -1, "/", "", false, true)
	s.audit(c, user, "logout", "user", user.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "Излязохте успешно"})
}

func (s *Server) handleListUsers(c *gin.Context) {
	user := currentUser(c)
	if user.CompanyID == "" {
		c.JSON(http.StatusOK, []models.CompanyUser{{
			UserID: user.UserID, Email: user.Email, Name: user.Name,
			Role: user.Role, Picture: user.Picture,
		}})
		return
	}

	users, err := s.store.ListCompanyUsers(user.CompanyID)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleUpdateRole(c *gin.Context) {
	user := currentUser(c)
	targetID := c.Param("user_id")

	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "Невалидни данни")
		return
	}
	if _, err := roles.ParseRole(req.Role); err != nil {
		detail(c, http.StatusBadRequest, "Невалидна роля")
		return
	}
	if targetID == user.UserID {
		detail(c, http.StatusBadRequest, "Не можете да промените собствената си роля")
		return
	}

	target, err := s.store.GetUserByID(targetID)
	if err != nil || target.CompanyID != user.CompanyID {
		detail(c, http.StatusNotFound, "Потребителят не е намерен")
		return
	}

	if err := s.store.UpdateUserRole(targetID, req.Role); err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "update", "user", targetID)
	c.JSON(http.StatusOK, gin.H{"message": "Ролята е обновена"})
}

func (s *Server) handleRemoveUser(c *gin.Context) {
	user := currentUser(c)
	targetID := c.Param("user_id")

	if targetID == user.UserID {
		detail(c, http.StatusBadRequest, "Не можете да премахнете себе си")
		return
	}

	target, err := s.store.GetUserByID(targetID)
	if err != nil || target.CompanyID != user.CompanyID {
		detail(c, http.StatusNotFound, "Потребителят не е намерен")
		return
	}

	if err := s.store.DeleteUser(targetID); err != nil {
		detail(c, http.StatusInternalServerError, "Възникна грешка при заявката")
		return
	}
	s.audit(c, user, "delete", "user", targetID)
	c.JSON(http.StatusOK, gin.H{"message": "Потребителят е премахнат"})
}
