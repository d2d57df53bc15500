package devserver

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fakturo/fakturo/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidDate is returned when a date field cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ownerKey scopes records to the company when the user has one,
// otherwise to the user, matching the backend's tenancy rules.
func ownerKey(u *models.User) string {
	if u.CompanyID != "" {
		return u.CompanyID
	}
	return u.UserID
}

func (s *Store) CreateUser(u *models.User, hashedPassword string) error {
	_, err := s.db.Exec(`
		INSERT INTO users (user_id, email, name, picture, company_id, role, auth_provider, hashed_password, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.UserID, u.Email, u.Name, u.Picture, u.CompanyID, u.Role, u.AuthProvider, hashedPassword, fmtTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*models.User, string, error) {
	var u models.User
	var hashedPassword, createdAt string
	err := row.Scan(&u.UserID, &u.Email, &u.Name, &u.Picture, &u.CompanyID,
		&u.Role, &u.AuthProvider, &hashedPassword, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to scan user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, hashedPassword, nil
}

const userColumns = "user_id, email, name, picture, company_id, role, auth_provider, hashed_password, created_at"

func (s *Store) GetUserByEmail(email string) (*models.User, string, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return s.scanUser(row)
}

func (s *Store) GetUserByID(userID string) (*models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE user_id = ?", userID)
	u, _, err := s.scanUser(row)
	return u, err
}

func (s *Store) ListCompanyUsers(companyID string) ([]models.CompanyUser, error) {
	rows, err := s.db.Query(`
		SELECT user_id, email, name, role, picture FROM users
		WHERE company_id = ? ORDER BY created_at
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.CompanyUser
	for rows.Next() {
		var u models.CompanyUser
		if err := rows.Scan(&u.UserID, &u.Email, &u.Name, &u.Role, &u.Picture); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserRole(userID, role string) error {
	res, err := s.db.Exec("UPDATE users SET role = ? WHERE user_id = ?", role, userID)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateUserCompany(userID, companyID, role string) error {
	res, err := s.db.Exec("UPDATE users SET company_id = ?, role = ? WHERE user_id = ?", companyID, role, userID)
	if err != nil {
		return fmt.Errorf("failed to update company membership: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(userID string) error {
	res, err := s.db.Exec("DELETE FROM users WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateSession(token, userID string, expiresAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (session_token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, token, userID, fmtTime(expiresAt), fmtTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSessionUser resolves a token to its user, enforcing expiry.
func (s *Store) GetSessionUser(token string) (*models.User, error) {
	var userID, expiresAt string
	err := s.db.QueryRow(
		"SELECT user_id, expires_at FROM sessions WHERE session_token = ?", token,
	).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if parseTime(expiresAt).Before(time.Now()) {
		return nil, ErrNotFound
	}

	return s.GetUserByID(userID)
}

func (s *Store) DeleteSession(token string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE session_token = ?", token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

const companyColumns = "id, name, eik, vat_number, mol, address, city, phone, email, bank_name, bank_iban, created_at, updated_at"

func (s *Store) CreateCompany(c *models.Company) error {
	_, err := s.db.Exec(`
		INSERT INTO companies (`+companyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.EIK, c.VATNumber, c.MOL, c.Address, c.City, c.Phone,
		c.Email, c.BankName, c.BankIBAN, fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (s *Store) scanCompany(row *sql.Row) (*models.Company, error) {
	var c models.Company
	var createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.Name, &c.EIK, &c.VATNumber, &c.MOL, &c.Address,
		&c.City, &c.Phone, &c.Email, &c.BankName, &c.BankIBAN, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan company: %w", err)
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func (s *Store) GetCompanyByID(id string) (*models.Company, error) {
	return s.scanCompany(s.db.QueryRow("SELECT "+companyColumns+" FROM companies WHERE id = ?", id))
}

func (s *Store) GetCompanyByEIK(eik string) (*models.Company, error) {
	return s.scanCompany(s.db.QueryRow("SELECT "+companyColumns+" FROM companies WHERE eik = ?", eik))
}

func (s *Store) UpdateCompany(c *models.Company) error {
	_, err := s.db.Exec(`
		UPDATE companies SET name = ?, vat_number = ?, mol = ?, address = ?, city = ?,
			phone = ?, email = ?, bank_name = ?, bank_iban = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.VATNumber, c.MOL, c.Address, c.City, c.Phone, c.Email,
		c.BankName, c.BankIBAN, fmtTime(time.Now()), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return nil
}

func (s *Store) CreateInvitation(inv *models.Invitation) error {
	_, err := s.db.Exec(`
		INSERT INTO invitations (id, company_id, invited_by, role, code, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.CompanyID, inv.InvitedBy, inv.Role, inv.Code,
		fmtTime(inv.ExpiresAt), inv.Used, fmtTime(inv.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (s *Store) ListInvitations(companyID string) ([]models.Invitation, error) {
	rows, err := s.db.Query(`
		SELECT id, company_id, invited_by, role, code, expires_at, used, created_at
		FROM invitations WHERE company_id = ? ORDER BY created_at DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		var expiresAt, createdAt string
		if err := rows.Scan(&inv.ID, &inv.CompanyID, &inv.InvitedBy, &inv.Role,
			&inv.Code, &expiresAt, &inv.Used, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		inv.ExpiresAt = parseTime(expiresAt)
		inv.CreatedAt = parseTime(createdAt)
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (s *Store) GetInvitationByCode(code string) (*models.Invitation, error) {
	var inv models.Invitation
	var expiresAt, createdAt string
	err := s.db.QueryRow(`
		SELECT id, company_id, invited_by, role, code, expires_at, used, created_at
		FROM invitations WHERE code = ?
	`, code).Scan(&inv.ID, &inv.CompanyID, &inv.InvitedBy, &inv.Role,
		&inv.Code, &expiresAt, &inv.Used, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	inv.ExpiresAt = parseTime(expiresAt)
	inv.CreatedAt = parseTime(createdAt)
	return &inv, nil
}

func (s *Store) DeleteInvitation(id, companyID string) error {
	res, err := s.db.Exec("DELETE FROM invitations WHERE id = ? AND company_id = ?", id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkInvitationUsed(id string) error {
	_, err := s.db.Exec("UPDATE invitations SET used = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark invitation used: %w", err)
	}
	return nil
}
