package api

import (
	"context"
	"net/http"

	"github.com/fakturo/fakturo/internal/models"
)

// GetCompany fetches the current user's company profile.
func (c *Client) GetCompany(ctx context.Context) (*models.Company, error) {
	var out models.Company
	if err := c.do(ctx, http.MethodGet, "/company", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCompany registers a company and makes the current user its owner.
func (c *Client) CreateCompany(ctx context.Context, req models.CompanyCreate) (*models.Company, error) {
	var out models.Company
	if err := c.do(ctx, http.MethodPost, "/company", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCompany applies profile edits.
func (c *Client) UpdateCompany(ctx context.Context, req models.CompanyUpdate) (*models.Company, error) {
	var out models.Company
	if err := c.do(ctx, http.MethodPut, "/company", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinCompany attaches the current user to an existing company by its
// EIK (registry number).
func (c *Client) JoinCompany(ctx context.Context, eik string) (*models.Company, error) {
	var out models.Company
	if err := c.do(ctx, http.MethodPost, "/company/join/"+eik, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeaveCompany detaches the current user from their company.
func (c *Client) LeaveCompany(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/company/leave", nil, nil, nil)
}

// CreateInvitation issues a join code at the given role.
func (c *Client) CreateInvitation(ctx context.Context, role string) (*models.Invitation, error) {
	var out models.Invitation
	if err := c.do(ctx, http.MethodPost, "/invitations", nil, models.InvitationCreate{Role: role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvitations returns the company's outstanding invitations.
func (c *Client) ListInvitations(ctx context.Context) ([]models.Invitation, error) {
	var out []models.Invitation
	if err := c.do(ctx, http.MethodGet, "/invitations", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteInvitation revokes an unused invitation.
func (c *Client) DeleteInvitation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/invitations/"+id, nil, nil, nil)
}

// AcceptInvitation redeems a join code for the current user.
func (c *Client) AcceptInvitation(ctx context.Context, code string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/invitations/accept", nil, models.InvitationAccept{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
