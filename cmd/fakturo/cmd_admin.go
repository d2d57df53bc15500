package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/fakturo/fakturo/internal/models"
	"github.com/fakturo/fakturo/internal/roles"
)

func (a *app) cmdCompany(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: fakturo company {show|create|join|leave}")
	}

	switch args[0] {
	case "show":
		company, err := a.client.GetCompany(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Name: %s\nEIK:  %s\n", company.Name, company.EIK)
		if company.VATNumber != "" {
			fmt.Printf("VAT:  %s\n", company.VATNumber)
		}
		if company.MOL != "" {
			fmt.Printf("MOL:  %s\n", company.MOL)
		}
		if company.City != "" {
			fmt.Printf("City: %s\n", company.City)
		}
		return nil

	case "create":
		fs := flag.NewFlagSet("company create", flag.ContinueOnError)
		name := fs.String("name", "", "company name")
		eik := fs.String("eik", "", "registry number (9 or 13 digits)")
		city := fs.String("city", "", "city")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" || *eik == "" {
			return fmt.Errorf("usage: fakturo company create -name NAME -eik EIK")
		}

		company, err := a.client.CreateCompany(ctx, models.CompanyCreate{Name: *name, EIK: *eik, City: *city})
		if err != nil {
			return err
		}
		// The caller's role changed to owner; re-fetch.
		if err := a.session.RefreshUser(ctx); err != nil {
			a.logger.Debug("Could not refresh user after company creation")
		}
		fmt.Printf("Created company %s (EIK %s), you are now its owner\n", company.Name, company.EIK)
		return nil

	case "join":
		if len(args) != 2 {
			return fmt.Errorf("usage: fakturo company join EIK")
		}
		company, err := a.client.JoinCompany(ctx, args[1])
		if err != nil {
			return err
		}
		if err := a.session.RefreshUser(ctx); err != nil {
			a.logger.Debug("Could not refresh user after joining company")
		}
		fmt.Printf("Joined %s\n", company.Name)
		return nil

	case "leave":
		if err := a.client.LeaveCompany(ctx); err != nil {
			return err
		}
		if err := a.session.RefreshUser(ctx); err != nil {
			a.logger.Debug("Could not refresh user after leaving company")
		}
		fmt.Println("Left the company.")
		return nil

	default:
		return fmt.Errorf("unknown company subcommand %q", args[0])
	}
}

func (a *app) cmdUsers(ctx context.Context, args []string) error {
	if err := a.requirePermission(roles.PermManageUsers); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: fakturo users {list|role|remove}")
	}

	switch args[0] {
	case "list":
		users, err := a.client.ListUsers(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%-36s %-25s %-10s %s\n", "ID", "EMAIL", "ROLE", "NAME")
		for _, u := range users {
			fmt.Printf("%-36s %-25s %-10s %s\n", u.UserID, u.Email, u.Role, u.Name)
		}
		return nil

	case "role":
		if len(args) != 3 {
			return fmt.Errorf("usage: fakturo users role USER_ID {owner|manager|staff}")
		}
		if _, err := roles.ParseRole(args[2]); err != nil {
			return err
		}
		if err := a.client.UpdateUserRole(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Printf("Set role of %s to %s\n", args[1], args[2])
		return nil

	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: fakturo users remove USER_ID")
		}
		if err := a.client.RemoveUser(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[1])
		return nil

	default:
		return fmt.Errorf("unknown users subcommand %q", args[0])
	}
}

func (a *app) cmdInvite(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: fakturo invite {create|list|accept}")
	}

	switch args[0] {
	case "create":
		if err := a.requirePermission(roles.PermManageInvitations); err != nil {
			return err
		}
		fs := flag.NewFlagSet("invite create", flag.ContinueOnError)
		role := fs.String("role", string(roles.RoleStaff), "role for the invitee")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if _, err := roles.ParseRole(*role); err != nil {
			return err
		}

		inv, err := a.client.CreateInvitation(ctx, *role)
		if err != nil {
			return err
		}
		fmt.Printf("Invitation code: %s (role %s, valid until %s)\n",
			inv.Code, inv.Role, inv.ExpiresAt.Format("2006-01-02"))
		return nil

	case "list":
		if err := a.requirePermission(roles.PermManageInvitations); err != nil {
			return err
		}
		invitations, err := a.client.ListInvitations(ctx)
		if err != nil {
			return err
		}
		if len(invitations) == 0 {
			fmt.Println("No invitations.")
			return nil
		}
		for _, inv := range invitations {
			state := "open"
			if inv.Used {
				state = "used"
			}
			fmt.Printf("%s  role=%s  %s  expires %s\n",
				inv.Code, inv.Role, state, inv.ExpiresAt.Format("2006-01-02"))
		}
		return nil

	case "accept":
		if len(args) != 2 {
			return fmt.Errorf("usage: fakturo invite accept CODE")
		}
		user, err := a.client.AcceptInvitation(ctx, args[1])
		if err != nil {
			return err
		}
		a.session.SetUser(user)
		fmt.Printf("Joined company %s as %s\n", user.CompanyID, user.Role)
		return nil

	default:
		return fmt.Errorf("unknown invite subcommand %q", args[0])
	}
}

func (a *app) cmdBackup(ctx context.Context, args []string) error {
	if err := a.requirePermission(roles.PermManageBackup); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: fakturo backup {create|status|list|restore}")
	}

	switch args[0] {
	case "create":
		info, err := a.client.CreateBackup(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Backup %s created: %d invoices, %d bytes\n", info.ID, info.InvoiceCount, info.SizeBytes)
		return nil

	case "status":
		status, err := a.client.BackupStatus(ctx)
		if err != nil {
			return err
		}
		if status.LastBackupAt == nil {
			fmt.Println("No backups yet.")
			return nil
		}
		fmt.Printf("%d backups, last at %s\n", status.BackupCount, status.LastBackupAt.Format("2006-01-02 15:04"))
		return nil

	case "list":
		backups, err := a.client.ListBackups(ctx)
		if err != nil {
			return err
		}
		for _, b := range backups {
			fmt.Printf("%s  %s  %d invoices  %d bytes\n",
				b.ID, b.CreatedAt.Format("2006-01-02 15:04"), b.InvoiceCount, b.SizeBytes)
		}
		return nil

	case "restore":
		if len(args) != 2 {
			return fmt.Errorf("usage: fakturo backup restore BACKUP_ID")
		}
		if err := a.client.RestoreBackup(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Backup restored.")
		return nil

	default:
		return fmt.Errorf("unknown backup subcommand %q", args[0])
	}
}
