package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fakturo/fakturo/internal/roles"
)

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *name == "" {
		return fmt.Errorf("usage: fakturo register -email EMAIL -name NAME")
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	if err := a.session.Register(ctx, *email, password, *name); err != nil {
		return err
	}
	user := a.session.CurrentUser()
	fmt.Printf("Registered and logged in as %s (%s)\n", user.Name, user.Email)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("usage: fakturo login -email EMAIL")
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, *email, password); err != nil {
		return err
	}
	user := a.session.CurrentUser()
	fmt.Printf("Logged in as %s (%s), role %s\n", user.Name, user.Email, user.Role)
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if err := a.session.RefreshUser(ctx); err != nil {
		a.logger.Debug("Could not refresh user, showing cached copy")
	}

	user := a.session.CurrentUser()
	fmt.Printf("User:    %s <%s>\n", user.Name, user.Email)
	fmt.Printf("Role:    %s\n", user.Role)
	if user.CompanyID != "" {
		fmt.Printf("Company: %s\n", user.CompanyID)
	}
	if role, err := roles.ParseRole(user.Role); err == nil {
		perms := make([]string, 0, len(role.Permissions()))
		for _, p := range role.Permissions() {
			perms = append(perms, string(p))
		}
		fmt.Printf("Can:     %s\n", strings.Join(perms, ", "))
	}
	return nil
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
