// Command fakturo is a terminal client for the Fakturo backend: login,
// invoice and revenue entry, statistics and exports without the mobile
// app.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/api"
	"github.com/fakturo/fakturo/internal/config"
	"github.com/fakturo/fakturo/internal/export"
	"github.com/fakturo/fakturo/internal/roles"
	"github.com/fakturo/fakturo/internal/scan"
	"github.com/fakturo/fakturo/internal/session"
	"github.com/fakturo/fakturo/pkg/database"
	"github.com/fakturo/fakturo/pkg/utils"
)

const usage = `Usage: fakturo [-config path] <command> [arguments]

Commands:
  register    create an account
  login       sign in with email and password
  logout      sign out
  whoami      show the current user
  invoices    list invoices
  scan        extract fields from an invoice photo or PDF
  revenue     record or list daily revenue
  expenses    record or list non-invoice expenses
  stats       show the period summary
  export      export invoices to an Excel file
  company     show, create, join or leave a company
  users       manage company users
  invite      create or accept invitations
  backup      create, list or restore backups
`

// app carries the wired client stack shared by all commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *api.Client
	session *session.Manager
	checker *roles.Checker
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client, err := api.New(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create API client: %v\n", err)
		os.Exit(1)
	}

	db, err := database.New(database.Config{Path: cfg.Session.DBPath}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := session.NewStore(db, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize session store: %v\n", err)
		os.Exit(1)
	}

	manager := session.NewManager(client, store, logger)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		session: manager,
		checker: roles.NewChecker(manager),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Resume a persisted session; commands that need auth check below.
	manager.Restore(ctx)

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.cmdRegister(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		a.session.Logout(ctx)
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return a.cmdWhoami(ctx)
	case "invoices":
		return a.cmdInvoices(ctx, args)
	case "scan":
		return a.cmdScan(ctx, args)
	case "revenue":
		return a.cmdRevenue(ctx, args)
	case "expenses":
		return a.cmdExpenses(ctx, args)
	case "stats":
		return a.cmdStats(ctx, args)
	case "export":
		return a.cmdExport(ctx, args)
	case "company":
		return a.cmdCompany(ctx, args)
	case "users":
		return a.cmdUsers(ctx, args)
	case "invite":
		return a.cmdInvite(ctx, args)
	case "backup":
		return a.cmdBackup(ctx, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// requireAuth guards commands that talk to authenticated endpoints.
func (a *app) requireAuth() error {
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("not logged in, run 'fakturo login' first")
	}
	return nil
}

// requirePermission fails fast before the backend would reject the call
// anyway, mirroring how the app hides gated screens.
func (a *app) requirePermission(p roles.Permission) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if !a.checker.HasPermission(p) {
		return fmt.Errorf("your role does not allow this action")
	}
	return nil
}

func (a *app) newScanner() *scan.Preparer {
	return scan.NewPreparer(a.client, a.logger)
}

func (a *app) newExcelWriter() *export.ExcelWriter {
	return export.NewExcelWriter(a.cfg.Export.OutputDir, a.logger)
}
