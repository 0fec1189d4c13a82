package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/query"
	"github.com/pharmadash/pharmadash/internal/session"
	"github.com/pharmadash/pharmadash/pkg/config"
	"github.com/pharmadash/pharmadash/pkg/logger"
)

// App wires the configured client, session and query cache behind the
// subcommands. One App serves one invocation.
type App struct {
	cfg       *config.Config
	logger    *logger.Logger
	client    *api.Client
	session   *session.Manager
	cache     *query.Cache
	snapshots *query.SnapshotStore
	stdout    io.Writer
	stderr    io.Writer
}

// NewApp builds the dependency graph from configuration. The snapshot store
// is best-effort: when it cannot be opened the cache runs memory-only and the
// dashboard simply loses offline fallback.
func NewApp(cfg *config.Config, log *logger.Logger) *App {
	tokens := session.NewFileStore(cfg.API.TokenPath)
	client := api.New(&cfg.API, tokens, log)

	snapshots, err := query.OpenSnapshots(cfg.Cache.SnapshotPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Cache.SnapshotPath).Msg("snapshot store unavailable, running memory-only")
		snapshots = nil
	}

	return &App{
		cfg:       cfg,
		logger:    log,
		client:    client,
		session:   session.NewManager(tokens, client.Auth, log),
		cache:     query.NewCache(cfg.Cache.Staleness, snapshots, log),
		snapshots: snapshots,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

// Close releases held resources.
func (a *App) Close() error {
	if a.snapshots != nil {
		return a.snapshots.Close()
	}
	return nil
}

// Run dispatches a subcommand. Exit codes: 0 success, 1 failure, 2 usage.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return 2
	}

	if err := a.session.Init(ctx); err != nil {
		// A broken stored token downgrades to logged-out, it never blocks
		// the command.
		a.logger.Warn().Err(err).Msg("session restore failed")
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "login":
		err = a.cmdLogin(ctx, rest)
	case "logout":
		err = a.cmdLogout()
	case "register":
		err = a.cmdRegister(ctx, rest)
	case "whoami":
		err = a.cmdWhoami()
	case "dashboard":
		err = a.cmdDashboard(ctx, rest)
	case "inventory":
		err = a.cmdInventory(ctx, rest)
	case "upload":
		err = a.cmdUpload(ctx, rest)
	case "prices":
		err = a.cmdPrices(ctx, rest)
	case "analysis":
		err = a.cmdAnalysis(ctx, rest)
	case "forecast":
		err = a.cmdForecast(ctx, rest)
	case "reorder":
		err = a.cmdReorder(ctx, rest)
	case "alerts":
		err = a.cmdAlerts(ctx, rest)
	case "suppliers":
		err = a.cmdSuppliers(ctx, rest)
	case "orders":
		err = a.cmdOrders(ctx, rest)
	case "waste":
		err = a.cmdWaste(ctx, rest)
	case "chat":
		err = a.cmdChat(ctx, rest)
	case "watch":
		err = a.cmdWatch(ctx, rest)
	case "help", "-h", "--help":
		a.usage()
		return 0
	default:
		fmt.Fprintf(a.stderr, "unknown command %q\n\n", cmd)
		a.usage()
		return 2
	}

	if err != nil {
		fmt.Fprintln(a.stderr, "Error:", errorMessage(err))
		return 1
	}
	return 0
}

func (a *App) usage() {
	fmt.Fprint(a.stderr, `Usage: pharmadash <command> [flags]

Session:
  login         Sign in and store the session token
  logout        Discard the stored session token
  register      Create an account and sign in
  whoami        Show the signed-in user

Inventory:
  dashboard     Headline stats, expiry timeline and category breakdown
  inventory     List medicines, batches, stock levels and categories
  upload        Bulk-import inventory from xlsx/xls/csv/json
  prices        Compare competitor prices for a medicine
  analysis      Full inventory analysis report
  forecast      Demand forecast for one medicine
  reorder       Reorder suggestions, critical first

Operations:
  alerts        List, acknowledge and scan alerts
  suppliers     Manage suppliers and purchase orders
  orders        Customer prescription orders
  waste         Waste analytics and batch status
  chat          Ask the inventory assistant
  watch         Poll alerts and reorder suggestions continuously
`)
}

// requireAuth fails fast with a uniform message when no session is active.
func (a *App) requireAuth() error {
	if a.session.State() != session.StateAuthenticated {
		return fmt.Errorf("not signed in; run `pharmadash login` first")
	}
	return nil
}
