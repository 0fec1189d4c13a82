package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pharmadash/pharmadash/internal/mockapi"
	"github.com/pharmadash/pharmadash/pkg/config"
	"github.com/pharmadash/pharmadash/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type testEnv struct {
	app    *App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mockCfg := &config.MockConfig{JWTSecret: "test-secret", TokenExpiry: time.Hour}
	ts := httptest.NewServer(mockapi.NewServer(mockCfg, logger.Nop()).Router())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		API: config.APIConfig{
			BaseURL:        ts.URL,
			RequestTimeout: 10 * time.Second,
			UploadTimeout:  30 * time.Second,
			TokenPath:      filepath.Join(dir, "token"),
		},
		Cache: config.CacheConfig{
			Staleness:    30 * time.Second,
			SnapshotPath: filepath.Join(dir, "snapshots.db"),
		},
		Watch:       config.WatchConfig{AlertInterval: time.Minute, ReorderInterval: time.Minute},
		Environment: config.EnvDevelopment,
	}

	app := NewApp(cfg, logger.Nop())
	t.Cleanup(func() { app.Close() })

	env := &testEnv{app: app, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	app.stdout = env.stdout
	app.stderr = env.stderr
	return env
}

func (e *testEnv) run(t *testing.T, args ...string) int {
	t.Helper()
	e.stdout.Reset()
	e.stderr.Reset()
	return e.app.Run(context.Background(), args)
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	code := e.run(t, "login", "-email", "admin@pharmacy.local", "-password", "admin123")
	require.Equal(t, 0, code, "login failed: %s", e.stderr.String())
}

func TestRun_UnknownCommand(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, 2, env.run(t, "frobnicate"))
	assert.Contains(t, env.stderr.String(), "unknown command")
}

func TestRun_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, 1, env.run(t, "dashboard"))
	assert.Contains(t, env.stderr.String(), "not signed in")
}

func TestLoginWhoamiLogout(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	assert.Contains(t, env.stdout.String(), "Signed in as Admin User")

	require.Equal(t, 0, env.run(t, "whoami"))
	assert.Contains(t, env.stdout.String(), "admin@pharmacy.local")

	require.Equal(t, 0, env.run(t, "logout"))
	assert.Equal(t, 1, env.run(t, "whoami"))
}

func TestLogin_BadCredentialsShowsServerDetail(t *testing.T) {
	env := newTestEnv(t)
	code := env.run(t, "login", "-email", "admin@pharmacy.local", "-password", "nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, env.stderr.String(), "Incorrect email or password")
}

func TestSessionPersistsAcrossApps(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	// A new App over the same config restores the session from the token file.
	second := NewApp(env.app.cfg, logger.Nop())
	t.Cleanup(func() { second.Close() })
	out := &bytes.Buffer{}
	second.stdout = out
	second.stderr = out

	require.Equal(t, 0, second.Run(context.Background(), []string{"whoami"}))
	assert.Contains(t, out.String(), "admin@pharmacy.local")
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	require.Equal(t, 0, env.run(t, "dashboard"))
	out := env.stdout.String()
	assert.Contains(t, out, "Total stock value")
	assert.Contains(t, out, "Expiry timeline")
	assert.NotContains(t, out, "OFFLINE DATA")
}

func TestDashboard_EverySectionMarkedCachedOnRepeat(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	require.Equal(t, 0, env.run(t, "dashboard"))
	require.Equal(t, 0, env.run(t, "dashboard"))
	out := env.stdout.String()
	assert.Contains(t, out, "Sales last 30 days")
	// Stats, expiry timeline, categories, sales trends and top medicines each
	// label their own data source.
	assert.Equal(t, 5, strings.Count(out, "(cached"))
}

func TestInventoryCategories(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	require.Equal(t, 0, env.run(t, "inventory", "categories"))
	out := env.stdout.String()
	assert.Contains(t, out, "Analgesic")
	assert.Contains(t, out, "Antidiabetic")
}

func TestPrices_MarksLowestVendor(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	require.Equal(t, 0, env.run(t, "prices", "paracetamol"))
	out := env.stdout.String()
	assert.Contains(t, out, "1mg")
	assert.Contains(t, out, "lowest")
}

func TestPrices_UnknownMedicine(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	require.Equal(t, 0, env.run(t, "prices", "xylophone500"))
	assert.Contains(t, env.stdout.String(), "No price listings")
}

func TestAnalysisReport(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	require.Equal(t, 0, env.run(t, "analysis"))
	out := env.stdout.String()
	assert.Contains(t, out, "Inventory Analysis")
	assert.Contains(t, out, "Expired batches")
	assert.Contains(t, out, "Demand forecasts")
}

func TestInventoryList_CachedOnRepeat(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	require.Equal(t, 0, env.run(t, "inventory", "list"))
	assert.Contains(t, env.stdout.String(), "MED001")
	assert.NotContains(t, env.stdout.String(), "cached")

	require.Equal(t, 0, env.run(t, "inventory", "list"))
	assert.Contains(t, env.stdout.String(), "(cached")
}

func TestUpload_InvalidatesInventoryCache(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	// Prime the cache.
	require.Equal(t, 0, env.run(t, "inventory", "list"))
	assert.NotContains(t, env.stdout.String(), "MED020")

	path := filepath.Join(t.TempDir(), "import.xlsx")
	writeImportWorkbook(t, path)

	require.Equal(t, 0, env.run(t, "upload", "-quiet", path), "stderr: %s", env.stderr.String())
	assert.Contains(t, env.stdout.String(), "2 imported")

	// The cached medicine list was dirtied, so the new SKU appears live.
	require.Equal(t, 0, env.run(t, "inventory", "list"))
	assert.Contains(t, env.stdout.String(), "MED020")
	assert.NotContains(t, env.stdout.String(), "(cached")
}

func TestUpload_RejectedExtensionNeverHitsServer(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	path := filepath.Join(t.TempDir(), "import.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a spreadsheet"), 0o600))

	assert.Equal(t, 1, env.run(t, "upload", path))
	assert.Contains(t, env.stderr.String(), "file type")
}

func TestAlertsAckAndList(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	require.Equal(t, 0, env.run(t, "alerts", "list"))
	assert.Contains(t, env.stdout.String(), "Metformin")

	require.Equal(t, 0, env.run(t, "alerts", "ack", "1"))
	assert.Contains(t, env.stdout.String(), "Acknowledged alert 1")

	// Acknowledging again still succeeds.
	require.Equal(t, 0, env.run(t, "alerts", "ack", "1"))
}

func TestSuppliersOrderFlow(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	require.Equal(t, 0, env.run(t, "suppliers", "list"))
	assert.Contains(t, env.stdout.String(), "MedSupply Co")

	code := env.run(t, "suppliers", "order", "-supplier", "1", "-items", "1:100")
	require.Equal(t, 0, code, "stderr: %s", env.stderr.String())
	assert.Contains(t, env.stdout.String(), "Purchase order 1 placed")

	require.Equal(t, 0, env.run(t, "suppliers", "orders"))
	assert.Contains(t, env.stdout.String(), "pending")
}

func TestReorder(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	require.Equal(t, 0, env.run(t, "reorder"))
	// Metformin is seeded below its reorder point.
	assert.Contains(t, env.stdout.String(), "Metformin")
}

func TestWasteAnalytics(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	require.Equal(t, 0, env.run(t, "waste", "analytics"))
	out := env.stdout.String()
	assert.Contains(t, out, "expired")
}

func writeImportWorkbook(t *testing.T, path string) {
	t.Helper()
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]any{
		{"sku", "name", "category", "mrp", "cost"},
		{"MED020", "Cetirizine 10mg", "Antihistamine", 25, 14},
		{"MED021", "Omeprazole 20mg", "Antacid", 60, 38},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, wb.SaveAs(path))
}
