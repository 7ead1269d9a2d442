package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleanquote/internal/errors"
)

const testSeed = `
maintenance {
  price_sqm   = 2.8
  hourly_rate = 38
  extras = {
    carpet = 25
  }
}

city "Köln" {
  travel_fee      = 10
  min_order_value = 80
}
`

// execute runs the root command against a memory backend and no seed file
// unless the test's environment says otherwise
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	if os.Getenv("CLEANQUOTE_STORAGE_BACKEND") == "" {
		t.Setenv("CLEANQUOTE_STORAGE_BACKEND", "memory")
	}
	if os.Getenv("CLEANQUOTE_SEED_PATH") == "" {
		t.Setenv("CLEANQUOTE_SEED_PATH", filepath.Join(t.TempDir(), "missing.hcl"))
	}
	t.Setenv("CLEANQUOTE_LOG_LEVEL", "error")

	cfgFile, verbose = "", false
	quoteFormat, quotePDF = "cli", ""
	exportOutput, exportCompany = "", "CleanQuote"
	restoreDryRun = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.hcl")
	require.NoError(t, os.WriteFile(path, []byte(testSeed), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "cleanquote version "+Version+"\n", out)
}

func TestQuoteJSON(t *testing.T) {
	out, err := execute(t, `{"service_category":"pv","pv_modules_count":15}`, "quote", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"net_price": 150`)
	assert.Contains(t, out, `"total_price": 150`)
}

func TestQuoteCLIWithSeedCity(t *testing.T) {
	t.Setenv("CLEANQUOTE_SEED_PATH", writeSeed(t))

	out, err := execute(t, `{"service_category":"maintenance","hours_estimated":1,"city":"Köln"}`, "quote")
	require.NoError(t, err)
	assert.Contains(t, out, "Quote: maintenance")
	assert.Contains(t, out, "38.00 EUR")
	// 38 lifted to the minimum order of 80, plus 10 travel
	assert.Contains(t, out, "90.00 EUR")
}

func TestQuoteFromFileWritesPDF(t *testing.T) {
	dir := t.TempDir()
	reqPath := filepath.Join(dir, "req.json")
	pdfPath := filepath.Join(dir, "quote.pdf")
	require.NoError(t, os.WriteFile(reqPath, []byte(`{"service_category":"pv","pv_modules_count":3}`), 0644))

	_, err := execute(t, "", "quote", reqPath, "--pdf", pdfPath)
	require.NoError(t, err)

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestQuoteErrors(t *testing.T) {
	_, err := execute(t, `{"service_category":"roof"}`, "quote")
	assert.True(t, errors.IsType(err, errors.TypeUnsupportedCategory))

	_, err = execute(t, `not json`, "quote")
	assert.True(t, errors.IsType(err, errors.TypeInvalidInput))

	_, err = execute(t, `{"service_category":"pv"}`, "quote", "--format", "xml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "", "validate", writeSeed(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Maintenance extras: 1")
	assert.Contains(t, out, "Cities:             1")

	_, err = execute(t, "", "validate", filepath.Join(t.TempDir(), "nope.hcl"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(bad, []byte(`city "X" { travel_fee = -1 }`), 0644))
	_, err = execute(t, "", "validate", bad)
	assert.True(t, errors.IsType(err, errors.TypeConfiguration))
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.xlsx")
	out, err := execute(t, "", "export", "xlsx", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestExportPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.pdf")
	_, err := execute(t, `{"service_category":"glass","calculation_method":"window","glass_count_in":4}`, "export", "pdf", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPricingBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	backup := filepath.Join(dir, "backup.json")

	// Source backend: seeded with Köln.
	t.Setenv("CLEANQUOTE_STORAGE_BACKEND", "file")
	t.Setenv("CLEANQUOTE_STORAGE_PATH", filepath.Join(dir, "source.json"))
	t.Setenv("CLEANQUOTE_SEED_PATH", writeSeed(t))
	out, err := execute(t, "", "pricing", "backup", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up version 1")

	out, err = execute(t, "", "pricing", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Köln")

	// Target backend: built-in defaults, no cities.
	t.Setenv("CLEANQUOTE_STORAGE_PATH", filepath.Join(dir, "target.json"))
	t.Setenv("CLEANQUOTE_SEED_PATH", filepath.Join(dir, "missing.hcl"))

	out, err = execute(t, "", "pricing", "restore", backup, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY-RUN")

	out, err = execute(t, "", "pricing", "restore", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Published version 2")

	out, err = execute(t, "", "pricing", "restore", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "already matches")

	out, err = execute(t, "", "pricing", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:       2")
	assert.Contains(t, out, "Köln")

	_, err = execute(t, "", "pricing", "restore", filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}
