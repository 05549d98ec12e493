package cmd

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rustyeddy/pnl/config"
	"github.com/rustyeddy/pnl/merge"
	"github.com/rustyeddy/pnl/pnl"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with fresh flag state on every subcommand.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for _, c := range []*cobra.Command{runCmd, configInitCmd, configValidateCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeGzip(t *testing.T, path string, lines ...string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	w := gzip.NewWriter(f)
	_, err = w.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func inputs(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	fills := filepath.Join(dir, "fills.gz")
	prices := filepath.Join(dir, "prices.gz")
	writeGzip(t, fills, "F 1 MSFT 10 100 B", "F 2 MSFT 10 100 B", "F 4 MSFT 10 100 B")
	writeGzip(t, prices, "P 1 MSFT 10", "P 3 MSFT 20", "P 5 MSFT 30")
	return fills, prices
}

func TestRunCommand(t *testing.T) {
	fills, prices := inputs(t)

	out, err := execute(t, "run", "--fills", fills, "--prices", prices)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "1 MSFT 0.00\n3 MSFT 2000.00\n5 MSFT 6000.00\n"), out)
	assert.Regexp(t, `Run [0-9A-HJKMNP-TV-Z]{26} complete`, out)
	assert.Contains(t, out, "Fills:  3")
	assert.Contains(t, out, "Cash (USD): -3000.00")
	assert.Contains(t, out, "Market value: 9000.00")
	assert.Contains(t, out, "PnL: 6000.00")
}

func TestRunCommandFromConfig(t *testing.T) {
	fills, prices := inputs(t)

	cfg := config.Default()
	cfg.Inputs.FillsFile = fills
	cfg.Inputs.PricesFile = prices
	cfg.Report.Summary = false
	cfg.Report.Precision = 0
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	out, err := execute(t, "run", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "1 MSFT 0\n3 MSFT 2000\n5 MSFT 6000\n", out)

	// explicit flags override the file
	out, err = execute(t, "run", "--config", path, "--marks=false", "--summary")
	require.NoError(t, err)
	assert.NotContains(t, out, "5 MSFT")
	assert.Contains(t, out, "PnL: 6000")
}

func TestRunCommandMissingInput(t *testing.T) {
	_, prices := inputs(t)
	missing := filepath.Join(t.TempDir(), "nope.gz")

	out, err := execute(t, "run", "--fills", missing, "--prices", prices, "--summary=false")
	require.NoError(t, err)
	assert.Equal(t, "1 MSFT 0.00\n3 MSFT 0.00\n5 MSFT 0.00\n", out)

	_, err = execute(t, "run", "--fills", missing, "--prices", prices, "--require-inputs")
	require.Error(t, err)
	assert.ErrorIs(t, err, merge.ErrSourceUnavailable)
}

func TestRunCommandMalformedInput(t *testing.T) {
	fills, _ := inputs(t)
	prices := filepath.Join(t.TempDir(), "prices.txt")
	require.NoError(t, os.WriteFile(prices, []byte("P 1 MSFT ten\n"), 0o644))

	_, err := execute(t, "run", "--fills", fills, "--prices", prices)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRunCommandBadCurrency(t *testing.T) {
	fills, prices := inputs(t)
	_, err := execute(t, "run", "--fills", fills, "--prices", prices, "--currency", "dollar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account.currency")
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pnl.yaml")

	out, err := execute(t, "config", "init", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = execute(t, "config", "validate", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Currency: USD")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pnl version "+version+"\n", out)
}

func TestReporterSummary(t *testing.T) {
	state := pnl.NewState("USD")
	var buf bytes.Buffer
	rep := newReporter(&buf, 2)

	require.NoError(t, rep.mark(merge.Mark{Time: 1.5, Ticker: "AAPL", PnL: decimal.RequireFromString("-12.344")}))
	assert.Equal(t, "1.5 AAPL -12.34\n", buf.String())

	buf.Reset()
	require.NoError(t, rep.summary("RUN1", merge.Stats{}, state.Snapshot()))
	assert.Contains(t, buf.String(), "Run RUN1 complete")
	assert.Contains(t, buf.String(), "PnL: 0.00")
}
