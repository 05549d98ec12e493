package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rustyeddy/pnl/config"
	"github.com/rustyeddy/pnl/id"
	"github.com/rustyeddy/pnl/merge"
	"github.com/rustyeddy/pnl/pnl"
	"github.com/spf13/cobra"
	"github.com/yanun0323/logs"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Merge a fill file and a price file and report PnL",
	Long: `Run reads fills and prices, applies them in timestamp order and prints the
PnL after every price followed by a position summary. A fill and a price with
the same timestamp are applied fill first.

A malformed line aborts the run. A missing input is treated as empty unless
--require-inputs is set.

Examples:
  pnl run --fills fills.gz --prices prices.gz
  pnl run --config run.yaml --marks=false`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runConfigPath    string
	runFillsPath     string
	runPricesPath    string
	runCurrency      string
	runMarks         bool
	runSummary       bool
	runRequireInputs bool
	runPrecision     int32
)

func init() {
	rootCmd.AddCommand(runCmd)

	def := config.Default()
	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().StringVar(&runFillsPath, "fills", def.Inputs.FillsFile, "fill messages file")
	runCmd.Flags().StringVar(&runPricesPath, "prices", def.Inputs.PricesFile, "price messages file")
	runCmd.Flags().StringVar(&runCurrency, "currency", def.Account.Currency, "cash currency fills settle in")
	runCmd.Flags().BoolVar(&runMarks, "marks", def.Report.Marks, "print the PnL after every price")
	runCmd.Flags().BoolVar(&runSummary, "summary", def.Report.Summary, "print a position summary at the end")
	runCmd.Flags().BoolVar(&runRequireInputs, "require-inputs", def.Inputs.Required, "fail if an input cannot be opened")
	runCmd.Flags().Int32Var(&runPrecision, "precision", def.Report.Precision, "decimal places in printed amounts")
}

// runConfig merges the config file, if any, with flags set on the command
// line. Explicit flags win.
func runConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if runConfigPath == "" || flags.Changed("fills") {
		cfg.Inputs.FillsFile = runFillsPath
	}
	if runConfigPath == "" || flags.Changed("prices") {
		cfg.Inputs.PricesFile = runPricesPath
	}
	if runConfigPath == "" || flags.Changed("currency") {
		cfg.Account.Currency = runCurrency
	}
	if runConfigPath == "" || flags.Changed("marks") {
		cfg.Report.Marks = runMarks
	}
	if runConfigPath == "" || flags.Changed("summary") {
		cfg.Report.Summary = runSummary
	}
	if runConfigPath == "" || flags.Changed("require-inputs") {
		cfg.Inputs.Required = runRequireInputs
	}
	if runConfigPath == "" || flags.Changed("precision") {
		cfg.Report.Precision = runPrecision
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runID := id.New(time.Now())
	logs.Infof("run %s: fills=%s prices=%s currency=%s", runID, cfg.Inputs.FillsFile, cfg.Inputs.PricesFile, cfg.Account.Currency)

	rep := newReporter(cmd.OutOrStdout(), cfg.Report.Precision)
	opts := merge.Options{RequireInputs: cfg.Inputs.Required}
	if cfg.Report.Marks {
		opts.OnMark = rep.mark
	}

	state := pnl.NewState(cfg.Account.Currency)
	stats, err := merge.RunFiles(ctx, cfg.Inputs.FillsFile, cfg.Inputs.PricesFile, state, opts)
	if err != nil {
		logs.Errorf("run %s: %+v", runID, err)
		return fmt.Errorf("run %s: %w", runID, err)
	}

	if cfg.Report.Summary {
		if err := rep.summary(runID.String(), stats, state.Snapshot()); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	logs.Infof("run %s: done", runID)
	return nil
}
