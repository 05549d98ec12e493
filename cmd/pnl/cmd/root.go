package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pnl",
	Short: "Mark-to-market PnL from a fill stream and a price stream",
	Long: `pnl merges a file of trade fills with a file of price ticks in timestamp
order and keeps running positions, cash and mark-to-market PnL per ticker.

Input lines:
  P <timestamp> <ticker> <price>
  F <timestamp> <ticker> <exec-price> <quantity> <B|S>

Inputs may be plain text or compressed (.gz, .xz, .lzma, .bi5).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
