package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// global flags
	configFile string
	logLevel   string
	logFormat  string

	// input
	inputFile string
	dsn       string
	table     string
	startYear int
	endYear   int

	// horizon
	targetMonth  string
	startMonth   string
	endMonth     string
	months       int
	afterHistory int

	// run
	variant     string
	workers     int
	outputFile  string
	metricsFile string
	plotDir     string
	profileMode string
	summary     bool
	progress    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd leaves error reporting to main so a failure is printed once
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "firecast",
		Short: "Monthly fire incident forecasts per barangay",
		Long: `Builds monthly incident series per barangay from historical records, fits ARIMA and
seasonal ARIMA candidates and reports forecasts with 95% bounds and risk labels.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(lookupCmd())
	return rootCmd
}
