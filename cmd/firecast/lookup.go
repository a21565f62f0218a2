package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/bfp-analytics/go-firecast/areamodels"
	"github.com/spf13/cobra"
)

func lookupCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "lookup NAME...",
		Short: "Show the tuned model order for barangay names",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tbl, err := loadTable(cfg.Forecast.AreaModelsFile)
			if err != nil {
				return err
			}
			if all {
				args = append(args, tbl.Names()...)
			}
			if len(args) == 0 {
				return fmt.Errorf("no names given")
			}
			return printLookup(os.Stdout, tbl, args)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List every barangay in the table")
	return cmd
}

func loadTable(path string) (*areamodels.Table, error) {
	if path == "" {
		return areamodels.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open area models, %w", err)
	}
	defer f.Close()
	return areamodels.Load(f)
}

func printLookup(w io.Writer, tbl *areamodels.Table, names []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "NAME\tMATCH\tMODEL\n"); err != nil {
		return err
	}
	for _, name := range names {
		m := tbl.Lookup(name)
		match := m.Name
		if m.Default {
			match = "(default)"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", name, match, m.Spec); err != nil {
			return err
		}
	}
	return tw.Flush()
}
