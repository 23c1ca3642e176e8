package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/local/batchprint/internal/settings"
	"github.com/local/batchprint/internal/spooler"
)

var printersCmd = &cobra.Command{
	Use:   "printers",
	Short: "List CUPS printers",
	Long: `Printers lists the destinations CUPS knows. The printer a run without
--printer would use is marked with "*".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spool := spooler.New(spooler.Config{
			LPBinary:     cfg.Spooler.LPBinary,
			LPStatBinary: cfg.Spooler.LPStatBinary,
			Timeout:      cfg.Spooler.Timeout,
		})
		printers, err := spool.Printers(cmd.Context())
		if err != nil {
			return err
		}
		sysDefault, _ := spool.Default(cmd.Context())
		remembered := settings.Load(settingsPath()).LastPrinter
		chosen := spooler.Preferred(printers, remembered, sysDefault)

		out := cmd.OutOrStdout()
		for _, p := range printers {
			mark := " "
			if p == chosen {
				mark = "*"
			}
			var notes string
			switch {
			case p == remembered && p == sysDefault:
				notes = "  (last used, system default)"
			case p == remembered:
				notes = "  (last used)"
			case p == sysDefault:
				notes = "  (system default)"
			}
			fmt.Fprintf(out, "%s %s%s\n", mark, p, notes)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(printersCmd)
}
