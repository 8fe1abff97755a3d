package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nivasa/internal/filter"
)

var (
	flagSearch   string
	flagCategory string
	flagOut      string
	flagSheets   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's expenses as CSV or to the configured spreadsheet",
	Long: `Export writes the (optionally filtered) expenses to a CSV file named
like the dashboard download, to --out, or to stdout with --out -.
With --sheets the rows are appended to the Google Sheets export instead.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagSearch, "search", "", "Only expenses whose description or vendor contains this text")
	exportCmd.Flags().StringVar(&flagCategory, "category", "", "Only expenses in this category")
	exportCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file (- for stdout)")
	exportCmd.Flags().BoolVar(&flagSheets, "sheets", false, "Append to the configured spreadsheet")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	q := filter.ExpenseQuery{Search: flagSearch, Category: flagCategory}

	if flagSheets {
		if !s.cfg.SheetsEnabled() {
			return fmt.Errorf("sheets export is not configured (set GOOGLE_SPREADSHEET_ID)")
		}
		res, err := s.svc.ExportExpensesToSheet(cmd.Context(), user, q)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Appended %d rows to %s\n", res.Rows, res.Range)
		return nil
	}

	payload, err := s.svc.ExportExpensesCSV(cmd.Context(), user, q)
	if err != nil {
		return err
	}
	switch flagOut {
	case "-":
		_, err = os.Stdout.Write(payload.Data)
		return err
	case "":
		flagOut = payload.Filename
	}
	if err := os.WriteFile(flagOut, payload.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flagOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", flagOut)
	return nil
}
