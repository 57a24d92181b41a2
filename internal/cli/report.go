package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"invoice_recorder/internal/services/reports"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:     "report",
	Short:   "Generate a monthly report and copy it to a local file",
	Example: `  recorder report --owner 42 --month 2024-03 --format xlsx --out march.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		month, _ := cmd.Flags().GetString("month")
		formatStr, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		if owner == "" || month == "" {
			return errors.New("--owner and --month are required")
		}

		f, err := reports.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		if out == "" {
			out = reports.FileName(month, f)
		}

		a, err := newApp(cmd.Context(), settings, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.reports.Generate(cmd.Context(), owner, month, f); err != nil {
			return err
		}
		rc, art, err := a.reports.Open(cmd.Context(), owner, month, f)
		if err != nil {
			return err
		}
		defer rc.Close()

		dst, err := os.Create(out)
		if err != nil {
			return err
		}
		if _, err := io.Copy(dst, rc); err != nil {
			dst.Close()
			return err
		}
		if err := dst.Close(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, object %s)\n", out, art.SizeBytes, art.ObjectKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("owner", "", "Owner id")
	reportCmd.Flags().String("month", "", "Month as YYYY-MM")
	reportCmd.Flags().String("format", "csv", "csv or xlsx")
	reportCmd.Flags().String("out", "", "Output path (default invoices_<month>.<format>)")
}
