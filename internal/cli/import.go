package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"invoice_recorder/internal/services/importer"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import invoices from a CSV or XLSX file",
	Example: `  # local file
  recorder import --owner 42 --file ./march.csv

  # object already in the bucket, or any http(s) url
  recorder import --owner 42 --file s3://invoices/imports/march.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		file, _ := cmd.Flags().GetString("file")
		if owner == "" || file == "" {
			return errors.New("--owner and --file are required")
		}

		// plain names are local files here, not bucket keys
		if !strings.Contains(file, "://") && !filepath.IsAbs(file) && !strings.HasPrefix(file, ".") {
			file = "./" + file
		}

		a, err := newApp(cmd.Context(), settings, true)
		if err != nil {
			return err
		}
		defer a.Close()

		sum, err := a.importer.Import(cmd.Context(), importer.Request{
			OwnerID:  owner,
			FilePath: file,
			FileName: filepath.Base(file),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), sum.Message())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("owner", "", "Owner id the invoices belong to")
	importCmd.Flags().String("file", "", "Local path, s3://bucket/key or http(s) url")
}
