package cli

import (
	"errors"
	"fmt"

	"invoice_recorder/internal/ledger"
	"invoice_recorder/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var calcCmd = &cobra.Command{
	Use:     "calc",
	Short:   "Evaluate payment 2 without touching storage",
	Example: `  recorder calc --invoice-date 2024-03-01 --payment-date-1 2024-03-11 --payment-1 "1,05,000" --dhara-day 0`,
	RunE:    runCalc,
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().String("invoice-date", "", "Invoice date (YYYY-MM-DD)")
	calcCmd.Flags().String("payment-date-1", "", "Payment 1 date (YYYY-MM-DD)")
	calcCmd.Flags().String("payment-1", "", "Payment 1 amount, e.g. 2,13,546.00")
	calcCmd.Flags().Int("dhara-day", 0, "Grace days")
}

func runCalc(cmd *cobra.Command, args []string) error {
	inv, _ := cmd.Flags().GetString("invoice-date")
	pd1, _ := cmd.Flags().GetString("payment-date-1")
	p1, _ := cmd.Flags().GetString("payment-1")
	dhara, _ := cmd.Flags().GetInt("dhara-day")
	if inv == "" || pd1 == "" || p1 == "" {
		return errors.New("--invoice-date, --payment-date-1 and --payment-1 are required")
	}

	invoiceDate, err := utils.ParseDate(inv)
	if err != nil {
		return err
	}
	paymentDate, err := utils.ParseDate(pd1)
	if err != nil {
		return err
	}
	amount, err := utils.ParseIndianNumber(p1)
	if err != nil {
		return err
	}

	in := ledger.Payment2Input{
		InvoiceDate:  &invoiceDate,
		PaymentDate1: &paymentDate,
		DharaDay:     &dhara,
		Payment1:     decimal.NewNullDecimal(amount),
	}
	days, chargeable, _ := ledger.DaysOverdue(in)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "days_diff:        %d\n", days)
	fmt.Fprintf(out, "days_minus_dhara: %d\n", chargeable)
	fmt.Fprintf(out, "payment_2:        %s\n", ledger.CalculatePayment2(in).StringFixed(2))
	return nil
}
