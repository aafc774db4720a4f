package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/engine"
	"github.com/MrJamesThe3rd/budgetwise/internal/export"
)

var (
	flagLimit  int
	flagFormat string
)

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Show recent payments with totals",
	Args:  cobra.NoArgs,
	RunE:  runPayments,
}

func init() {
	paymentsCmd.Flags().IntVarP(&flagLimit, "limit", "n", engine.DefaultRecent, "Number of payments to show (0 for all)")
	paymentsCmd.Flags().StringVar(&flagFormat, "format", "", "Write the full log as csv or txt instead of a table")
	rootCmd.AddCommand(paymentsCmd)
}

func runPayments(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}

	all := e.Payments()
	out := cmd.OutOrStdout()

	if flagFormat != "" {
		format, err := export.ParseFormat(flagFormat)
		if err != nil {
			return err
		}

		return export.Write(out, format, all)
	}

	if len(all) == 0 {
		fmt.Fprintln(out, "No payments recorded.")
		return nil
	}

	n := flagLimit
	if n <= 0 {
		n = len(all)
	}

	renderPayments(out, bill.Recent(all, n))

	sum := bill.SummarizePayments(all)
	fmt.Fprintf(out, "%d payments, total %s, average %s, %d late\n",
		sum.Count, sum.Total.StringFixed(2), sum.Average.StringFixed(2), sum.Late)

	return nil
}
