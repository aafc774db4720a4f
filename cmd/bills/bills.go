package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

var (
	flagStatus   string
	flagCategory string

	flagName    string
	flagAmount  string
	flagDue     string
	flagRepeats string

	flagPaidOn string

	editName     string
	editAmount   string
	editCategory string
	editDue      string
	editRepeats  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active bills",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a bill",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

var payCmd = &cobra.Command{
	Use:   "pay <bill>",
	Short: "Mark a bill as paid; recurring bills roll forward to the next due date",
	Args:  cobra.ExactArgs(1),
	RunE:  runPay,
}

var editCmd = &cobra.Command{
	Use:   "edit <bill>",
	Short: "Change a bill's name, amount, category or schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <bill>",
	Short: "Delete a bill",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute overdue statuses",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

func init() {
	listCmd.Flags().StringVar(&flagStatus, "status", "", "Filter by status (upcoming, overdue, paid)")
	listCmd.Flags().StringVar(&flagCategory, "category", "", "Filter by category (case-insensitive)")

	addCmd.Flags().StringVar(&flagName, "name", "", "Bill name")
	addCmd.Flags().StringVar(&flagAmount, "amount", "", "Amount, e.g. 59.90")
	addCmd.Flags().StringVar(&flagCategory, "category", "", "Category")
	addCmd.Flags().StringVar(&flagDue, "due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&flagRepeats, "repeats", string(bill.RecurMonthly), "weekly, monthly, yearly or one-time")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("due")

	payCmd.Flags().StringVar(&flagPaidOn, "on", "", "Payment date (YYYY-MM-DD, default today)")

	editCmd.Flags().StringVar(&editName, "name", "", "New name")
	editCmd.Flags().StringVar(&editAmount, "amount", "", "New amount")
	editCmd.Flags().StringVar(&editCategory, "category", "", "New category, empty to clear")
	editCmd.Flags().StringVar(&editDue, "due", "", "New due date (YYYY-MM-DD)")
	editCmd.Flags().StringVar(&editRepeats, "repeats", "", "weekly, monthly, yearly or one-time")
	editCmd.MarkFlagsOneRequired("name", "amount", "category", "due", "repeats")

	rootCmd.AddCommand(listCmd, addCmd, payCmd, editCmd, deleteCmd, refreshCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}

	var status *bill.Status

	if flagStatus != "" {
		s := bill.Status(strings.ToLower(flagStatus))
		if !s.Valid() {
			return fmt.Errorf("invalid status %q", flagStatus)
		}

		status = &s
	}

	var bills []*bill.Bill

	for _, b := range e.Bills() {
		if status != nil && b.Status != *status {
			continue
		}

		if flagCategory != "" && !strings.EqualFold(b.Category, flagCategory) {
			continue
		}

		bills = append(bills, b)
	}

	out := cmd.OutOrStdout()

	if len(bills) == 0 {
		fmt.Fprintln(out, "No bills found.")
		return nil
	}

	renderBills(out, bills)

	snap := e.Snapshot()
	fmt.Fprintf(out, "Unpaid total: %s\n", snap.Total().StringFixed(2))

	return nil
}

func runAdd(cmd *cobra.Command, _ []string) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(flagAmount))
	if err != nil {
		return fmt.Errorf("invalid amount %q", flagAmount)
	}

	due, err := parseDay(flagDue)
	if err != nil {
		return err
	}

	repeats, err := bill.ParseRecurrence(flagRepeats)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}

	b, err := e.AddBill(ctx, bill.Draft{
		Name:       flagName,
		Amount:     amount,
		Category:   flagCategory,
		DueDate:    due,
		Recurrence: repeats,
	})
	if err = warnStale(cmd, err); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s), due %s, %s\n",
		b.Name, b.ID, b.DueDate.Format(time.DateOnly), b.Status)

	return nil
}

func runPay(cmd *cobra.Command, args []string) error {
	var paidOn *time.Time

	if flagPaidOn != "" {
		d, err := parseDay(flagPaidOn)
		if err != nil {
			return err
		}

		paidOn = &d
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}

	b, err := resolveBill(e.Bills(), args[0])
	if err != nil {
		return err
	}

	p, err := e.MarkAsPaid(ctx, b.ID, paidOn)
	if err = warnStale(cmd, err); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Paid %s: %s on %s (due %s)\n",
		p.BillName, p.Amount.StringFixed(2), p.PaidDate.Format(time.DateOnly), p.OriginalDueDate.Format(time.DateOnly))

	if !b.Recurrence.IsRecurring() {
		return nil
	}

	for _, next := range e.Bills() {
		if next.Name == b.Name && next.ID != b.ID && next.DueDate.After(b.DueDate) {
			fmt.Fprintf(out, "Next %s due %s\n", next.Name, next.DueDate.Format(time.DateOnly))
			break
		}
	}

	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	p, err := editPatch(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}

	b, err := resolveBill(e.Bills(), args[0])
	if err != nil {
		return err
	}

	updated, err := e.UpdateBill(ctx, b.ID, p)
	if err = warnStale(cmd, err); err != nil {
		return err
	}

	renderBills(cmd.OutOrStdout(), []*bill.Bill{updated})

	return nil
}

// editPatch builds a patch from the edit flags that were set explicitly.
func editPatch(cmd *cobra.Command) (bill.Patch, error) {
	var p bill.Patch

	flags := cmd.Flags()

	if flags.Changed("name") {
		p.Name = &editName
	}

	if flags.Changed("category") {
		p.Category = &editCategory
	}

	if flags.Changed("amount") {
		amount, err := decimal.NewFromString(strings.TrimSpace(editAmount))
		if err != nil {
			return bill.Patch{}, fmt.Errorf("invalid amount %q", editAmount)
		}

		p.Amount = &amount
	}

	if flags.Changed("due") {
		due, err := parseDay(editDue)
		if err != nil {
			return bill.Patch{}, err
		}

		p.DueDate = &due
	}

	if flags.Changed("repeats") {
		r, err := bill.ParseRecurrence(editRepeats)
		if err != nil {
			return bill.Patch{}, err
		}

		p.Recurrence = &r
	}

	return p, nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}

	b, err := resolveBill(e.Bills(), args[0])
	if err != nil {
		return err
	}

	if err := warnStale(cmd, e.DeleteBill(ctx, b.ID)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", b.Name)

	return nil
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}

	if err := e.Refresh(ctx); err != nil {
		return err
	}

	renderBills(cmd.OutOrStdout(), e.Bills())

	return nil
}

func parseDay(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}

	return d, nil
}
